package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's training log.
type DataStats struct {
	TotalWorkouts     int64             `json:"total_workouts"`
	CompletedWorkouts int64             `json:"completed_workouts"`
	LoggedSets        int64             `json:"logged_sets"`
	TotalVolumeLbs    float64           `json:"total_volume_lbs"`
	EarliestWorkout   *time.Time        `json:"earliest_workout"`
	LatestWorkout     *time.Time        `json:"latest_workout"`
	WorkoutsByName    []WorkoutNameStat `json:"workouts_by_name"`
}

// WorkoutNameStat counts workouts sharing a generated name.
type WorkoutNameStat struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// GetDataStats returns aggregate statistics for a user's stored workouts.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	// Workout totals and date range
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE `+completedExpr+`),
		 MIN(w.scheduled_date)::timestamptz, MAX(w.scheduled_date)::timestamptz
		 FROM user_workouts w WHERE w.user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts, &stats.CompletedWorkouts, &stats.EarliestWorkout, &stats.LatestWorkout)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	// Logged sets and volume
	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(s.weight_lbs * s.reps), 0)
		 FROM exercise_sets s
		 JOIN workout_exercises we ON we.id = s.workout_exercise_id
		 JOIN user_workouts w ON w.id = we.workout_id
		 WHERE w.user_id = $1 AND s.weight_lbs > 0 AND s.reps > 0`, userID,
	).Scan(&stats.LoggedSets, &stats.TotalVolumeLbs)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	// Workouts by name
	rows, err := db.Pool.Query(ctx,
		`SELECT name, COUNT(*)
		 FROM user_workouts
		 WHERE user_id = $1
		 GROUP BY name
		 ORDER BY COUNT(*) DESC, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by name: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s WorkoutNameStat
		if err := rows.Scan(&s.Name, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning workout name stat: %w", err)
		}
		stats.WorkoutsByName = append(stats.WorkoutsByName, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
