package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// copyExercisesSQL copies the exercises of workout $1 into workout $2 and
// gives each copy a fresh set of rows: one per planned set, reps at the
// target and no weight.
const copyExercisesSQL = `WITH ins AS (
	INSERT INTO workout_exercises (workout_id, exercise_id, sets, reps_per_set, order_in_workout)
	SELECT $2, exercise_id, sets, reps_per_set, order_in_workout
	FROM workout_exercises WHERE workout_id = $1
	RETURNING id, sets, reps_per_set
)
INSERT INTO exercise_sets (workout_exercise_id, set_number, reps, weight_lbs, completed)
SELECT ins.id, n, ins.reps_per_set, NULL, FALSE
FROM ins, generate_series(1, ins.sets) AS n`

// CopyWorkout schedules a fresh copy of one of the user's workouts on date.
// The copy keeps name, custom name and notes; it is not a favorite and has
// no logged weights.
func (db *DB) CopyWorkout(ctx context.Context, workoutID uuid.UUID, userID int, date time.Time) (uuid.UUID, error) {
	var newID uuid.UUID
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO user_workouts (user_id, name, custom_name, scheduled_date, notes)
			 SELECT user_id, name, custom_name, $3, notes
			 FROM user_workouts
			 WHERE id = $1 AND user_id = $2
			 RETURNING id`,
			workoutID, userID, date,
		).Scan(&newID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("copying workout: %w", err)
		}
		if _, err := tx.Exec(ctx, copyExercisesSQL, workoutID, newID); err != nil {
			return fmt.Errorf("copying workout exercises: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return newID, nil
}

// CopyWeek copies every workout the user has scheduled in the seven days
// from weekStart to the same weekday of the following week. Copies keep name
// and notes and get fresh sets. It returns the new workout IDs in schedule
// order.
func (db *DB) CopyWeek(ctx context.Context, userID int, weekStart time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id FROM user_workouts
			 WHERE user_id = $1 AND scheduled_date >= $2 AND scheduled_date < $3
			 ORDER BY scheduled_date, created_at`,
			userID, weekStart, weekStart.AddDate(0, 0, 7))
		if err != nil {
			return fmt.Errorf("querying week workouts: %w", err)
		}
		sources, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("scanning week workouts: %w", err)
		}

		for _, src := range sources {
			var newID uuid.UUID
			err := tx.QueryRow(ctx,
				`INSERT INTO user_workouts (user_id, name, scheduled_date, notes)
				 SELECT user_id, name, scheduled_date + 7, notes
				 FROM user_workouts WHERE id = $1
				 RETURNING id`,
				src,
			).Scan(&newID)
			if err != nil {
				return fmt.Errorf("copying workout %s: %w", src, err)
			}
			if _, err := tx.Exec(ctx, copyExercisesSQL, src, newID); err != nil {
				return fmt.Errorf("copying exercises of workout %s: %w", src, err)
			}
			ids = append(ids, newID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
