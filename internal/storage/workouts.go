package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/planner"
)

var _ planner.Store = (*DB)(nil)

// ErrNotFound is returned when a row does not exist or is not owned by the caller.
var ErrNotFound = errors.New("not found")

// completedExpr is true when the workout has exercises, every exercise has
// sets, and every set has positive weight and reps.
const completedExpr = `(
	EXISTS (SELECT 1 FROM workout_exercises we WHERE we.workout_id = w.id)
	AND NOT EXISTS (
		SELECT 1 FROM workout_exercises we
		WHERE we.workout_id = w.id
		  AND (
			NOT EXISTS (SELECT 1 FROM exercise_sets s WHERE s.workout_exercise_id = we.id)
			OR EXISTS (
				SELECT 1 FROM exercise_sets s
				WHERE s.workout_exercise_id = we.id
				  AND (s.weight_lbs IS NULL OR s.weight_lbs <= 0 OR s.reps IS NULL OR s.reps <= 0)
			)
		  )
	)
)`

const workoutColumns = `w.id, w.user_id, w.name, w.custom_name, w.scheduled_date, w.notes,
	w.is_favorite, w.shared_from, w.created_at, ` + completedExpr

// InsertWorkout inserts a workout row and returns its ID.
func (db *DB) InsertWorkout(ctx context.Context, w models.NewWorkout) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO user_workouts (user_id, name, scheduled_date, notes, shared_from)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		w.UserID, w.Name, w.ScheduledDate, nullIfEmpty(w.Notes), w.SharedFrom,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting workout: %w", err)
	}
	return id, nil
}

// InsertWorkoutExercises batch-inserts workout exercises and returns them with IDs.
func (db *DB) InsertWorkoutExercises(ctx context.Context, rows []models.WorkoutExerciseRow) ([]models.WorkoutExerciseRow, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	query := `INSERT INTO workout_exercises (workout_id, exercise_id, sets, reps_per_set, order_in_workout) VALUES `
	args := make([]any, 0, len(rows)*5)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, r.WorkoutID, r.ExerciseID, r.Sets, r.RepsPerSet, r.OrderInWorkout)
	}

	query += strings.Join(valueStrings, ",") +
		" RETURNING id, workout_id, exercise_id, sets, reps_per_set, order_in_workout"

	result, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("inserting workout exercises: %w", err)
	}
	defer result.Close()

	inserted := make([]models.WorkoutExerciseRow, 0, len(rows))
	for result.Next() {
		var r models.WorkoutExerciseRow
		if err := result.Scan(&r.ID, &r.WorkoutID, &r.ExerciseID, &r.Sets, &r.RepsPerSet, &r.OrderInWorkout); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		inserted = append(inserted, r)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("inserting workout exercises: %w", err)
	}
	return inserted, nil
}

// InsertExerciseSets batch-inserts exercise sets.
func (db *DB) InsertExerciseSets(ctx context.Context, rows []models.ExerciseSetRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO exercise_sets (workout_exercise_id, set_number, reps, weight_lbs, completed) VALUES `
	args := make([]any, 0, len(rows)*5)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, r.WorkoutExerciseID, r.SetNumber, r.Reps, r.WeightLbs, r.Completed)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting exercise sets: %w", err)
	}
	return nil
}

// QueryWorkouts retrieves a user's workouts scheduled in [start, end).
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+`
		 FROM user_workouts w
		 WHERE w.user_id = $1 AND w.scheduled_date >= $2 AND w.scheduled_date < $3
		 ORDER BY w.scheduled_date, w.created_at`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()
	return scanWorkouts(rows)
}

// FavoriteWorkouts returns the user's favorited workouts, newest first.
func (db *DB) FavoriteWorkouts(ctx context.Context, userID int) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+`
		 FROM user_workouts w
		 WHERE w.user_id = $1 AND w.is_favorite
		 ORDER BY w.scheduled_date DESC NULLS LAST`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying favorite workouts: %w", err)
	}
	defer rows.Close()
	return scanWorkouts(rows)
}

// SharedWorkouts returns workouts other users shared with this user.
func (db *DB) SharedWorkouts(ctx context.Context, userID int) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+`
		 FROM user_workouts w
		 WHERE w.user_id = $1 AND w.shared_from IS NOT NULL
		 ORDER BY w.created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying shared workouts: %w", err)
	}
	defer rows.Close()
	return scanWorkouts(rows)
}

// GetWorkoutDetail retrieves a workout with its exercises and sets.
// Exercises are ordered by order_in_workout and sets by set_number.
func (db *DB) GetWorkoutDetail(ctx context.Context, workoutID uuid.UUID, userID int) (*models.WorkoutDetail, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+`
		 FROM user_workouts w
		 WHERE w.id = $1 AND w.user_id = $2`,
		workoutID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	workouts, err := scanWorkouts(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, ErrNotFound
	}
	detail := &models.WorkoutDetail{Workout: workouts[0]}

	exRows, err := db.Pool.Query(ctx,
		`SELECT we.id, we.sets, we.reps_per_set, we.order_in_workout,
		 e.id, e.name, e.target_muscle_group, e.primary_equipment, e.mechanics, e.video_link
		 FROM workout_exercises we
		 JOIN exercises e ON e.id = we.exercise_id
		 WHERE we.workout_id = $1
		 ORDER BY we.order_in_workout`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer exRows.Close()

	index := map[uuid.UUID]int{}
	for exRows.Next() {
		var d models.WorkoutExerciseDetail
		e := &d.Exercise
		if err := exRows.Scan(&d.ID, &d.Sets, &d.RepsPerSet, &d.OrderInWorkout,
			&e.ID, &e.Name, &e.TargetMuscleGroup, &e.PrimaryEquipment, &e.Mechanics, &e.VideoLink); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		d.ExerciseSets = []models.ExerciseSet{}
		index[d.ID] = len(detail.Exercises)
		detail.Exercises = append(detail.Exercises, d)
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT s.id, s.workout_exercise_id, s.set_number, s.reps, s.weight_lbs, s.completed
		 FROM exercise_sets s
		 JOIN workout_exercises we ON we.id = s.workout_exercise_id
		 WHERE we.workout_id = $1
		 ORDER BY we.order_in_workout, s.set_number`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var s models.ExerciseSet
		if err := setRows.Scan(&s.ID, &s.WorkoutExerciseID, &s.SetNumber, &s.Reps, &s.WeightLbs, &s.Completed); err != nil {
			return nil, fmt.Errorf("scanning exercise set: %w", err)
		}
		if i, ok := index[s.WorkoutExerciseID]; ok {
			detail.Exercises[i].ExerciseSets = append(detail.Exercises[i].ExerciseSets, s)
		}
	}
	if err := setRows.Err(); err != nil {
		return nil, err
	}

	detail.Completed = models.IsComplete(detail.Exercises)
	return detail, nil
}

// UpdateWorkout applies the non-nil fields of u.
func (db *DB) UpdateWorkout(ctx context.Context, workoutID uuid.UUID, userID int, u models.WorkoutUpdate) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE user_workouts SET
		 custom_name = COALESCE($3, custom_name),
		 is_favorite = COALESCE($4, is_favorite),
		 notes = COALESCE($5, notes),
		 scheduled_date = COALESCE($6, scheduled_date)
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID, u.CustomName, u.IsFavorite, u.Notes, u.ScheduledDate)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWorkout removes one of the user's workouts; exercises and sets
// cascade. A workout a friend shared is only unscheduled, so it stays in the
// shared list.
func (db *DB) DeleteWorkout(ctx context.Context, workoutID uuid.UUID, userID int) error {
	var n int
	err := db.Pool.QueryRow(ctx,
		`WITH unscheduled AS (
			UPDATE user_workouts SET scheduled_date = NULL
			WHERE id = $1 AND user_id = $2 AND shared_from IS NOT NULL
			RETURNING id
		), deleted AS (
			DELETE FROM user_workouts
			WHERE id = $1 AND user_id = $2 AND shared_from IS NULL
			RETURNING id
		)
		SELECT (SELECT COUNT(*) FROM unscheduled) + (SELECT COUNT(*) FROM deleted)`,
		workoutID, userID).Scan(&n)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWorkouts(rows pgx.Rows) ([]models.Workout, error) {
	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.CustomName, &w.ScheduledDate, &w.Notes,
			&w.IsFavorite, &w.SharedFrom, &w.CreatedAt, &w.Completed); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
