package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/repforge/internal/models"
)

// AddSet appends a set to a workout exercise, numbered after the current
// highest set, with the exercise's target reps and no weight.
func (db *DB) AddSet(ctx context.Context, workoutExerciseID uuid.UUID, userID int) (*models.ExerciseSet, error) {
	var s models.ExerciseSet
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercise_sets (workout_exercise_id, set_number, reps)
		 SELECT we.id,
		        COALESCE((SELECT MAX(set_number) FROM exercise_sets WHERE workout_exercise_id = we.id), 0) + 1,
		        we.reps_per_set
		 FROM workout_exercises we
		 JOIN user_workouts w ON w.id = we.workout_id
		 WHERE we.id = $1 AND w.user_id = $2
		 RETURNING id, workout_exercise_id, set_number, reps, weight_lbs, completed`,
		workoutExerciseID, userID,
	).Scan(&s.ID, &s.WorkoutExerciseID, &s.SetNumber, &s.Reps, &s.WeightLbs, &s.Completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("adding set: %w", err)
	}
	return &s, nil
}

// UpdateSet applies the non-nil fields of u to a set owned by the user.
func (db *DB) UpdateSet(ctx context.Context, setID uuid.UUID, userID int, u models.SetUpdate) (*models.ExerciseSet, error) {
	var s models.ExerciseSet
	err := db.Pool.QueryRow(ctx,
		`UPDATE exercise_sets s SET
		 weight_lbs = COALESCE($3, s.weight_lbs),
		 reps = COALESCE($4, s.reps),
		 completed = COALESCE($5, s.completed)
		 FROM workout_exercises we, user_workouts w
		 WHERE s.id = $1 AND we.id = s.workout_exercise_id AND w.id = we.workout_id AND w.user_id = $2
		 RETURNING s.id, s.workout_exercise_id, s.set_number, s.reps, s.weight_lbs, s.completed`,
		setID, userID, u.WeightLbs, u.Reps, u.Completed,
	).Scan(&s.ID, &s.WorkoutExerciseID, &s.SetNumber, &s.Reps, &s.WeightLbs, &s.Completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating set: %w", err)
	}
	return &s, nil
}

// DeleteSet removes a set owned by the user.
func (db *DB) DeleteSet(ctx context.Context, setID uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM exercise_sets s
		 USING workout_exercises we, user_workouts w
		 WHERE s.id = $1 AND we.id = s.workout_exercise_id AND w.id = we.workout_id AND w.user_id = $2`,
		setID, userID)
	if err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
