package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ShareWorkout copies a workout with its exercises and sets to a friend.
// Copied sets are reset to their target reps with no weight, and shared_from
// records the sharer. All rows are written in one transaction.
func (db *DB) ShareWorkout(ctx context.Context, workoutID uuid.UUID, fromUserID, toUserID int) (uuid.UUID, error) {
	var newID uuid.UUID
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		ok, err := areFriends(ctx, tx, fromUserID, toUserID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFriends
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO user_workouts (user_id, name, custom_name, scheduled_date, notes, shared_from)
			 SELECT $3, name, custom_name, scheduled_date, notes, user_id
			 FROM user_workouts
			 WHERE id = $1 AND user_id = $2
			 RETURNING id`,
			workoutID, fromUserID, toUserID,
		).Scan(&newID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("copying workout: %w", err)
		}

		// Map old workout_exercise ids to new ones through order_in_workout.
		_, err = tx.Exec(ctx,
			`WITH src AS (
				SELECT id, exercise_id, sets, reps_per_set, order_in_workout
				FROM workout_exercises WHERE workout_id = $1
			), ins AS (
				INSERT INTO workout_exercises (workout_id, exercise_id, sets, reps_per_set, order_in_workout)
				SELECT $2, exercise_id, sets, reps_per_set, order_in_workout FROM src
				RETURNING id, order_in_workout
			)
			INSERT INTO exercise_sets (workout_exercise_id, set_number, reps, weight_lbs, completed)
			SELECT ins.id, s.set_number, src.reps_per_set, NULL, FALSE
			FROM exercise_sets s
			JOIN src ON src.id = s.workout_exercise_id
			JOIN ins ON ins.order_in_workout = src.order_in_workout`,
			workoutID, newID)
		if err != nil {
			return fmt.Errorf("copying workout exercises: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return newID, nil
}
