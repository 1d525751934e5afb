package models

import (
	"time"

	"github.com/google/uuid"
)

// NewWorkout is a row ready for insertion into the user_workouts table.
type NewWorkout struct {
	UserID        int
	Name          string
	ScheduledDate time.Time
	Notes         string
	SharedFrom    *int
}

// WorkoutExerciseRow is a row for the workout_exercises table. ID is zero
// until the row has been inserted.
type WorkoutExerciseRow struct {
	ID             uuid.UUID
	WorkoutID      uuid.UUID
	ExerciseID     uuid.UUID
	Sets           int
	RepsPerSet     int
	OrderInWorkout int
}

// ExerciseSetRow is a row for the exercise_sets table.
type ExerciseSetRow struct {
	WorkoutExerciseID uuid.UUID
	SetNumber         int
	Reps              int
	WeightLbs         *float64
	Completed         bool
}

// Workout is a stored workout as returned to clients. Completed is derived
// from the logged sets, never stored.
type Workout struct {
	ID            uuid.UUID  `json:"id"`
	UserID        int        `json:"user_id"`
	Name          string     `json:"name"`
	CustomName    *string    `json:"custom_name,omitempty"`
	ScheduledDate *time.Time `json:"scheduled_date"` // nil once a shared workout is removed from the calendar
	Notes         *string    `json:"notes,omitempty"`
	IsFavorite    bool       `json:"is_favorite"`
	SharedFrom    *int       `json:"shared_from,omitempty"`
	Completed     bool       `json:"completed"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ExerciseSet is a stored set.
type ExerciseSet struct {
	ID                uuid.UUID `json:"id"`
	WorkoutExerciseID uuid.UUID `json:"workout_exercise_id"`
	SetNumber         int       `json:"set_number"`
	Reps              *int      `json:"reps"`
	WeightLbs         *float64  `json:"weight_lbs"`
	Completed         bool      `json:"completed"`
}

// WorkoutExerciseDetail is a workout exercise with its catalog entry and sets.
type WorkoutExerciseDetail struct {
	ID             uuid.UUID     `json:"id"`
	Exercise       Exercise      `json:"exercise"`
	Sets           int           `json:"sets"`
	RepsPerSet     int           `json:"reps_per_set"`
	OrderInWorkout int           `json:"order_in_workout"`
	ExerciseSets   []ExerciseSet `json:"exercise_sets"`
}

// WorkoutDetail is a workout with all of its exercises and sets.
type WorkoutDetail struct {
	Workout
	Exercises []WorkoutExerciseDetail `json:"exercises"`
}

// SetUpdate holds the fields of a set that a user may log. Nil fields are left unchanged.
type SetUpdate struct {
	WeightLbs *float64 `json:"weight_lbs"`
	Reps      *int     `json:"reps"`
	Completed *bool    `json:"completed"`
}

// WorkoutUpdate holds editable workout fields. Nil fields are left unchanged.
type WorkoutUpdate struct {
	CustomName    *string    `json:"custom_name"`
	IsFavorite    *bool      `json:"is_favorite"`
	Notes         *string    `json:"notes"`
	ScheduledDate *time.Time `json:"scheduled_date"`
}
