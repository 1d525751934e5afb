package models

import "github.com/google/uuid"

// Level is a difficulty level for workout generation.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// WorkoutType selects a single-day workout archetype.
type WorkoutType string

const (
	WorkoutPush  WorkoutType = "push"
	WorkoutPull  WorkoutType = "pull"
	WorkoutLegs  WorkoutType = "legs"
	WorkoutUpper WorkoutType = "upper"
	WorkoutLower WorkoutType = "lower"
)

// Selection is one exercise chosen for a day, with its assigned sets and reps.
type Selection struct {
	ExerciseID        uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	TargetMuscleGroup string    `json:"target_muscle_group"`
	PrimaryEquipment  string    `json:"primary_equipment"`
	Sets              int       `json:"sets"`
	Reps              int       `json:"reps"`
}

// DayPlan is one generated day. Exercise order is the order written to
// the store as order_in_workout.
type DayPlan struct {
	Name      string      `json:"name"`
	Exercises []Selection `json:"exercises"`
}
