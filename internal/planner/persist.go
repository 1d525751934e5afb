package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/models"
)

// Store is the write side of workout persistence.
type Store interface {
	InsertWorkout(ctx context.Context, w models.NewWorkout) (uuid.UUID, error)
	InsertWorkoutExercises(ctx context.Context, rows []models.WorkoutExerciseRow) ([]models.WorkoutExerciseRow, error)
	InsertExerciseSets(ctx context.Context, rows []models.ExerciseSetRow) error
}

// WriteStep names the insert that failed.
type WriteStep string

const (
	StepWorkout   WriteStep = "workout"
	StepExercises WriteStep = "exercises"
	StepSets      WriteStep = "sets"
)

// WriteError reports a failed plan write. Days before Day are fully stored;
// Day itself may be partially stored; later days were never attempted.
type WriteError struct {
	Day         int
	Step        WriteStep
	DaysWritten int
	Err         error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing day %d (%s): %v", e.Day+1, e.Step, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Persist writes the plan day by day, scheduling day i at start + i days.
// Writes are strictly sequential and nothing is rolled back on failure.
func Persist(ctx context.Context, st Store, plan []models.DayPlan, userID int, start time.Time, notes string) error {
	for i, day := range plan {
		if err := persistDay(ctx, st, day, userID, start.AddDate(0, 0, i), notes); err != nil {
			err.Day = i
			err.DaysWritten = i
			return err
		}
	}
	return nil
}

func persistDay(ctx context.Context, st Store, day models.DayPlan, userID int, date time.Time, notes string) *WriteError {
	workoutID, err := st.InsertWorkout(ctx, models.NewWorkout{
		UserID:        userID,
		Name:          day.Name,
		ScheduledDate: date,
		Notes:         notes,
	})
	if err != nil {
		return &WriteError{Step: StepWorkout, Err: err}
	}
	if len(day.Exercises) == 0 {
		return nil
	}

	rows := make([]models.WorkoutExerciseRow, len(day.Exercises))
	for i, sel := range day.Exercises {
		rows[i] = models.WorkoutExerciseRow{
			WorkoutID:      workoutID,
			ExerciseID:     sel.ExerciseID,
			Sets:           sel.Sets,
			RepsPerSet:     sel.Reps,
			OrderInWorkout: i + 1,
		}
	}
	inserted, err := st.InsertWorkoutExercises(ctx, rows)
	if err != nil {
		return &WriteError{Step: StepExercises, Err: err}
	}

	byOrder := make(map[int]models.WorkoutExerciseRow, len(inserted))
	for _, r := range inserted {
		byOrder[r.OrderInWorkout] = r
	}

	var sets []models.ExerciseSetRow
	for _, want := range rows {
		got, ok := byOrder[want.OrderInWorkout]
		if !ok {
			return &WriteError{Step: StepExercises, Err: fmt.Errorf("no stored row for exercise %d", want.OrderInWorkout)}
		}
		for n := 1; n <= want.Sets; n++ {
			sets = append(sets, models.ExerciseSetRow{
				WorkoutExerciseID: got.ID,
				SetNumber:         n,
				Reps:              want.RepsPerSet,
			})
		}
	}
	if len(sets) == 0 {
		return nil
	}
	if err := st.InsertExerciseSets(ctx, sets); err != nil {
		return &WriteError{Step: StepSets, Err: err}
	}
	return nil
}
