package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/planner"
	"github.com/meltforce/repforge/internal/storage"
)

// PlanRequest carries generate_workout_plan arguments as received.
// Empty fields fall back to the user's profile defaults.
type PlanRequest struct {
	Level       string   `json:"level,omitempty"`
	Equipment   []string `json:"equipment,omitempty"`
	WorkoutType string   `json:"workout_type,omitempty"`
	DaysPerWeek int      `json:"days_per_week,omitempty"`
	StartDate   string   `json:"start_date,omitempty"`
}

// DataSource abstracts the data layer for MCP tools. Local (in-process) and
// HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	GenerateWorkoutPlan(ctx context.Context, userID int, req PlanRequest) ([]models.DayPlan, error)
	QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error)
	GetWorkoutDetail(ctx context.Context, workoutID uuid.UUID, userID int) (*models.WorkoutDetail, error)
	EquipmentCounts(ctx context.Context) ([]models.EquipmentCount, error)
	QueryExercises(ctx context.Context, q planner.ExerciseQuery) ([]models.Exercise, error)
}

// LocalStore is the storage Local reads from. *storage.DB satisfies it.
type LocalStore interface {
	QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error)
	GetWorkoutDetail(ctx context.Context, workoutID uuid.UUID, userID int) (*models.WorkoutDetail, error)
	EquipmentCounts(ctx context.Context) ([]models.EquipmentCount, error)
	QueryExercises(ctx context.Context, q planner.ExerciseQuery) ([]models.Exercise, error)
	GetProfile(ctx context.Context, userID int) (*models.Profile, error)
}

var _ LocalStore = (*storage.DB)(nil)

// Local serves MCP tools from the server's own database and generator.
type Local struct {
	DB        LocalStore
	Generator *planner.Generator
}

// Compile-time checks: both data sources satisfy DataSource.
var (
	_ DataSource = (*Local)(nil)
	_ DataSource = (*HTTPClient)(nil)
)

// GenerateWorkoutPlan validates the arguments, fills profile defaults and
// runs the generator.
func (l *Local) GenerateWorkoutPlan(ctx context.Context, userID int, req PlanRequest) ([]models.DayPlan, error) {
	var start time.Time
	if req.StartDate != "" {
		var err error
		if start, err = parseFlexTime(req.StartDate); err != nil {
			return nil, err
		}
	}

	greq, err := planner.ResolveRequest(ctx, l.DB, userID, planner.RawRequest{
		Level:       req.Level,
		Equipment:   req.Equipment,
		WorkoutType: req.WorkoutType,
		DaysPerWeek: req.DaysPerWeek,
		StartDate:   start,
	})
	if err != nil {
		return nil, err
	}
	return l.Generator.GenerateFullWorkoutPlan(ctx, greq)
}

func (l *Local) QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.Workout, error) {
	return l.DB.QueryWorkouts(ctx, start, end, userID)
}

func (l *Local) GetWorkoutDetail(ctx context.Context, workoutID uuid.UUID, userID int) (*models.WorkoutDetail, error) {
	return l.DB.GetWorkoutDetail(ctx, workoutID, userID)
}

// EquipmentCounts returns the catalog equipment in the same normalized form
// as the REST equipment list.
func (l *Local) EquipmentCounts(ctx context.Context) ([]models.EquipmentCount, error) {
	counts, err := l.DB.EquipmentCounts(ctx)
	if err != nil {
		return nil, err
	}
	return models.NormalizeEquipment(counts), nil
}

func (l *Local) QueryExercises(ctx context.Context, q planner.ExerciseQuery) ([]models.Exercise, error) {
	return l.DB.QueryExercises(ctx, q)
}
