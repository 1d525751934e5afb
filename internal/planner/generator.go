package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meltforce/repforge/internal/metrics"
	"github.com/meltforce/repforge/internal/models"
)

// GenerateRequest is a request to generate and store a workout plan.
type GenerateRequest struct {
	UserID      int
	Level       models.Level
	Equipment   []string
	WorkoutType models.WorkoutType
	DaysPerWeek int
	// StartDate defaults to today when zero.
	StartDate time.Time
}

// RawRequest is a plan request as received from a client. An empty Level or
// Equipment falls back to the user's profile defaults.
type RawRequest struct {
	Level       string
	Equipment   []string
	WorkoutType string
	DaysPerWeek int
	StartDate   time.Time
}

// ProfileReader loads the profile holding a user's generation defaults.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID int) (*models.Profile, error)
}

// ResolveRequest fills profile defaults and parses level and workout type.
// The profile is only read when a default is needed.
func ResolveRequest(ctx context.Context, profiles ProfileReader, userID int, raw RawRequest) (GenerateRequest, error) {
	if raw.Level == "" || len(raw.Equipment) == 0 {
		profile, err := profiles.GetProfile(ctx, userID)
		if err != nil {
			return GenerateRequest{}, fmt.Errorf("loading profile defaults: %w", err)
		}
		if raw.Level == "" && profile.DefaultLevel != nil {
			raw.Level = string(*profile.DefaultLevel)
		}
		if len(raw.Equipment) == 0 {
			raw.Equipment = profile.DefaultEquipment
		}
	}

	level, err := ParseLevel(raw.Level)
	if err != nil {
		return GenerateRequest{}, err
	}
	workoutType, err := ParseWorkoutType(raw.WorkoutType)
	if err != nil {
		return GenerateRequest{}, err
	}
	return GenerateRequest{
		UserID:      userID,
		Level:       level,
		Equipment:   raw.Equipment,
		WorkoutType: workoutType,
		DaysPerWeek: raw.DaysPerWeek,
		StartDate:   raw.StartDate,
	}, nil
}

// CatalogStore is what the generator needs from storage.
type CatalogStore interface {
	Catalog
	Store
}

// Generator assembles plans from the catalog and writes them to the store.
type Generator struct {
	store   CatalogStore
	log     *slog.Logger
	metrics *metrics.Manager

	// Now and NewRand are replaceable in tests.
	Now     func() time.Time
	NewRand func() Rand
}

// NewGenerator creates a generator. m may be nil.
func NewGenerator(store CatalogStore, log *slog.Logger, m *metrics.Manager) *Generator {
	return &Generator{
		store:   store,
		log:     log,
		metrics: m,
		Now:     time.Now,
		NewRand: NewRand,
	}
}

// GenerateFullWorkoutPlan validates the request, assembles the plan, writes
// it and returns the plan as written. A *WriteError means the store holds
// part of the plan.
func (g *Generator) GenerateFullWorkoutPlan(ctx context.Context, req GenerateRequest) ([]models.DayPlan, error) {
	start := time.Now()
	if len(req.Equipment) == 0 {
		g.fail("validate")
		return nil, fmt.Errorf("%w: no equipment selected", ErrInvalidRequest)
	}
	preq := Request{
		Level:       req.Level,
		Equipment:   req.Equipment,
		WorkoutType: req.WorkoutType,
		DaysPerWeek: req.DaysPerWeek,
	}

	plan, err := AssemblePlan(ctx, g.store, g.NewRand, preq)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			g.fail("validate")
		} else {
			g.fail("assemble")
		}
		return nil, err
	}

	mode, notes := "split", fmt.Sprintf("%s split workout", req.Level)
	if IsSingleDay(preq) {
		mode, notes = "single", fmt.Sprintf("%s single-day workout", req.Level)
	}

	date := req.StartDate
	if date.IsZero() {
		date = g.Now()
	}
	date = truncateToDate(date)

	if err := Persist(ctx, g.store, plan, req.UserID, date, notes); err != nil {
		g.fail("persist")
		var we *WriteError
		if errors.As(err, &we) {
			g.log.Error("plan write failed", "user_id", req.UserID, "day", we.Day+1, "step", we.Step, "days_written", we.DaysWritten, "error", we.Err)
		}
		return nil, err
	}

	exercises := 0
	for _, d := range plan {
		exercises += len(d.Exercises)
	}
	g.log.Info("workout plan generated",
		"user_id", req.UserID, "level", req.Level, "mode", mode,
		"days", len(plan), "exercises", exercises, "start", date.Format(time.DateOnly))
	if g.metrics != nil {
		g.metrics.CounterPlansGenerated.WithLabelValues(mode).Inc()
		g.metrics.HistPlanDuration.Observe(time.Since(start).Seconds())
	}
	return plan, nil
}

// SaveCustom writes a single hand-picked day through the same writer.
func (g *Generator) SaveCustom(ctx context.Context, userID int, day models.DayPlan, date time.Time, notes string) error {
	if len(day.Exercises) == 0 {
		return fmt.Errorf("%w: no exercises selected", ErrInvalidRequest)
	}
	if date.IsZero() {
		date = g.Now()
	}
	if err := Persist(ctx, g.store, []models.DayPlan{day}, userID, truncateToDate(date), notes); err != nil {
		g.fail("persist")
		return err
	}
	if g.metrics != nil {
		g.metrics.CounterPlansGenerated.WithLabelValues("custom").Inc()
	}
	g.log.Info("custom workout saved", "user_id", userID, "exercises", len(day.Exercises))
	return nil
}

func (g *Generator) fail(stage string) {
	if g.metrics != nil {
		g.metrics.CounterPlanFailures.WithLabelValues(stage).Inc()
	}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
