package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/repforge/internal/planner"
)

// weekStart returns the Monday of t's week at midnight UTC.
func weekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
}

// defaultTimeRange returns [start, end) as whole days. Without start it
// covers the current week; end is an inclusive date defaulting to start + 6.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	start := weekStart(time.Now())
	if startStr != "" {
		t, err := parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}

	end := start.AddDate(0, 0, 7)
	if endStr != "" {
		t, err := parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.New("end is before start")
	}
	return start, end, nil
}

// parseFlexTime accepts YYYY-MM-DD or RFC3339 and truncates to the date.
func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// --- Tool definitions ---

var toolGenerateWorkoutPlan = mcp.NewTool("generate_workout_plan",
	mcp.WithDescription("Generate a workout plan from the exercise catalog and save it to the user's calendar. 3 days gives Push/Pull/Legs, 4 days an upper/lower split, 5 days a body-part split. A workout_type without days generates a single day. Returns the saved days with exercises, sets and reps."),
	mcp.WithString("level", mcp.Description("Difficulty. Defaults to the profile's default level."), mcp.Enum("beginner", "intermediate", "advanced")),
	mcp.WithArray("equipment", mcp.Description("Allowed primary equipment (see list_equipment). Defaults to the profile's equipment."), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithString("workout_type", mcp.Description("Single-day workout type."), mcp.Enum("push", "pull", "legs", "upper", "lower")),
	mcp.WithNumber("days_per_week", mcp.Description("Training days per week: 3, 4 or 5.")),
	mcp.WithString("start_date", mcp.Description("Date of the first day (YYYY-MM-DD). Defaults to today.")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("List scheduled workouts with completion status. A workout is complete when every set has weight and reps logged."),
	mcp.WithString("start", mcp.Description("First date (YYYY-MM-DD). Defaults to this week's Monday.")),
	mcp.WithString("end", mcp.Description("Last date, inclusive. Defaults to the end of the start week.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout with its exercises in order and every logged set."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (UUID)")),
)

var toolListEquipment = mcp.NewTool("list_equipment",
	mcp.WithDescription("List the primary equipment values in the exercise catalog with exercise counts."),
)

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog by target muscle group and equipment, ordered by name."),
	mcp.WithString("muscle", mcp.Description("Target muscle group substring (e.g. chest, hamstrings)")),
	mcp.WithArray("equipment", mcp.Description("Allowed primary equipment"), mcp.Items(map[string]any{"type": "string"})),
	mcp.WithNumber("limit", mcp.Description("Maximum results. Defaults to 50.")),
)

// --- Tool handlers ---

func (h *handlers) generateWorkoutPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	plan, err := h.ds.GenerateWorkoutPlan(ctx, uid, PlanRequest{
		Level:       req.GetString("level", ""),
		Equipment:   req.GetStringSlice("equipment", nil),
		WorkoutType: req.GetString("workout_type", ""),
		DaysPerWeek: req.GetInt("days_per_week", 0),
		StartDate:   req.GetString("start_date", ""),
	})
	if err != nil {
		var we *planner.WriteError
		if errors.As(err, &we) {
			h.log.Error("mcp generate_workout_plan", "error", err, "days_written", we.DaysWritten)
		} else if !errors.Is(err, planner.ErrInvalidRequest) {
			h.log.Error("mcp generate_workout_plan", "error", err)
		}
		return mcp.NewToolResultError("generation failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(plan)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	workouts, err := h.ds.QueryWorkouts(ctx, start, end, uid)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout ID"), nil
	}

	detail, err := h.ds.GetWorkoutDetail(ctx, id, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(detail)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listEquipment(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts, err := h.ds.EquipmentCounts(ctx)
	if err != nil {
		h.log.Error("mcp list_equipment", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(counts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := planner.ExerciseQuery{
		MuscleGroup: req.GetString("muscle", ""),
		Equipment:   req.GetStringSlice("equipment", nil),
		Limit:       min(max(req.GetInt("limit", 50), 1), 500),
	}
	if len(q.Equipment) == 0 {
		q.Equipment = nil
	}

	exercises, err := h.ds.QueryExercises(ctx, q)
	if err != nil {
		h.log.Error("mcp search_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
