package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/planner"
)

type generateRequest struct {
	Level       string   `json:"level"`
	Equipment   []string `json:"equipment"`
	WorkoutType string   `json:"workout_type"`
	DaysPerWeek int      `json:"days_per_week"`
	StartDate   string   `json:"start_date"`
}

type generateResponse struct {
	StartDate string           `json:"start_date"`
	Days      []models.DayPlan `json:"days"`
}

// handleGenerate runs the guided generator. Level and equipment fall back to
// the user's profile defaults when omitted.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	start := s.now()
	if req.StartDate != "" {
		var err error
		if start, err = parseDate(req.StartDate); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
			return
		}
	}

	greq, err := planner.ResolveRequest(r.Context(), s.db, userIDFromContext(r), planner.RawRequest{
		Level:       req.Level,
		Equipment:   req.Equipment,
		WorkoutType: req.WorkoutType,
		DaysPerWeek: req.DaysPerWeek,
		StartDate:   start,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	plan, err := s.gen.GenerateFullWorkoutPlan(r.Context(), greq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, generateResponse{
		StartDate: start.Format(time.DateOnly),
		Days:      plan,
	})
}

type customExercise struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
	Sets       int       `json:"sets"`
	Reps       int       `json:"reps"`
}

type customWorkoutRequest struct {
	Name          string           `json:"name"`
	Exercises     []customExercise `json:"exercises"`
	Notes         string           `json:"notes"`
	ScheduledDate string           `json:"scheduled_date"`
}

const (
	customWorkoutName = "Custom Workout"
	customDefaultSets = 3
	customDefaultReps = 10
)

// handleCustomWorkout stores a hand-picked workout through the plan writer.
func (s *Server) handleCustomWorkout(w http.ResponseWriter, r *http.Request) {
	var req customWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if len(req.Exercises) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no exercises selected"})
		return
	}

	date := s.now()
	if req.ScheduledDate != "" {
		var err error
		if date, err = parseDate(req.ScheduledDate); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scheduled_date"})
			return
		}
	}

	ids := make([]uuid.UUID, len(req.Exercises))
	for i, e := range req.Exercises {
		ids[i] = e.ExerciseID
	}
	catalog, err := s.db.GetExercises(r.Context(), ids)
	if err != nil {
		s.writeError(w, err)
		return
	}

	day := models.DayPlan{Name: customWorkoutName}
	if req.Name != "" {
		day.Name = req.Name
	}
	for _, e := range req.Exercises {
		ex, ok := catalog[e.ExerciseID]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise " + e.ExerciseID.String()})
			return
		}
		sel := models.Selection{
			ExerciseID:        ex.ID,
			Name:              ex.Name,
			TargetMuscleGroup: ex.TargetMuscleGroup,
			PrimaryEquipment:  ex.PrimaryEquipment,
			Sets:              customDefaultSets,
			Reps:              customDefaultReps,
		}
		if e.Sets > 0 {
			sel.Sets = e.Sets
		}
		if e.Reps > 0 {
			sel.Reps = e.Reps
		}
		day.Exercises = append(day.Exercises, sel)
	}

	if err := s.gen.SaveCustom(r.Context(), userIDFromContext(r), day, date, req.Notes); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, day)
}
