package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/planner"
	"github.com/meltforce/repforge/internal/storage"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.parseWeekRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	workouts, err := s.db.QueryWorkouts(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(workouts))
}

func (s *Server) handleFavoriteWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.db.FavoriteWorkouts(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(workouts))
}

func (s *Server) handleSharedWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.db.SharedWorkouts(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(workouts))
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := uuidParam(w, r, "workout")
	if !ok {
		return
	}

	detail, err := s.db.GetWorkoutDetail(r.Context(), workoutID, userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type updateWorkoutRequest struct {
	CustomName    *string `json:"custom_name"`
	IsFavorite    *bool   `json:"is_favorite"`
	Notes         *string `json:"notes"`
	ScheduledDate *string `json:"scheduled_date"`
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := uuidParam(w, r, "workout")
	if !ok {
		return
	}
	var req updateWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	u := models.WorkoutUpdate{CustomName: req.CustomName, IsFavorite: req.IsFavorite, Notes: req.Notes}
	if req.ScheduledDate != nil {
		d, err := parseDate(*req.ScheduledDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scheduled_date"})
			return
		}
		u.ScheduledDate = &d
	}

	uid := userIDFromContext(r)
	if err := s.db.UpdateWorkout(r.Context(), workoutID, uid, u); err != nil {
		s.writeError(w, err)
		return
	}
	detail, err := s.db.GetWorkoutDetail(r.Context(), workoutID, uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := uuidParam(w, r, "workout")
	if !ok {
		return
	}
	if err := s.db.DeleteWorkout(r.Context(), workoutID, userIDFromContext(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	weID, ok := uuidParam(w, r, "workout exercise")
	if !ok {
		return
	}
	set, err := s.db.AddSet(r.Context(), weID, userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	setID, ok := uuidParam(w, r, "set")
	if !ok {
		return
	}
	var u models.SetUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if (u.WeightLbs != nil && *u.WeightLbs < 0) || (u.Reps != nil && *u.Reps < 0) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight and reps must not be negative"})
		return
	}

	set, err := s.db.UpdateSet(r.Context(), setID, userIDFromContext(r), u)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	setID, ok := uuidParam(w, r, "set")
	if !ok {
		return
	}
	if err := s.db.DeleteSet(r.Context(), setID, userIDFromContext(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceExercise(w http.ResponseWriter, r *http.Request) {
	weID, ok := uuidParam(w, r, "workout exercise")
	if !ok {
		return
	}
	uid := userIDFromContext(r)

	ex, err := s.db.ReplacementExercise(r.Context(), weID, uid)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no replacement exercise available"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.db.ReplaceWorkoutExercise(r.Context(), weID, ex.ID, uid); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var we *planner.WriteError
	switch {
	case errors.As(err, &we):
		s.log.Error("workout write failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":        err.Error(),
			"days_written": we.DaysWritten,
		})
	case errors.Is(err, planner.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, storage.ErrNotFriends):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// nonNil makes empty results encode as [] rather than null.
func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

func uuidParam(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

func intParam(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + what + " ID"})
		return 0, false
	}
	return id, true
}

func queryLimit(r *http.Request, def, max int) int {
	limit := def
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return min(limit, max)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// weekStart returns the Monday of t's week at midnight UTC.
func weekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// parseWeekRange reads start/end query parameters. Without start it returns
// the current Monday-based week; without end the range spans seven days.
func (s *Server) parseWeekRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		start = weekStart(s.now())
	} else if start, err = parseDate(startStr); err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		return start, start.AddDate(0, 0, 7), nil
	}
	if end, err = parseDate(endStr); err != nil {
		return time.Time{}, time.Time{}, err
	}
	// end is inclusive for callers
	end = end.AddDate(0, 0, 1)
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end must not be before start")
	}
	return start, end, nil
}
