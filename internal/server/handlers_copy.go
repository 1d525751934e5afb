package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type copyWorkoutRequest struct {
	ScheduledDate string `json:"scheduled_date"`
}

type copyWeekRequest struct {
	Start string `json:"start"`
}

type copyWeekResponse struct {
	WeekStart  string      `json:"week_start"`
	WorkoutIDs []uuid.UUID `json:"workout_ids"`
}

// decodeOptional decodes a JSON body that may be empty.
func decodeOptional(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// handleCopyWorkout schedules a fresh copy of a favorite or past workout,
// today unless scheduled_date is given.
func (s *Server) handleCopyWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := uuidParam(w, r, "workout")
	if !ok {
		return
	}
	var req copyWorkoutRequest
	if err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	now := s.now()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if req.ScheduledDate != "" {
		var err error
		if date, err = parseDate(req.ScheduledDate); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid scheduled_date"})
			return
		}
	}

	uid := userIDFromContext(r)
	copyID, err := s.db.CopyWorkout(r.Context(), workoutID, uid, date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("workout copied", "workout_id", workoutID, "copy_id", copyID, "user_id", uid, "date", date.Format(time.DateOnly))
	writeJSON(w, http.StatusCreated, map[string]string{
		"workout_id":     copyID.String(),
		"scheduled_date": date.Format(time.DateOnly),
	})
}

// handleCopyWeek repeats every workout of the Monday-based week containing
// start (default: this week) one week later.
func (s *Server) handleCopyWeek(w http.ResponseWriter, r *http.Request) {
	var req copyWeekRequest
	if err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	start := weekStart(s.now())
	if req.Start != "" {
		d, err := parseDate(req.Start)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start"})
			return
		}
		start = weekStart(d)
	}

	uid := userIDFromContext(r)
	ids, err := s.db.CopyWeek(r.Context(), uid, start)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("week copied", "user_id", uid, "week_start", start.Format(time.DateOnly), "workouts", len(ids))
	writeJSON(w, http.StatusCreated, copyWeekResponse{
		WeekStart:  start.AddDate(0, 0, 7).Format(time.DateOnly),
		WorkoutIDs: nonNil(ids),
	})
}
