package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/planner"
)

// activityWindowDays bounds the friend activity feed.
const activityWindowDays = 14

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.db.GetProfile(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	p.UserID = userIDFromContext(r)
	p.Username = strings.TrimSpace(p.Username)

	if p.DefaultLevel != nil && *p.DefaultLevel != "" {
		level, err := planner.ParseLevel(string(*p.DefaultLevel))
		if err != nil {
			s.writeError(w, err)
			return
		}
		p.DefaultLevel = &level
	} else {
		p.DefaultLevel = nil
	}
	if (p.HeightInches != nil && *p.HeightInches < 0) || (p.WeightLbs != nil && *p.WeightLbs < 0) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "height and weight must not be negative"})
		return
	}

	if err := s.db.UpsertProfile(r.Context(), p); err != nil {
		s.writeError(w, err)
		return
	}
	profile, err := s.db.GetProfile(r.Context(), p.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, []models.UserSummary{})
		return
	}
	users, err := s.db.SearchUsers(r.Context(), q, userIDFromContext(r), queryLimit(r, 20, 100))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

type friendRequest struct {
	FriendID int `json:"friend_id"`
}

func decodeFriendID(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req friendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return 0, false
	}
	if req.FriendID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "friend_id required"})
		return 0, false
	}
	return req.FriendID, true
}

func (s *Server) handleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	friendID, ok := decodeFriendID(w, r)
	if !ok {
		return
	}
	uid := userIDFromContext(r)
	if friendID == uid {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot befriend yourself"})
		return
	}

	exists, err := s.db.UserExists(r.Context(), friendID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	f, err := s.db.SendFriendRequest(r.Context(), uid, friendID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleFriendRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.db.PendingFriendRequests(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reqs))
}

func (s *Server) handleAcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := intParam(w, r, "request")
	if !ok {
		return
	}
	if err := s.db.AcceptFriendRequest(r.Context(), requestID, userIDFromContext(r)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.FriendshipAccepted)})
}

func (s *Server) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	friendID, ok := intParam(w, r, "friend")
	if !ok {
		return
	}
	if err := s.db.RemoveFriend(r.Context(), userIDFromContext(r), int(friendID)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := s.db.Friends(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(friends))
}

func (s *Server) handleFriendActivity(w http.ResponseWriter, r *http.Request) {
	since := s.now().AddDate(0, 0, -activityWindowDays)
	activity, err := s.db.FriendActivity(r.Context(), userIDFromContext(r), since, queryLimit(r, 50, 200))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(activity))
}

func (s *Server) handleShareWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, ok := uuidParam(w, r, "workout")
	if !ok {
		return
	}
	friendID, ok := decodeFriendID(w, r)
	if !ok {
		return
	}

	uid := userIDFromContext(r)
	copyID, err := s.db.ShareWorkout(r.Context(), workoutID, uid, friendID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("workout shared", "workout_id", workoutID, "from", uid, "to", friendID)
	writeJSON(w, http.StatusCreated, map[string]string{"workout_id": copyID.String()})
}
