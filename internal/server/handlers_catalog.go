package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/planner"
)

const equipmentCacheKey = "equipment"

func (s *Server) handleEquipment(w http.ResponseWriter, r *http.Request) {
	if cached, err := s.cache.Get([]byte(equipmentCacheKey)); err == nil {
		var list []models.EquipmentCount
		if err := json.Unmarshal(cached, &list); err == nil {
			writeJSON(w, http.StatusOK, list)
			return
		}
		s.log.Warn("dropping unreadable equipment cache entry")
	}

	counts, err := s.db.EquipmentCounts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	list := models.NormalizeEquipment(counts)

	if encoded, err := json.Marshal(list); err != nil {
		s.log.Error("marshal equipment for cache", "error", err)
	} else if err := s.cache.Set([]byte(equipmentCacheKey), encoded, s.equipmentTTL); err != nil {
		s.log.Error("cache equipment", "error", err)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	q := planner.ExerciseQuery{
		MuscleGroup: r.URL.Query().Get("muscle"),
		Limit:       queryLimit(r, 100, 500),
	}
	if eq := r.URL.Query().Get("equipment"); eq != "" {
		for _, e := range strings.Split(eq, ",") {
			if e = strings.TrimSpace(e); e != "" {
				q.Equipment = append(q.Equipment, e)
			}
		}
	}

	exercises, err := s.db.QueryExercises(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(exercises))
}

func (s *Server) handleCatalogIngest(w http.ResponseWriter, r *http.Request) {
	result, err := s.catalog.Ingest(r.Context(), r.Body, userIDFromContext(r))
	if err != nil {
		s.log.Error("catalog ingest error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.cache.Del([]byte(equipmentCacheKey))

	writeJSON(w, http.StatusOK, result)
}
