package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/claude/bodymap/internal/models"
	"github.com/claude/bodymap/internal/storage"
	"github.com/claude/bodymap/internal/tracker"
)

const maxTrainingGoalLen = 200

// profileUpdate is the editable part of a profile.
type profileUpdate struct {
	BodyWeightKg *float64 `json:"body_weight_kg"`
	TrainingGoal string   `json:"training_goal"`
}

// handleGetProfile returns the profile captured by the last recovery pass.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	t := s.trackers.For(r.Context(), userIDFromContext(r))
	report := t.Report()
	if report.ComputedAt == nil {
		writeUnavailable(w, t)
		return
	}
	if report.Profile == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no profile"})
		return
	}
	writeJSON(w, http.StatusOK, report.Profile)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.BodyWeightKg != nil && *req.BodyWeightKg <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body_weight_kg must be positive"})
		return
	}
	req.TrainingGoal = strings.TrimSpace(req.TrainingGoal)
	if len(req.TrainingGoal) > maxTrainingGoalLen {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "training_goal too long"})
		return
	}

	uid := userIDFromContext(r)
	err := s.store.UpsertProfile(r.Context(), models.Profile{
		UserID:       uid,
		BodyWeightKg: req.BodyWeightKg,
		TrainingGoal: req.TrainingGoal,
	})
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown user"})
		return
	}
	if err != nil {
		s.log.ErrorContext(r.Context(), "profile update error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// The profile travels with the recovery result, so recompute.
	t, err := s.trackers.Refresh(r.Context(), uid)
	if err != nil && !errors.Is(err, tracker.ErrRefreshInFlight) {
		s.log.WarnContext(r.Context(), "refresh after profile update failed", "error", err)
	}
	if p := t.Report().Profile; p != nil {
		writeJSON(w, http.StatusOK, p)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
