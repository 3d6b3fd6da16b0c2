package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/bodymap/internal/models"
	"github.com/claude/bodymap/internal/recovery"
	"github.com/claude/bodymap/internal/tracker"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleRecovery(w http.ResponseWriter, r *http.Request) {
	t := s.trackers.For(r.Context(), userIDFromContext(r))
	writeJSON(w, http.StatusOK, t.Report())
}

func (s *Server) handleMuscle(w http.ResponseWriter, r *http.Request) {
	group, ok := s.catalog.Normalize(chi.URLParam(r, "group"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown muscle group"})
		return
	}

	t := s.trackers.For(r.Context(), userIDFromContext(r))
	snap, ok := t.Snapshot(group)
	if !ok {
		writeUnavailable(w, t)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBodyPart(w http.ResponseWriter, r *http.Request) {
	part := chi.URLParam(r, "part")
	if _, ok := s.catalog.GroupForBodyPart(part); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown body part"})
		return
	}

	t := s.trackers.For(r.Context(), userIDFromContext(r))
	snap, ok := t.SnapshotForBodyPart(part)
	if !ok {
		writeUnavailable(w, t)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot": snap,
		"gradient": tracker.NewBodyPartState(part, snap),
	})
}

func (s *Server) handleBodyMap(w http.ResponseWriter, r *http.Request) {
	t := s.trackers.For(r.Context(), userIDFromContext(r))
	entries := tracker.BodyMap(t.Report(), s.catalog)
	if entries == nil {
		writeUnavailable(w, t)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGradient(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("pct")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pct parameter required"})
		return
	}
	pct, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid pct: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"percentage": pct,
		"color":      recovery.GradientColor(pct),
		"step":       recovery.GradientStep(pct),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	t, err := s.trackers.Refresh(r.Context(), userIDFromContext(r))
	switch {
	case errors.Is(err, tracker.ErrRefreshInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusBadGateway, t.Report())
	default:
		writeJSON(w, http.StatusOK, t.Report())
	}
}

func (s *Server) handleIngestSession(w http.ResponseWriter, r *http.Request) {
	var sess models.WorkoutSession
	if err := json.NewDecoder(r.Body).Decode(&sess); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if sess.Date.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is required"})
		return
	}
	for i, ex := range sess.Exercises {
		if ex.PrimaryMuscle == nil {
			continue
		}
		group, ok := s.catalog.Normalize(*ex.PrimaryMuscle)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown primary muscle: " + *ex.PrimaryMuscle})
			return
		}
		sess.Exercises[i].PrimaryMuscle = &group
	}

	uid := userIDFromContext(r)
	sess.UserID = uid
	id, err := s.store.InsertSession(r.Context(), sess)
	if err != nil {
		s.log.ErrorContext(r.Context(), "ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Recompute so reads reflect the new session.
	if _, err := s.trackers.Refresh(r.Context(), uid); err != nil && !errors.Is(err, tracker.ErrRefreshInFlight) {
		s.log.WarnContext(r.Context(), "refresh after ingest failed", "error", err)
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func writeUnavailable(w http.ResponseWriter, t *tracker.Tracker) {
	msg := "recovery data not available yet"
	if err := t.Err(); err != nil {
		msg = "recovery data unavailable: " + err.Error()
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]any{
		"error":   msg,
		"loading": t.Loading(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
