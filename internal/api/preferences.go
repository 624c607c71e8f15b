package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

const maxHistoryLimit = 100

type PreferencesHandler struct {
	store  store.Store
	hermes hermes.Client
	spec   *scoring.CriteriaSpec
	logger *slog.Logger
}

func NewPreferencesHandler(s store.Store, h hermes.Client, spec *scoring.CriteriaSpec, logger *slog.Logger) *PreferencesHandler {
	return &PreferencesHandler{store: s, hermes: h, spec: spec, logger: logger}
}

type SavePreferencesRequest struct {
	SessionID string             `json:"session_id"`
	Weights   map[string]float64 `json:"weights"`
}

// Save handles POST /api/v1/preferences
func (h *PreferencesHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SavePreferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sessionID := sessionOrNew(req.SessionID)

	weights := scoring.WeightVector(req.Weights)
	if err := weights.Validate(h.spec); err != nil {
		writeError(w, err)
		return
	}
	for id := range weights {
		if _, ok := h.spec.Lookup(id); !ok {
			writeError(w, &scoring.InvalidInputError{Field: "weights", Criterion: id, Reason: "unknown criterion"})
			return
		}
	}

	prefs := &store.Preferences{SessionID: sessionID, Weights: weights.Clone()}
	if err := h.store.SavePreferences(r.Context(), prefs); err != nil {
		writeError(w, err)
		return
	}
	hermes.Emit(h.hermes, h.logger, hermes.SubjectPreferencesSaved(sessionID), hermes.PreferencesSavedEvent{
		SessionID:    sessionID,
		PreferenceID: prefs.ID.String(),
		Weights:      prefs.Weights,
	})
	writeJSON(w, http.StatusCreated, prefs)
}

// Get handles GET /api/v1/preferences/{session_id}
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	prefs, err := h.store.GetLatestPreferences(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if prefs == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no preferences for session"})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// History handles GET /api/v1/history/{session_id}?limit=
func (h *PreferencesHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	history, err := h.store.GetAnalysisHistory(r.Context(), sessionID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []*store.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, history)
}
