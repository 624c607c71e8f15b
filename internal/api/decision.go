package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

const (
	weightsFromRequest = "request"
	weightsFromSaved   = "saved"
	weightsFromDefault = "default"
)

type DecisionHandler struct {
	store          store.Store
	hermes         hermes.Client
	engine         *scoring.Engine
	snapshot       *CountrySnapshot
	defaultWeights scoring.WeightVector
	logger         *slog.Logger
}

func NewDecisionHandler(s store.Store, h hermes.Client, engine *scoring.Engine, snap *CountrySnapshot, defaults scoring.WeightVector, logger *slog.Logger) *DecisionHandler {
	return &DecisionHandler{
		store:          s,
		hermes:         h,
		engine:         engine,
		snapshot:       snap,
		defaultWeights: defaults.Clone(),
		logger:         logger,
	}
}

// AnalyzeRequest is shared by the ranking and sensitivity endpoints.
// Countries restricts the catalogue to the named entries; Records replaces
// the catalogue with caller-supplied data entirely.
type AnalyzeRequest struct {
	SessionID      string             `json:"session_id,omitempty"`
	Weights        map[string]float64 `json:"weights,omitempty"`
	Countries      []string           `json:"countries,omitempty"`
	Records        []scoring.Country  `json:"records,omitempty"`
	VariationRange []float64          `json:"variation_range,omitempty"`
}

type AnalyzeResponse struct {
	SessionID     string               `json:"session_id"`
	AnalysisID    string               `json:"analysis_id,omitempty"`
	Method        string               `json:"method"`
	WeightsSource string               `json:"weights_source"`
	Weights       scoring.WeightVector `json:"weights"`
	Countries     int                  `json:"countries_analyzed"`
	Results       scoring.RankedResult `json:"results"`
}

type SensitivityResponse struct {
	SessionID     string                     `json:"session_id"`
	AnalysisID    string                     `json:"analysis_id,omitempty"`
	WeightsSource string                     `json:"weights_source"`
	Report        *scoring.SensitivityReport `json:"report"`
}

// Analyze handles POST /api/v1/decision/analyze
func (h *DecisionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	const kind = string(store.AnalysisRanking)
	var req AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sessionID := sessionOrNew(req.SessionID)

	weights, source, err := h.resolveWeights(r.Context(), sessionID, req.Weights)
	if err != nil {
		h.fail(w, kind, err)
		return
	}
	countries, err := h.countries(r.Context(), req)
	if err != nil {
		h.fail(w, kind, err)
		return
	}

	start := time.Now()
	result, err := h.engine.Rank(countries, weights)
	elapsed := time.Since(start)
	analysisDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if err != nil {
		h.fail(w, kind, err)
		return
	}
	analysesTotal.WithLabelValues(kind).Inc()

	if source == weightsFromRequest {
		h.savePreferences(r.Context(), sessionID, weights)
	}
	analysisID := h.record(r.Context(), sessionID, store.AnalysisRanking, result.Top(), weights, result)

	hermes.Emit(h.hermes, h.logger, hermes.SubjectAnalysisRanked(sessionID), hermes.AnalysisRankedEvent{
		SessionID:  sessionID,
		AnalysisID: analysisID,
		TopCountry: result.Top(),
		Countries:  len(result),
		Weights:    weights,
		DurationMs: elapsed.Milliseconds(),
	})

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		SessionID:     sessionID,
		AnalysisID:    analysisID,
		Method:        "SAW",
		WeightsSource: source,
		Weights:       weights,
		Countries:     len(result),
		Results:       result,
	})
}

// Sensitivity handles POST /api/v1/sensitivity/analyze
func (h *DecisionHandler) Sensitivity(w http.ResponseWriter, r *http.Request) {
	const kind = string(store.AnalysisSensitivity)
	var req AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sessionID := sessionOrNew(req.SessionID)

	weights, source, err := h.resolveWeights(r.Context(), sessionID, req.Weights)
	if err != nil {
		h.fail(w, kind, err)
		return
	}
	countries, err := h.countries(r.Context(), req)
	if err != nil {
		h.fail(w, kind, err)
		return
	}

	start := time.Now()
	report, err := h.engine.Sensitivity(countries, weights, req.VariationRange)
	elapsed := time.Since(start)
	analysisDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if err != nil {
		h.fail(w, kind, err)
		return
	}
	analysesTotal.WithLabelValues(kind).Inc()

	analysisID := h.record(r.Context(), sessionID, store.AnalysisSensitivity, report.Baseline.TopCountry, weights, report)

	var trials int
	for _, c := range report.Criteria {
		trials += len(c.Trials)
	}
	hermes.Emit(h.hermes, h.logger, hermes.SubjectAnalysisSensitivity(sessionID), hermes.AnalysisSensitivityEvent{
		SessionID:               sessionID,
		TopCountry:              report.Baseline.TopCountry,
		OverallStabilityScore:   report.Overall.OverallStabilityScore,
		MostSensitiveCriterion:  report.Overall.MostSensitiveCriterion,
		LeastSensitiveCriterion: report.Overall.LeastSensitiveCriterion,
		Trials:                  trials,
		DurationMs:              elapsed.Milliseconds(),
	})

	writeJSON(w, http.StatusOK, SensitivityResponse{
		SessionID:     sessionID,
		AnalysisID:    analysisID,
		WeightsSource: source,
		Report:        report,
	})
}

// resolveWeights picks the request's weights, then the session's latest saved
// preferences, then the configured defaults.
func (h *DecisionHandler) resolveWeights(ctx context.Context, sessionID string, requested map[string]float64) (scoring.WeightVector, string, error) {
	if len(requested) > 0 {
		return scoring.WeightVector(requested).Clone(), weightsFromRequest, nil
	}
	prefs, err := h.store.GetLatestPreferences(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if prefs != nil && len(prefs.Weights) > 0 {
		return scoring.WeightVector(prefs.Weights).Clone(), weightsFromSaved, nil
	}
	return h.defaultWeights.Clone(), weightsFromDefault, nil
}

// countries builds the engine input for one request. The result never
// aliases the snapshot cache.
func (h *DecisionHandler) countries(ctx context.Context, req AnalyzeRequest) ([]scoring.Country, error) {
	if len(req.Records) > 0 {
		out := make([]scoring.Country, len(req.Records))
		copy(out, req.Records)
		return out, nil
	}

	catalogue, err := h.snapshot.Countries(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.Countries) == 0 {
		return store.EngineCountries(catalogue), nil
	}

	byName := make(map[string]*store.Country, len(catalogue))
	for _, c := range catalogue {
		byName[strings.ToLower(c.Name)] = c
	}
	selected := make([]*store.Country, 0, len(req.Countries))
	seen := make(map[string]bool, len(req.Countries))
	for _, name := range req.Countries {
		key := strings.ToLower(strings.TrimSpace(name))
		if seen[key] {
			continue
		}
		seen[key] = true
		c, ok := byName[key]
		if !ok {
			return nil, &scoring.InvalidInputError{Field: "countries", Country: name, Reason: "unknown country"}
		}
		selected = append(selected, c)
	}
	return store.EngineCountries(selected), nil
}

func (h *DecisionHandler) savePreferences(ctx context.Context, sessionID string, weights scoring.WeightVector) {
	prefs := &store.Preferences{SessionID: sessionID, Weights: weights.Clone()}
	if err := h.store.SavePreferences(ctx, prefs); err != nil {
		h.logger.Warn("failed to save preferences", "session_id", sessionID, "error", err)
		return
	}
	hermes.Emit(h.hermes, h.logger, hermes.SubjectPreferencesSaved(sessionID), hermes.PreferencesSavedEvent{
		SessionID:    sessionID,
		PreferenceID: prefs.ID.String(),
		Weights:      prefs.Weights,
	})
}

// record writes the history entry. Persistence failures do not fail the
// request; the analysis itself already succeeded.
func (h *DecisionHandler) record(ctx context.Context, sessionID string, kind store.AnalysisKind, top string, weights scoring.WeightVector, result interface{}) string {
	payload, err := json.Marshal(result)
	if err != nil {
		h.logger.Warn("failed to encode analysis", "kind", kind, "error", err)
		return ""
	}
	rec := &store.AnalysisRecord{
		SessionID:  sessionID,
		Kind:       kind,
		TopCountry: top,
		Weights:    weights.Clone(),
		Result:     payload,
	}
	if err := h.store.CreateAnalysisRecord(ctx, rec); err != nil {
		h.logger.Warn("failed to record analysis", "session_id", sessionID, "kind", kind, "error", err)
		return ""
	}
	return rec.ID.String()
}

func (h *DecisionHandler) fail(w http.ResponseWriter, kind string, err error) {
	reason := writeError(w, err)
	analysisErrors.WithLabelValues(kind, reason).Inc()
}

func sessionOrNew(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.New().String()
	}
	return id
}
