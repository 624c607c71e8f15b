package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

const (
	reportTopN = 3
	// reportLookback bounds how far back the report searches for a ranking.
	reportLookback = 20
)

type ReportHandler struct {
	store    store.Store
	engine   *scoring.Engine
	snapshot *CountrySnapshot
	logger   *slog.Logger
}

func NewReportHandler(s store.Store, engine *scoring.Engine, snap *CountrySnapshot, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{store: s, engine: engine, snapshot: snap, logger: logger}
}

// TopRecommendation is a leading result with the catalogue record behind it.
// Details is nil when the country is no longer in the catalogue or came from
// inline request records.
type TopRecommendation struct {
	Rank       int            `json:"rank"`
	Country    string         `json:"country"`
	Score      float64        `json:"score"`
	Percentage float64        `json:"percentage"`
	Details    *store.Country `json:"country_details,omitempty"`
}

type ReportResponse struct {
	SessionID          string                     `json:"session_id"`
	AnalysisID         string                     `json:"analysis_id"`
	AnalyzedAt         time.Time                  `json:"analysis_timestamp"`
	Method             string                     `json:"methodology"`
	Weights            map[string]float64         `json:"preferences_used"`
	Results            scoring.RankedResult       `json:"analysis_results"`
	TopRecommendations []TopRecommendation        `json:"top_recommendations"`
	Sensitivity        *scoring.SensitivityReport `json:"sensitivity_analysis,omitempty"`
	SensitivityError   string                     `json:"sensitivity_error,omitempty"`
	GeneratedAt        time.Time                  `json:"report_generated_at"`
}

// Report handles GET /api/v1/report/{session_id}?sensitivity=false
//
// It summarises the session's latest ranking and, unless disabled, re-runs
// the sensitivity sweep with that ranking's weights against the current
// catalogue. A failed sweep is reported in the body; it does not fail the
// report.
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	withSensitivity := true
	if v := r.URL.Query().Get("sensitivity"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, &scoring.InvalidInputError{Field: "sensitivity", Reason: fmt.Sprintf("%q is not a boolean", v)})
			return
		}
		withSensitivity = b
	}

	history, err := h.store.GetAnalysisHistory(r.Context(), sessionID, reportLookback)
	if err != nil {
		writeError(w, err)
		return
	}
	var latest *store.AnalysisRecord
	for _, rec := range history {
		if rec.Kind == store.AnalysisRanking {
			latest = rec
			break
		}
	}
	if latest == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no ranking analysis for session"})
		return
	}

	var results scoring.RankedResult
	if err := json.Unmarshal(latest.Result, &results); err != nil {
		writeError(w, fmt.Errorf("decode analysis %s: %w", latest.ID, err))
		return
	}

	resp := ReportResponse{
		SessionID:          sessionID,
		AnalysisID:         latest.ID.String(),
		AnalyzedAt:         latest.CreatedAt,
		Method:             h.engine.Method().Name,
		Weights:            latest.Weights,
		Results:            results,
		TopRecommendations: make([]TopRecommendation, 0, reportTopN),
		GeneratedAt:        time.Now().UTC(),
	}
	for _, e := range results[:min(reportTopN, len(results))] {
		details, err := h.store.GetCountryByName(r.Context(), e.Country)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.TopRecommendations = append(resp.TopRecommendations, TopRecommendation{
			Rank:       e.Rank,
			Country:    e.Country,
			Score:      e.Score,
			Percentage: e.Percentage,
			Details:    details,
		})
	}

	if withSensitivity {
		report, err := h.sensitivity(r, latest.Weights)
		if err != nil {
			h.logger.Warn("report sensitivity failed", "session_id", sessionID, "error", err)
			resp.SensitivityError = err.Error()
		}
		resp.Sensitivity = report
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) sensitivity(r *http.Request, weights map[string]float64) (*scoring.SensitivityReport, error) {
	catalogue, err := h.snapshot.Countries(r.Context())
	if err != nil {
		return nil, err
	}
	return h.engine.Sensitivity(store.EngineCountries(catalogue), scoring.WeightVector(weights), nil)
}
