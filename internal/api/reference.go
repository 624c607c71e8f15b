package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

type ReferenceHandler struct {
	engine   *scoring.Engine
	snapshot *CountrySnapshot
}

func NewReferenceHandler(engine *scoring.Engine, snap *CountrySnapshot) *ReferenceHandler {
	return &ReferenceHandler{engine: engine, snapshot: snap}
}

type CompareRequest struct {
	Countries []string `json:"countries"`
	Criteria  []string `json:"criteria,omitempty"`
}

// Compare handles POST /api/v1/compare
func (h *ReferenceHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	catalogue, err := h.snapshot.Countries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	comparison, err := h.engine.Compare(store.EngineCountries(catalogue), req.Countries, req.Criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

// Method handles GET /api/v1/method
func (h *ReferenceHandler) Method(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Method())
}

// Criteria handles GET /api/v1/criteria
func (h *ReferenceHandler) Criteria(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"criteria":            h.engine.Spec().Criteria(),
		"variation_fractions": h.engine.Fractions(),
	})
}
