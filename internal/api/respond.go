package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Compass/internal/dataset"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// errorBody carries the offending country/criterion/field so the caller can
// point the user at the exact input to fix. Row is set for batch uploads.
type errorBody struct {
	Error     string `json:"error"`
	Country   string `json:"country,omitempty"`
	Criterion string `json:"criterion,omitempty"`
	Field     string `json:"field,omitempty"`
	Row       int    `json:"row,omitempty"`
}

// writeError maps engine and store errors onto HTTP status codes and returns
// the short reason label used for metrics.
func writeError(w http.ResponseWriter, err error) string {
	body := errorBody{Error: err.Error()}
	var rowErr *dataset.RowError
	if errors.As(err, &rowErr) {
		body.Row = rowErr.Row
	}

	var inv *scoring.InvalidInputError
	var cfgErr *scoring.ConfigurationError
	status, reason := http.StatusInternalServerError, "internal"
	switch {
	case errors.As(err, &inv):
		body.Country, body.Criterion, body.Field = inv.Country, inv.Criterion, inv.Field
		status, reason = http.StatusBadRequest, "invalid_input"
	case errors.As(err, &cfgErr):
		body.Criterion = cfgErr.Criterion
		reason = "configuration"
	case errors.Is(err, store.ErrNotFound):
		status, reason = http.StatusNotFound, "not_found"
	case errors.Is(err, store.ErrDuplicate):
		status, reason = http.StatusConflict, "duplicate"
	}
	writeJSON(w, status, body)
	return reason
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
