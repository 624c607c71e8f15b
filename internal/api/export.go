package api

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

const (
	exportJSON = "json"
	exportCSV  = "csv"
)

// exportFields lists the columns an export may carry, in default order.
func (h *CountriesHandler) exportFields() []string {
	fields := append([]string{"id", "name"}, h.spec.IDs()...)
	return append(fields, "created_at", "updated_at")
}

// Export handles GET /api/v1/export?format=json|csv&fields=a,b
func (h *CountriesHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = exportJSON
	}
	if format != exportJSON && format != exportCSV {
		writeError(w, &scoring.InvalidInputError{Field: "format", Reason: "format must be json or csv"})
		return
	}
	fields, err := h.parseFields(r.URL.Query().Get("fields"))
	if err != nil {
		writeError(w, err)
		return
	}

	countries, err := h.snapshot.Countries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	now := time.Now().UTC()

	if format == exportCSV {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=countries_export_"+now.Format("20060102_150405")+".csv")
		w.WriteHeader(http.StatusOK)
		cw := csv.NewWriter(w)
		cw.Write(fields)
		for _, c := range countries {
			row := make([]string, len(fields))
			for i, f := range fields {
				row[i] = exportCell(c, f)
			}
			cw.Write(row)
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			h.logger.Warn("csv export interrupted", "error", err)
		}
		return
	}

	rows := make([]map[string]interface{}, 0, len(countries))
	for _, c := range countries {
		row := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			row[f] = exportValue(c, f)
		}
		rows = append(rows, row)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"countries":   rows,
		"count":       len(rows),
		"fields":      fields,
		"exported_at": now,
	})
}

func (h *CountriesHandler) parseFields(raw string) ([]string, error) {
	all := h.exportFields()
	if strings.TrimSpace(raw) == "" {
		return all, nil
	}
	known := make(map[string]bool, len(all))
	for _, f := range all {
		known[f] = true
	}
	var fields []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		if !known[f] {
			return nil, &scoring.InvalidInputError{Field: "fields", Criterion: f, Reason: "unknown export field"}
		}
		seen[f] = true
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return all, nil
	}
	return fields, nil
}

func exportValue(c *store.Country, field string) interface{} {
	switch field {
	case "id":
		return c.ID.String()
	case "name":
		return c.Name
	case "created_at":
		return c.CreatedAt
	case "updated_at":
		return c.UpdatedAt
	}
	return c.Values[field]
}

func exportCell(c *store.Country, field string) string {
	switch v := exportValue(c, field).(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
