package api

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/dataset"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

const maxBulkBytes = 10 << 20

type CountriesHandler struct {
	store    store.Store
	hermes   hermes.Client
	spec     *scoring.CriteriaSpec
	snapshot *CountrySnapshot
	logger   *slog.Logger
}

func NewCountriesHandler(s store.Store, h hermes.Client, spec *scoring.CriteriaSpec, snap *CountrySnapshot, logger *slog.Logger) *CountriesHandler {
	return &CountriesHandler{store: s, hermes: h, spec: spec, snapshot: snap, logger: logger}
}

type CountryRequest struct {
	Name   string             `json:"name"`
	Values map[string]float64 `json:"values"`
}

func (req CountryRequest) record() scoring.Country {
	return scoring.Country{Name: strings.TrimSpace(req.Name), Values: req.Values}
}

// List handles GET /api/v1/countries?sort_by=&order=&limit=&offset=
// sort_by is "name" or a criterion ID. The unpaginated count is returned in
// X-Total-Count.
func (h *CountriesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortBy := q.Get("sort_by")
	if sortBy == "" {
		sortBy = "name"
	}
	if _, ok := h.spec.Lookup(sortBy); !ok && sortBy != "name" {
		writeError(w, &scoring.InvalidInputError{Field: "sort_by", Criterion: sortBy, Reason: "unknown sort field"})
		return
	}
	order := strings.ToLower(q.Get("order"))
	if order == "" {
		order = "asc"
	}
	if order != "asc" && order != "desc" {
		writeError(w, &scoring.InvalidInputError{Field: "order", Reason: "order must be asc or desc"})
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, err)
		return
	}

	countries, err := h.snapshot.Countries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if countries == nil {
		countries = []*store.Country{}
	}
	sortCountries(countries, sortBy, order == "desc")

	w.Header().Set("X-Total-Count", strconv.Itoa(len(countries)))
	countries = countries[min(offset, len(countries)):]
	if limit > 0 {
		countries = countries[:min(limit, len(countries))]
	}
	writeJSON(w, http.StatusOK, countries)
}

// sortCountries orders by field, breaking ties by name so pages are stable.
func sortCountries(countries []*store.Country, field string, desc bool) {
	slices.SortStableFunc(countries, func(a, b *store.Country) int {
		var order int
		if field != "name" {
			order = cmp.Compare(a.Values[field], b.Values[field])
		}
		if order == 0 {
			order = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if desc {
			return -order
		}
		return order
	})
}

// queryInt reads a non-negative integer query parameter; absent means 0.
func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &scoring.InvalidInputError{Field: key, Reason: fmt.Sprintf("%q is not a non-negative integer", v)}
	}
	return n, nil
}

// Get handles GET /api/v1/countries/{id}
func (h *CountriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid country id"})
		return
	}
	country, err := h.store.GetCountry(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if country == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "country not found"})
		return
	}
	writeJSON(w, http.StatusOK, country)
}

// Create handles POST /api/v1/countries
func (h *CountriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CountryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	country, err := h.create(r, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, country)
}

// BulkRequest is the JSON form of a bulk upload. CSVData holds a CSV
// document in the dataset.ReadCSV layout.
type BulkRequest struct {
	Countries []CountryRequest `json:"countries,omitempty"`
	CSVData   string           `json:"csv_data,omitempty"`
}

// Bulk handles POST /api/v1/countries/bulk. The body is a BulkRequest, a
// text/csv document, or a multipart form with a .csv "file". Every record is
// validated and checked for repeated names before the batch is written in a
// single transaction, so a failure leaves the catalogue untouched.
func (h *CountriesHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBulkBytes)
	records, firstRow, err := h.bulkRecords(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(records) == 0 {
		writeError(w, &scoring.InvalidInputError{Field: "countries", Reason: "countries required"})
		return
	}

	batch := make([]*store.Country, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		row := firstRow + i
		rec.Name = strings.TrimSpace(rec.Name)
		if err := h.spec.ValidateRecord(rec); err != nil {
			writeError(w, &dataset.RowError{Row: row, Err: err})
			return
		}
		key := strings.ToLower(rec.Name)
		if prev, ok := seen[key]; ok {
			writeError(w, &dataset.RowError{Row: row, Err: fmt.Errorf("%w: name %s repeats row %d", store.ErrDuplicate, rec.Name, prev)})
			return
		}
		seen[key] = row
		batch = append(batch, &store.Country{Name: rec.Name, Values: rec.Values})
	}

	if err := h.store.CreateCountries(r.Context(), batch); err != nil {
		writeError(w, err)
		return
	}
	for _, c := range batch {
		h.changed(c, "created", hermes.SubjectCountryCreated(c.ID.String()))
	}
	writeJSON(w, http.StatusCreated, batch)
}

// bulkRecords decodes the upload and returns the row number of its first
// record: 1 for JSON arrays, 2 for CSV where row 1 is the header.
func (h *CountriesHandler) bulkRecords(r *http.Request) ([]scoring.Country, int, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, 0, &scoring.InvalidInputError{Field: "file", Reason: "a .csv file upload is required"}
		}
		defer file.Close()
		if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
			return nil, 0, &scoring.InvalidInputError{Field: "file", Reason: "file must be a CSV"}
		}
		return h.readCSV(file)
	case "text/csv":
		return h.readCSV(r.Body)
	}

	var req BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, 0, &scoring.InvalidInputError{Field: "body", Reason: "invalid request body"}
	}
	if req.CSVData != "" {
		if len(req.Countries) > 0 {
			return nil, 0, &scoring.InvalidInputError{Field: "body", Reason: "send either countries or csv_data, not both"}
		}
		return h.readCSV(strings.NewReader(req.CSVData))
	}
	records := make([]scoring.Country, 0, len(req.Countries))
	for _, c := range req.Countries {
		records = append(records, c.record())
	}
	return records, 1, nil
}

func (h *CountriesHandler) readCSV(r io.Reader) ([]scoring.Country, int, error) {
	records, err := dataset.ReadCSV(r, h.spec)
	if err != nil && !scoring.IsInvalidInput(err) {
		// Malformed CSV is still a client error.
		err = &scoring.InvalidInputError{Field: "csv", Reason: err.Error()}
	}
	return records, 2, err
}

func (h *CountriesHandler) create(r *http.Request, req CountryRequest) (*store.Country, error) {
	rec := req.record()
	if err := h.spec.ValidateRecord(rec); err != nil {
		return nil, err
	}
	country := &store.Country{Name: rec.Name, Values: rec.Values}
	if err := h.store.CreateCountry(r.Context(), country); err != nil {
		return nil, err
	}
	h.changed(country, "created", hermes.SubjectCountryCreated(country.ID.String()))
	return country, nil
}

// Update handles PUT /api/v1/countries/{id}
func (h *CountriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid country id"})
		return
	}
	var req CountryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rec := req.record()
	if err := h.spec.ValidateRecord(rec); err != nil {
		writeError(w, err)
		return
	}

	country := &store.Country{ID: id, Name: rec.Name, Values: rec.Values}
	if err := h.store.UpdateCountry(r.Context(), country); err != nil {
		writeError(w, err)
		return
	}
	h.changed(country, "updated", hermes.SubjectCountryUpdated(id.String()))
	writeJSON(w, http.StatusOK, country)
}

// Delete handles DELETE /api/v1/countries/{id}
func (h *CountriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid country id"})
		return
	}
	if err := h.store.DeleteCountry(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.changed(&store.Country{ID: id}, "deleted", hermes.SubjectCountryDeleted(id.String()))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// changed drops the local snapshot and tells other replicas to do the same.
func (h *CountriesHandler) changed(c *store.Country, action, subject string) {
	h.snapshot.Invalidate()
	hermes.Emit(h.hermes, h.logger, subject, hermes.CountryChangedEvent{
		CountryID: c.ID.String(),
		Name:      c.Name,
		Action:    action,
	})
}
