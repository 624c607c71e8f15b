package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

// NameColumn is the header of the column holding the country name. Every
// other column is a criterion ID.
const NameColumn = "name"

// ErrEmpty is returned when the input has no header row.
var ErrEmpty = errors.New("csv: empty input (no header row)")

// RowError ties a failure to a CSV line. The header is row 1.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("csv: row %d: %v", e.Row, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// ReadCSV parses a country catalogue:
//
//	name,cost_of_living,university_ranking,...
//	Canada,6.8,8.5,...
//
// Columns may appear in any order. Each row is checked with
// CriteriaSpec.ValidateRecord, so blank or out-of-range cells fail with a
// *RowError wrapping the *scoring.InvalidInputError.
func ReadCSV(r io.Reader, spec *scoring.CriteriaSpec) ([]scoring.Country, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	header, nameCol, err := readHeader(records[0], spec)
	if err != nil {
		return nil, err
	}

	out := make([]scoring.Country, 0, len(records)-1)
	for i, record := range records[1:] {
		row := i + 2
		c := scoring.Country{
			Name:   strings.TrimSpace(record[nameCol]),
			Values: make(map[string]float64, len(header)-1),
		}
		for j, id := range header {
			cell := strings.TrimSpace(record[j])
			if j == nameCol || cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &RowError{Row: row, Err: &scoring.InvalidInputError{
					Country:   c.Name,
					Criterion: id,
					Reason:    fmt.Sprintf("%q is not a number", cell),
				}}
			}
			c.Values[id] = v
		}
		if err := spec.ValidateRecord(c); err != nil {
			return nil, &RowError{Row: row, Err: err}
		}
		out = append(out, c)
	}
	return out, nil
}

func readHeader(record []string, spec *scoring.CriteriaSpec) ([]string, int, error) {
	header := make([]string, len(record))
	nameCol := -1
	seen := make(map[string]bool, len(record))
	for i, h := range record {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		if seen[h] {
			return nil, 0, &RowError{Row: 1, Err: &scoring.InvalidInputError{Field: "header", Criterion: h, Reason: "duplicate column"}}
		}
		seen[h] = true
		if h == NameColumn {
			nameCol = i
			continue
		}
		if _, ok := spec.Lookup(h); !ok {
			return nil, 0, &RowError{Row: 1, Err: &scoring.InvalidInputError{Field: "header", Criterion: h, Reason: "unknown column"}}
		}
	}
	if nameCol < 0 {
		return nil, 0, &RowError{Row: 1, Err: &scoring.InvalidInputError{Field: "header", Reason: "missing name column"}}
	}
	return header, nameCol, nil
}
