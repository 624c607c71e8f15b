package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

var (
	// ErrNotFound is returned by mutations that target a missing row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a country name is already taken.
	ErrDuplicate = errors.New("duplicate")
)

type AnalysisKind string

const (
	AnalysisRanking     AnalysisKind = "ranking"
	AnalysisSensitivity AnalysisKind = "sensitivity"
)

// Country is a persisted candidate destination. Values are raw criterion
// values keyed by criterion ID.
type Country struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Values    map[string]float64 `json:"values"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Engine returns the record as an independent scoring.Country.
func (c *Country) Engine() scoring.Country {
	values := make(map[string]float64, len(c.Values))
	for k, v := range c.Values {
		values[k] = v
	}
	return scoring.Country{Name: c.Name, Values: values}
}

// EngineCountries converts records for a single engine call.
func EngineCountries(countries []*Country) []scoring.Country {
	out := make([]scoring.Country, 0, len(countries))
	for _, c := range countries {
		out = append(out, c.Engine())
	}
	return out
}

// Preferences is one saved weight vector for a session. The latest row per
// session wins.
type Preferences struct {
	ID        uuid.UUID          `json:"id"`
	SessionID string             `json:"session_id"`
	Weights   map[string]float64 `json:"weights"`
	CreatedAt time.Time          `json:"created_at"`
}

// AnalysisRecord is the history entry written after each analysis. Result
// holds the JSON-encoded RankedResult or SensitivityReport.
type AnalysisRecord struct {
	ID         uuid.UUID          `json:"id"`
	SessionID  string             `json:"session_id"`
	Kind       AnalysisKind       `json:"kind"`
	TopCountry string             `json:"top_country"`
	Weights    map[string]float64 `json:"weights"`
	Result     json.RawMessage    `json:"result"`
	CreatedAt  time.Time          `json:"created_at"`
}

type Stats struct {
	Countries          int    `json:"countries"`
	Preferences        int    `json:"preferences"`
	Analyses           int    `json:"analyses"`
	RankingAnalyses    int    `json:"ranking_analyses"`
	SensitivityRuns    int    `json:"sensitivity_analyses"`
	Sessions           int    `json:"sessions"`
	MostFrequentTop    string `json:"most_frequent_top_country,omitempty"`
	MostFrequentTopCnt int    `json:"most_frequent_top_count"`
}

// Store is the persistence boundary for the request layer. Getters return
// (nil, nil) when the row does not exist.
type Store interface {
	// Countries
	CreateCountry(ctx context.Context, c *Country) error
	// CreateCountries is all-or-nothing.
	CreateCountries(ctx context.Context, countries []*Country) error
	GetCountry(ctx context.Context, id uuid.UUID) (*Country, error)
	GetCountryByName(ctx context.Context, name string) (*Country, error)
	ListCountries(ctx context.Context) ([]*Country, error)
	UpdateCountry(ctx context.Context, c *Country) error
	DeleteCountry(ctx context.Context, id uuid.UUID) error

	// Preferences
	SavePreferences(ctx context.Context, p *Preferences) error
	GetLatestPreferences(ctx context.Context, sessionID string) (*Preferences, error)

	// History
	CreateAnalysisRecord(ctx context.Context, r *AnalysisRecord) error
	GetAnalysisHistory(ctx context.Context, sessionID string, limit int) ([]*AnalysisRecord, error)

	GetStats(ctx context.Context) (*Stats, error)
	Ping(ctx context.Context) error
	Close() error
}
