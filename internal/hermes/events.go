package hermes

import "time"

type AnalysisRankedEvent struct {
	SessionID  string             `json:"session_id"`
	AnalysisID string             `json:"analysis_id,omitempty"`
	TopCountry string             `json:"top_country"`
	Countries  int                `json:"countries"`
	Weights    map[string]float64 `json:"weights"`
	DurationMs int64              `json:"duration_ms"`
}

type AnalysisSensitivityEvent struct {
	SessionID               string  `json:"session_id"`
	TopCountry              string  `json:"top_country"`
	OverallStabilityScore   float64 `json:"overall_stability_score"`
	MostSensitiveCriterion  string  `json:"most_sensitive_criterion"`
	LeastSensitiveCriterion string  `json:"least_sensitive_criterion"`
	Trials                  int     `json:"trials"`
	DurationMs              int64   `json:"duration_ms"`
}

type CountryChangedEvent struct {
	CountryID string `json:"country_id"`
	Name      string `json:"name"`
	Action    string `json:"action"`
}

type PreferencesSavedEvent struct {
	SessionID    string             `json:"session_id"`
	PreferenceID string             `json:"preference_id"`
	Weights      map[string]float64 `json:"weights"`
}

type StatsEvent struct {
	Countries          int       `json:"countries"`
	Preferences        int       `json:"preferences"`
	Analyses           int       `json:"analyses"`
	Sessions           int       `json:"sessions"`
	MostFrequentTop    string    `json:"most_frequent_top_country,omitempty"`
	MostFrequentTopCnt int       `json:"most_frequent_top_count"`
	Timestamp          time.Time `json:"timestamp"`
}
