package scoring

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Polarity states whether a higher raw value is better or worse.
type Polarity string

const (
	// PolarityCost criteria score lower as the raw value rises.
	PolarityCost Polarity = "cost"
	// PolarityBenefit criteria score higher as the raw value rises.
	PolarityBenefit Polarity = "benefit"
)

// Canonical criterion identifiers.
const (
	CostOfLiving      = "cost_of_living"
	UniversityRanking = "university_ranking"
	LanguageBarrier   = "language_barrier"
	VisaDifficulty    = "visa_difficulty"
	JobProspects      = "job_prospects"
	ClimateScore      = "climate_score"
	SafetyIndex       = "safety_index"
)

// Criterion describes one evaluation dimension. Min and Max are the declared
// raw-value domain; normalization itself anchors on observed values.
type Criterion struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Polarity Polarity `json:"polarity" yaml:"polarity"`
	Min      float64  `json:"min" yaml:"min"`
	Max      float64  `json:"max" yaml:"max"`
}

// CriteriaSpec is an immutable, ordered table of criteria.
type CriteriaSpec struct {
	criteria []Criterion
	index    map[string]int
}

// NewCriteriaSpec registers the given criteria in order.
func NewCriteriaSpec(criteria ...Criterion) (*CriteriaSpec, error) {
	s := &CriteriaSpec{index: make(map[string]int, len(criteria))}
	for _, c := range criteria {
		if err := s.register(c); err != nil {
			return nil, err
		}
	}
	if len(s.criteria) == 0 {
		return nil, &ConfigurationError{Reason: "at least one criterion is required"}
	}
	return s, nil
}

func (s *CriteriaSpec) register(c Criterion) error {
	if c.ID == "" {
		return &ConfigurationError{Reason: "criterion id is required"}
	}
	if _, dup := s.index[c.ID]; dup {
		return &ConfigurationError{Criterion: c.ID, Reason: "registered twice"}
	}
	switch c.Polarity {
	case PolarityCost, PolarityBenefit:
	default:
		return &ConfigurationError{Criterion: c.ID, Reason: fmt.Sprintf("unknown polarity %q", c.Polarity)}
	}
	if !isFinite(c.Min) || !isFinite(c.Max) || c.Min > c.Max {
		return &ConfigurationError{Criterion: c.ID, Reason: fmt.Sprintf("invalid domain [%v, %v]", c.Min, c.Max)}
	}
	if c.Label == "" {
		c.Label = c.ID
	}
	s.index[c.ID] = len(s.criteria)
	s.criteria = append(s.criteria, c)
	return nil
}

// DefaultCriteria returns the seven destination criteria on a 0–10 scale.
func DefaultCriteria() *CriteriaSpec {
	spec, err := NewCriteriaSpec(
		Criterion{ID: CostOfLiving, Label: "Cost of living", Polarity: PolarityCost, Min: 0, Max: 10},
		Criterion{ID: UniversityRanking, Label: "University ranking", Polarity: PolarityBenefit, Min: 0, Max: 10},
		Criterion{ID: LanguageBarrier, Label: "Language barrier", Polarity: PolarityCost, Min: 0, Max: 10},
		Criterion{ID: VisaDifficulty, Label: "Visa difficulty", Polarity: PolarityCost, Min: 0, Max: 10},
		Criterion{ID: JobProspects, Label: "Job prospects", Polarity: PolarityBenefit, Min: 0, Max: 10},
		Criterion{ID: ClimateScore, Label: "Climate", Polarity: PolarityBenefit, Min: 0, Max: 10},
		Criterion{ID: SafetyIndex, Label: "Safety", Polarity: PolarityBenefit, Min: 0, Max: 10},
	)
	if err != nil {
		panic(err)
	}
	return spec
}

// Criteria returns the criteria in registration order. The slice is a copy.
func (s *CriteriaSpec) Criteria() []Criterion {
	out := make([]Criterion, len(s.criteria))
	copy(out, s.criteria)
	return out
}

// IDs returns criterion identifiers in registration order.
func (s *CriteriaSpec) IDs() []string {
	out := make([]string, len(s.criteria))
	for i, c := range s.criteria {
		out[i] = c.ID
	}
	return out
}

// Lookup returns the criterion registered under id.
func (s *CriteriaSpec) Lookup(id string) (Criterion, bool) {
	i, ok := s.index[id]
	if !ok {
		return Criterion{}, false
	}
	return s.criteria[i], true
}

// Len returns the number of registered criteria.
func (s *CriteriaSpec) Len() int { return len(s.criteria) }

// ValidateRecord checks a country against the table, including the declared
// raw-value domain. Normalize does not enforce the domain; ingestion does.
func (s *CriteriaSpec) ValidateRecord(c Country) error {
	if err := s.validateShape(c); err != nil {
		return err
	}
	for _, crit := range s.criteria {
		v := c.Values[crit.ID]
		if v < crit.Min || v > crit.Max {
			return &InvalidInputError{
				Country:   c.Name,
				Criterion: crit.ID,
				Reason:    fmt.Sprintf("value %v outside declared range [%v, %v]", v, crit.Min, crit.Max),
			}
		}
	}
	return nil
}

// validateShape rejects records that do not carry exactly one finite value
// per known criterion.
func (s *CriteriaSpec) validateShape(c Country) error {
	if c.Name == "" {
		return invalidf("name", "country name is required")
	}
	for _, crit := range s.criteria {
		v, ok := c.Values[crit.ID]
		if !ok {
			return &InvalidInputError{Country: c.Name, Criterion: crit.ID, Reason: "missing value"}
		}
		if !isFinite(v) {
			return &InvalidInputError{Country: c.Name, Criterion: crit.ID, Reason: fmt.Sprintf("non-finite value %v", v)}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(c.Values)) {
		if _, ok := s.index[id]; !ok {
			return &InvalidInputError{Country: c.Name, Criterion: id, Reason: "unknown criterion"}
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
