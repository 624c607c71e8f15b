package scoring

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultCriteria(t *testing.T) {
	spec := DefaultCriteria()
	want := []string{CostOfLiving, UniversityRanking, LanguageBarrier, VisaDifficulty, JobProspects, ClimateScore, SafetyIndex}
	if !equalStrings(spec.IDs(), want) {
		t.Fatalf("expected %v, got %v", want, spec.IDs())
	}

	costs := map[string]bool{CostOfLiving: true, LanguageBarrier: true, VisaDifficulty: true}
	for _, c := range spec.Criteria() {
		wantPolarity := PolarityBenefit
		if costs[c.ID] {
			wantPolarity = PolarityCost
		}
		if c.Polarity != wantPolarity {
			t.Errorf("%s: expected %s, got %s", c.ID, wantPolarity, c.Polarity)
		}
		if c.Min != 0 || c.Max != 10 {
			t.Errorf("%s: expected domain [0,10], got [%v,%v]", c.ID, c.Min, c.Max)
		}
	}
}

func TestNewCriteriaSpecErrors(t *testing.T) {
	tests := []struct {
		name      string
		criteria  []Criterion
		criterion string
	}{
		{"duplicate", []Criterion{
			{ID: "cost", Polarity: PolarityCost, Max: 1},
			{ID: "cost", Polarity: PolarityBenefit, Max: 1},
		}, "cost"},
		{"unknown polarity", []Criterion{{ID: "x", Polarity: "neutral", Max: 1}}, "x"},
		{"inverted domain", []Criterion{{ID: "x", Polarity: PolarityCost, Min: 5, Max: 1}}, "x"},
		{"nan domain", []Criterion{{ID: "x", Polarity: PolarityCost, Max: math.NaN()}}, "x"},
		{"missing id", []Criterion{{Polarity: PolarityCost}}, ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCriteriaSpec(tt.criteria...)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Criterion != tt.criterion {
				t.Errorf("expected criterion %q, got %q", tt.criterion, cfgErr.Criterion)
			}
			if IsInvalidInput(err) {
				t.Error("configuration errors must not read as invalid input")
			}
		})
	}
}

func TestCriteriaSpecAccessors(t *testing.T) {
	spec := scenarioSpec(t)

	if spec.Len() != 2 {
		t.Errorf("expected 2 criteria, got %d", spec.Len())
	}
	c, ok := spec.Lookup("benefit")
	if !ok || c.Polarity != PolarityBenefit {
		t.Errorf("Lookup(benefit) = %+v, %v", c, ok)
	}
	if c.Label != "benefit" {
		t.Errorf("empty label should default to id, got %q", c.Label)
	}
	if _, ok := spec.Lookup("tuition"); ok {
		t.Error("Lookup should miss unknown criteria")
	}

	list := spec.Criteria()
	list[0].ID = "mutated"
	if spec.IDs()[0] != "cost" {
		t.Error("Criteria must return a copy")
	}
}

func TestValidateRecord(t *testing.T) {
	spec := scenarioSpec(t)

	if err := spec.ValidateRecord(Country{Name: "A", Values: map[string]float64{"cost": 0, "benefit": 10}}); err != nil {
		t.Errorf("boundary values should pass, got %v", err)
	}

	err := spec.ValidateRecord(Country{Name: "A", Values: map[string]float64{"cost": 3, "benefit": 10.5}})
	var inv *InvalidInputError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if inv.Country != "A" || inv.Criterion != "benefit" {
		t.Errorf("unexpected error detail %+v", inv)
	}

	if err := spec.ValidateRecord(Country{Name: "A", Values: map[string]float64{"cost": -1, "benefit": 1}}); !IsInvalidInput(err) {
		t.Errorf("negative value should be rejected, got %v", err)
	}
	if err := spec.ValidateRecord(Country{Name: "A", Values: map[string]float64{"cost": 1}}); !IsInvalidInput(err) {
		t.Errorf("missing value should be rejected, got %v", err)
	}
}

func TestWeightVector(t *testing.T) {
	spec := scenarioSpec(t)

	eq := EqualWeights(spec)
	if eq.Sum() != 2 || eq["cost"] != 1 {
		t.Errorf("unexpected equal weights %v", eq)
	}

	w := WeightVector{"cost": 2}
	if err := w.Validate(spec); err != nil {
		t.Errorf("partial weights should be valid, got %v", err)
	}

	changed := w.With("cost", 5)
	if w["cost"] != 2 || changed["cost"] != 5 {
		t.Errorf("With must not mutate the receiver: %v %v", w, changed)
	}
	if got := w.Scale(3)["cost"]; got != 6 {
		t.Errorf("Scale: expected 6, got %v", got)
	}
	var empty WeightVector
	if got := empty.With("cost", 1); got["cost"] != 1 {
		t.Errorf("With on nil vector: %v", got)
	}
}

func TestCompare(t *testing.T) {
	spec := DefaultCriteria()
	cmp, err := Compare(sampleCountries(), spec, []string{"Japan", "Canada", "Japan", "Atlantis"}, []string{CostOfLiving, SafetyIndex})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(cmp.Countries) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(cmp.Countries))
	}
	if len(cmp.Missing) != 1 || cmp.Missing[0] != "Atlantis" {
		t.Errorf("expected Atlantis missing, got %v", cmp.Missing)
	}

	cost := cmp.Criteria[0]
	if cost.Best != "Japan" || cost.Worst != "Canada" {
		t.Errorf("cost polarity: expected Japan best, Canada worst, got %s/%s", cost.Best, cost.Worst)
	}
	if math.Abs(cost.Range-0.3) > 1e-9 {
		t.Errorf("expected range 0.3, got %v", cost.Range)
	}
	safety := cmp.Criteria[1]
	if safety.Best != "Japan" || math.Abs(safety.Average-9.15) > 1e-9 {
		t.Errorf("unexpected safety comparison %+v", safety)
	}

	folded, err := Compare(sampleCountries(), spec, []string{"japan", " CANADA ", "Japan"}, []string{SafetyIndex})
	if err != nil {
		t.Fatalf("Compare case-folded: %v", err)
	}
	if len(folded.Countries) != 2 || folded.Countries[0].Name != "Japan" || len(folded.Missing) != 0 {
		t.Errorf("names should match case-insensitively, got %+v missing %v", folded.Countries, folded.Missing)
	}

	if _, err := Compare(sampleCountries(), spec, []string{"Atlantis"}, nil); !IsInvalidInput(err) {
		t.Errorf("expected invalid input when nothing matches, got %v", err)
	}
	if _, err := Compare(sampleCountries(), spec, []string{"Japan"}, []string{"tuition"}); !IsInvalidInput(err) {
		t.Errorf("expected invalid input for unknown criterion, got %v", err)
	}
}

func TestDescribeMethod(t *testing.T) {
	info := DescribeMethod(DefaultCriteria())
	if len(info.Criteria) != 7 {
		t.Errorf("expected 7 criteria types, got %d", len(info.Criteria))
	}
	if info.Criteria[VisaDifficulty] != PolarityCost || info.Criteria[ClimateScore] != PolarityBenefit {
		t.Errorf("unexpected polarities %v", info.Criteria)
	}
}
