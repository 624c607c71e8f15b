package scoring

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNormalizeBounds(t *testing.T) {
	spec := DefaultCriteria()
	n, err := Normalize(sampleCountries(), spec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, country := range n.Countries {
		for _, id := range n.Criteria {
			v, ok := n.Score(country, id)
			if !ok {
				t.Fatalf("missing score for %s/%s", country, id)
			}
			if v < 0 || v > 1 {
				t.Errorf("%s/%s: score %v outside [0,1]", country, id, v)
			}
		}
	}
}

func TestNormalizePolarity(t *testing.T) {
	n, err := Normalize(scenarioCountries(), scenarioSpec(t))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	tests := []struct {
		country, criterion string
		want               float64
	}{
		{"B", "cost", 1}, // cheapest
		{"A", "cost", 0.5},
		{"C", "cost", 0},
		{"C", "benefit", 1},
		{"A", "benefit", 2.0 / 3.0},
		{"B", "benefit", 0},
	}
	for _, tt := range tests {
		got, _ := n.Score(tt.country, tt.criterion)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s/%s: expected %v, got %v", tt.country, tt.criterion, tt.want, got)
		}
	}
}

func TestNormalizeDegenerateTie(t *testing.T) {
	countries := []Country{
		{Name: "A", Values: map[string]float64{"cost": 4, "benefit": 1}},
		{Name: "B", Values: map[string]float64{"cost": 4, "benefit": 3}},
	}
	n, err := Normalize(countries, scenarioSpec(t))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, c := range []string{"A", "B"} {
		if v, _ := n.Score(c, "cost"); v != 1 {
			t.Errorf("%s: tied criterion should score 1, got %v", c, v)
		}
	}

	single, err := Normalize(countries[:1], scenarioSpec(t))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, id := range single.Criteria {
		if v, _ := single.Score("A", id); v != 1 {
			t.Errorf("single country %s: expected 1, got %v", id, v)
		}
	}
}

func TestNormalizeMonotonic(t *testing.T) {
	spec := scenarioSpec(t)
	base, _ := Normalize(scenarioCountries(), spec)
	before, _ := base.Score("A", "benefit")

	better := scenarioCountries()
	better[0].Values["benefit"] = 8.5
	n, _ := Normalize(better, spec)
	after, _ := n.Score("A", "benefit")
	if after < before {
		t.Errorf("raising a benefit value lowered the score: %v -> %v", before, after)
	}

	cheaper := scenarioCountries()
	cheaper[0].Values["cost"] = 4
	n, _ = Normalize(cheaper, spec)
	costAfter, _ := n.Score("A", "cost")
	costBefore, _ := base.Score("A", "cost")
	if costAfter < costBefore {
		t.Errorf("lowering a cost value lowered the score: %v -> %v", costBefore, costAfter)
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	n, err := Normalize(scenarioCountries(), scenarioSpec(t))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := n.Countries; got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Errorf("expected caller order, got %v", got)
	}
	if got := n.Criteria; got[0] != "cost" || got[1] != "benefit" {
		t.Errorf("expected registration order, got %v", got)
	}
}

func TestNormalizeIgnoresDeclaredDomain(t *testing.T) {
	countries := scenarioCountries()
	countries[2].Values["benefit"] = 42
	if _, err := Normalize(countries, scenarioSpec(t)); err != nil {
		t.Errorf("out-of-domain values should normalize against observed range, got %v", err)
	}
}

func TestNormalizeErrors(t *testing.T) {
	spec := scenarioSpec(t)

	tests := []struct {
		name      string
		countries []Country
		country   string
		criterion string
	}{
		{"empty", nil, "", ""},
		{"missing value", []Country{{Name: "A", Values: map[string]float64{"cost": 1}}}, "A", "benefit"},
		{"nan", []Country{{Name: "A", Values: map[string]float64{"cost": math.NaN(), "benefit": 1}}}, "A", "cost"},
		{"inf", []Country{{Name: "A", Values: map[string]float64{"cost": 1, "benefit": math.Inf(1)}}}, "A", "benefit"},
		{"unknown criterion", []Country{{Name: "A", Values: map[string]float64{"cost": 1, "benefit": 1, "tuition": 3}}}, "A", "tuition"},
		{"duplicate name", []Country{
			{Name: "A", Values: map[string]float64{"cost": 1, "benefit": 1}},
			{Name: "A", Values: map[string]float64{"cost": 2, "benefit": 2}},
		}, "A", ""},
		{"no name", []Country{{Values: map[string]float64{"cost": 1, "benefit": 1}}}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.countries, spec)
			inv, ok := err.(*InvalidInputError)
			if !ok {
				t.Fatalf("expected *InvalidInputError, got %T %v", err, err)
			}
			if inv.Country != tt.country || inv.Criterion != tt.criterion {
				t.Errorf("expected country %q criterion %q, got %+v", tt.country, tt.criterion, inv)
			}
		})
	}
}

func TestAggregateScaleInvariant(t *testing.T) {
	spec := DefaultCriteria()
	n, err := Normalize(sampleCountries(), spec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	w := WeightVector{CostOfLiving: 2, UniversityRanking: 1, LanguageBarrier: 0.5, SafetyIndex: 3}

	base, err := Aggregate(n, w)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	for _, k := range []float64{0.01, 3, 1000} {
		scaled, err := Aggregate(n, w.Scale(k))
		if err != nil {
			t.Fatalf("Aggregate x%v: %v", k, err)
		}
		for country, s := range base {
			if math.Abs(scaled[country]-s) > 1e-9 {
				t.Errorf("x%v %s: expected %v, got %v", k, country, s, scaled[country])
			}
		}
		if got, want := Rank(scaled).Order(), Rank(base).Order(); !equalStrings(got, want) {
			t.Errorf("x%v: ranking changed %v -> %v", k, want, got)
		}
	}
}

func TestAggregateIgnoresUnknownWeights(t *testing.T) {
	spec := scenarioSpec(t)
	n, _ := Normalize(scenarioCountries(), spec)

	plain, _ := Aggregate(n, equalWeights())
	extra, err := Aggregate(n, WeightVector{"cost": 1, "benefit": 1, "tuition": 7})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	for c, s := range plain {
		if extra[c] != s {
			t.Errorf("%s: unknown weight changed score %v -> %v", c, s, extra[c])
		}
	}
}

func TestRankTieBreakByName(t *testing.T) {
	r := Rank(map[string]float64{"Zed": 0.5, "Amy": 0.5, "Max": 0.9})
	if got := r.Order(); !equalStrings(got, []string{"Max", "Amy", "Zed"}) {
		t.Errorf("unexpected order %v", got)
	}
	for i, e := range r {
		if e.Rank != i+1 {
			t.Errorf("expected strict rank %d, got %d", i+1, e.Rank)
		}
	}

	zero := Rank(map[string]float64{"A": 0, "B": 0})
	if zero[0].Percentage != 0 {
		t.Errorf("all-zero scores should give 0 percentage, got %v", zero[0].Percentage)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNormalizeExtremeRange(t *testing.T) {
	spec := scenarioSpec(t)
	countries := []Country{
		{Name: "A", Values: map[string]float64{"cost": -math.MaxFloat64, "benefit": 1e308}},
		{Name: "B", Values: map[string]float64{"cost": math.MaxFloat64, "benefit": -1e308}},
		{Name: "C", Values: map[string]float64{"cost": 0, "benefit": 0}},
	}
	n, err := Normalize(countries, spec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := map[string]map[string]float64{
		"A": {"cost": 1, "benefit": 1},
		"B": {"cost": 0, "benefit": 0},
		"C": {"cost": 0.5, "benefit": 0.5},
	}
	for country, row := range want {
		for id, w := range row {
			got, _ := n.Score(country, id)
			if math.IsNaN(got) || math.Abs(got-w) > 1e-12 {
				t.Errorf("%s %s: expected %v, got %v", country, id, w, got)
			}
		}
	}

	result, err := Evaluate(countries, spec, equalWeights())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if _, err := json.Marshal(result); err != nil {
		t.Errorf("result must encode: %v", err)
	}
	if result.Top() != "A" {
		t.Errorf("expected A on top, got %s", result.Top())
	}
}

func TestAggregateScaleInvariantAtOverflow(t *testing.T) {
	spec := scenarioSpec(t)
	base, err := Evaluate(scenarioCountries(), spec, equalWeights())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	for _, w := range []WeightVector{
		equalWeights().Scale(1e308),
		{"cost": math.MaxFloat64, "benefit": math.MaxFloat64},
	} {
		scaled, err := Evaluate(scenarioCountries(), spec, w)
		if err != nil {
			t.Fatalf("Evaluate %v: %v", w, err)
		}
		if got, want := scaled.Order(), base.Order(); !equalStrings(got, want) {
			t.Errorf("%v: ranking changed %v -> %v", w, want, got)
		}
		for i := range base {
			if math.Abs(scaled[i].Score-base[i].Score) > 1e-12 {
				t.Errorf("%v %s: expected %v, got %v", w, base[i].Country, base[i].Score, scaled[i].Score)
			}
			if math.Abs(scaled[i].Percentage-base[i].Percentage) > 1e-9 {
				t.Errorf("%v %s: percentage %v, want %v", w, base[i].Country, scaled[i].Percentage, base[i].Percentage)
			}
		}
	}
}
