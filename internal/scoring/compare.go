package scoring

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// CriterionComparison describes how a set of countries compares on one
// criterion. Best and Worst respect the criterion's polarity.
type CriterionComparison struct {
	Criterion string             `json:"criterion"`
	Polarity  Polarity           `json:"polarity"`
	Values    map[string]float64 `json:"values"`
	Best      string             `json:"best_country"`
	Worst     string             `json:"worst_country"`
	Average   float64            `json:"average"`
	Range     float64            `json:"range"`
	Ordering  []string           `json:"ordering"`
}

// Comparison is a side-by-side view of selected countries.
type Comparison struct {
	Countries []Country             `json:"countries"`
	Criteria  []CriterionComparison `json:"criteria"`
	Missing   []string              `json:"missing_countries"`
}

// Compare lines up the named countries on the given criteria (all criteria
// when none are named). Names match case-insensitively. Names not present in countries are reported in
// Missing; if none of them are present the call fails.
func Compare(countries []Country, spec *CriteriaSpec, names []string, criteria []string) (*Comparison, error) {
	if len(names) == 0 {
		return nil, invalidf("countries", "at least one country name is required")
	}
	if len(criteria) == 0 {
		criteria = spec.IDs()
	}
	selected := make([]Criterion, 0, len(criteria))
	for _, id := range criteria {
		c, ok := spec.Lookup(id)
		if !ok {
			return nil, &InvalidInputError{Field: "criteria", Criterion: id, Reason: "unknown criterion"}
		}
		selected = append(selected, c)
	}

	byName := make(map[string]Country, len(countries))
	for _, c := range countries {
		byName[strings.ToLower(c.Name)] = c
	}

	out := &Comparison{Missing: []string{}}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if seen[key] {
			continue
		}
		seen[key] = true
		c, ok := byName[key]
		if !ok {
			out.Missing = append(out.Missing, name)
			continue
		}
		if err := spec.validateShape(c); err != nil {
			return nil, err
		}
		out.Countries = append(out.Countries, c)
	}
	if len(out.Countries) == 0 {
		return nil, invalidf("countries", "none of the requested countries were found")
	}

	for _, crit := range selected {
		out.Criteria = append(out.Criteria, compareOn(out.Countries, crit))
	}
	return out, nil
}

func compareOn(countries []Country, crit Criterion) CriterionComparison {
	cc := CriterionComparison{
		Criterion: crit.ID,
		Polarity:  crit.Polarity,
		Values:    make(map[string]float64, len(countries)),
		Ordering:  make([]string, 0, len(countries)),
	}
	var sum float64
	for _, c := range countries {
		v := c.Values[crit.ID]
		cc.Values[c.Name] = v
		cc.Ordering = append(cc.Ordering, c.Name)
		sum += v
	}
	cc.Average = sum / float64(len(countries))

	slices.SortFunc(cc.Ordering, func(a, b string) int {
		va, vb := cc.Values[a], cc.Values[b]
		order := cmp.Compare(vb, va)
		if crit.Polarity == PolarityCost {
			order = cmp.Compare(va, vb)
		}
		if order != 0 {
			return order
		}
		return cmp.Compare(a, b)
	})
	cc.Best = cc.Ordering[0]
	cc.Worst = cc.Ordering[len(cc.Ordering)-1]
	cc.Range = math.Abs(cc.Values[cc.Best] - cc.Values[cc.Worst])
	return cc
}
