package scoring

import "math"

// NormalizedScores holds per-country, per-criterion scores in [0,1] where 1
// is always best. Criteria keeps CriteriaSpec order and Countries keeps the
// caller's order so that every downstream sum runs in a fixed sequence.
type NormalizedScores struct {
	Criteria  []string                      `json:"criteria"`
	Countries []string                      `json:"countries"`
	Values    map[string]map[string]float64 `json:"values"`
}

// Score returns the normalized score for a country and criterion.
func (n *NormalizedScores) Score(country, criterion string) (float64, bool) {
	row, ok := n.Values[country]
	if !ok {
		return 0, false
	}
	v, ok := row[criterion]
	return v, ok
}

// Normalize converts raw criterion values into [0,1] scores relative to the
// min and max observed across the supplied countries. A criterion on which
// every country ties scores 1.0 for all of them.
func Normalize(countries []Country, spec *CriteriaSpec) (*NormalizedScores, error) {
	if len(countries) == 0 {
		return nil, invalidf("countries", "at least one country is required")
	}

	seen := make(map[string]bool, len(countries))
	names := make([]string, 0, len(countries))
	for _, c := range countries {
		if err := spec.validateShape(c); err != nil {
			return nil, err
		}
		if seen[c.Name] {
			return nil, &InvalidInputError{Country: c.Name, Field: "countries", Reason: "duplicate country name"}
		}
		seen[c.Name] = true
		names = append(names, c.Name)
	}

	out := &NormalizedScores{
		Criteria:  spec.IDs(),
		Countries: names,
		Values:    make(map[string]map[string]float64, len(countries)),
	}
	for _, c := range countries {
		out.Values[c.Name] = make(map[string]float64, spec.Len())
	}

	for _, crit := range spec.criteria {
		lo, hi := observedRange(countries, crit.ID)
		for _, c := range countries {
			out.Values[c.Name][crit.ID] = normalizeValue(c.Values[crit.ID], lo, hi, crit.Polarity)
		}
	}
	return out, nil
}

func observedRange(countries []Country, id string) (lo, hi float64) {
	lo = countries[0].Values[id]
	hi = lo
	for _, c := range countries[1:] {
		v := c.Values[id]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func normalizeValue(raw, lo, hi float64, p Polarity) float64 {
	if hi == lo {
		return 1.0
	}
	if math.IsInf(hi-lo, 0) {
		// Range wider than MaxFloat64: rescale so the span stays finite.
		s := math.Max(math.Abs(hi), math.Abs(lo))
		raw, lo, hi = raw/s, lo/s, hi/s
	}
	var v float64
	if p == PolarityCost {
		v = (hi - raw) / (hi - lo)
	} else {
		v = (raw - lo) / (hi - lo)
	}
	// Guards against rounding just outside [0,1] on extreme magnitudes.
	return clamp(v, 0, 1)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
