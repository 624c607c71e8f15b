package scoring

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Aggregate combines normalized scores with a weight vector into one score
// per country:
//
//	score(country) = Σ w(c)·n(country, c) / Σ w(c)
//
// restricted to criteria present in both n and w. Results lie in [0,1].
func Aggregate(n *NormalizedScores, w WeightVector) (map[string]float64, error) {
	active, total, err := effectiveWeights(n.Criteria, w)
	if err != nil {
		return nil, err
	}

	// Weights are rescaled by the largest one only when their sum overflows.
	scale := 1.0
	if math.IsInf(total, 0) {
		for _, id := range active {
			scale = math.Max(scale, w[id])
		}
		total = 0
		for _, id := range active {
			total += w[id] / scale
		}
	}

	scores := make(map[string]float64, len(n.Countries))
	for _, country := range n.Countries {
		row := n.Values[country]
		var sum float64
		for _, id := range active {
			sum += (w[id] / scale) * row[id]
		}
		scores[country] = clamp(sum/total, 0, 1)
	}
	return scores, nil
}

// effectiveWeights validates w and returns the criteria, in canonical order,
// that carry a weight, together with their weight sum.
func effectiveWeights(criteria []string, w WeightVector) ([]string, float64, error) {
	for _, id := range slices.Sorted(maps.Keys(w)) {
		v := w[id]
		if !isFinite(v) {
			return nil, 0, &InvalidInputError{Field: "weights", Criterion: id, Reason: fmt.Sprintf("non-finite weight %v", v)}
		}
		if v < 0 {
			return nil, 0, &InvalidInputError{Field: "weights", Criterion: id, Reason: fmt.Sprintf("negative weight %v", v)}
		}
	}

	var active []string
	var total float64
	for _, id := range criteria {
		v, ok := w[id]
		if !ok {
			continue
		}
		active = append(active, id)
		total += v
	}
	if len(active) == 0 {
		return nil, 0, invalidf("weights", "weight vector references no known criterion")
	}
	if total == 0 {
		return nil, 0, invalidf("weights", "sum of weights is zero")
	}
	return active, total, nil
}
