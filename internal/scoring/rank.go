package scoring

import (
	"cmp"
	"slices"
)

// CriterionScore captures one criterion's contribution to a country's score.
type CriterionScore struct {
	Criterion  string  `json:"criterion"`
	Normalized float64 `json:"normalized"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
}

// RankedEntry is one row of a ranking.
type RankedEntry struct {
	Rank       int              `json:"rank"`
	Country    string           `json:"country"`
	Score      float64          `json:"score"`
	Percentage float64          `json:"percentage"`
	Breakdown  []CriterionScore `json:"breakdown,omitempty"`
}

// RankedResult is a ranking ordered from rank 1 downwards.
type RankedResult []RankedEntry

// Top returns the first-ranked country, or "" for an empty result.
func (r RankedResult) Top() string {
	if len(r) == 0 {
		return ""
	}
	return r[0].Country
}

// Order returns country names in rank order.
func (r RankedResult) Order() []string {
	out := make([]string, len(r))
	for i, e := range r {
		out[i] = e.Country
	}
	return out
}

// Scores returns each country's aggregate score.
func (r RankedResult) Scores() map[string]float64 {
	out := make(map[string]float64, len(r))
	for _, e := range r {
		out[e.Country] = e.Score
	}
	return out
}

// Rank orders countries by descending score. Equal scores are ordered by
// ascending country name, so ranks always form a strict sequence 1..N.
// Percentage is the score relative to the top score; all-zero scores give 0.
func Rank(scores map[string]float64) RankedResult {
	out := make(RankedResult, 0, len(scores))
	var top float64
	for country, score := range scores {
		out = append(out, RankedEntry{Country: country, Score: score})
		if score > top {
			top = score
		}
	}

	slices.SortFunc(out, func(a, b RankedEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Country, b.Country)
	})

	for i := range out {
		out[i].Rank = i + 1
		if top > 0 {
			out[i].Percentage = 100 * (out[i].Score / top)
		}
	}
	return out
}

// Evaluate runs normalize, aggregate and rank for one request and attaches
// the per-criterion breakdown to every entry.
func Evaluate(countries []Country, spec *CriteriaSpec, weights WeightVector) (RankedResult, error) {
	n, err := Normalize(countries, spec)
	if err != nil {
		return nil, err
	}
	return evaluateNormalized(n, weights)
}

func evaluateNormalized(n *NormalizedScores, weights WeightVector) (RankedResult, error) {
	scores, err := Aggregate(n, weights)
	if err != nil {
		return nil, err
	}
	result := Rank(scores)
	attachBreakdown(result, n, weights)
	return result, nil
}

func attachBreakdown(result RankedResult, n *NormalizedScores, weights WeightVector) {
	// Aggregate already validated weights; total is non-zero here.
	active, total, _ := effectiveWeights(n.Criteria, weights)
	for i := range result {
		row := n.Values[result[i].Country]
		breakdown := make([]CriterionScore, 0, len(n.Criteria))
		for _, id := range n.Criteria {
			w := weights[id]
			cs := CriterionScore{Criterion: id, Normalized: row[id], Weight: w}
			if slices.Contains(active, id) {
				cs.Weighted = w * row[id] / total
			}
			breakdown = append(breakdown, cs)
		}
		result[i].Breakdown = breakdown
	}
}
