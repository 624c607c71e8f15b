package scoring

import "fmt"

// RecommendationKind identifies which threshold triggered a recommendation.
type RecommendationKind string

const (
	RecommendDecisionStable    RecommendationKind = "decision_stable"
	RecommendDecisionModerate  RecommendationKind = "decision_moderate"
	RecommendDecisionSensitive RecommendationKind = "decision_sensitive"
	RecommendMostSensitive     RecommendationKind = "most_sensitive_criterion"
	RecommendReviewWeight      RecommendationKind = "review_weight"
)

// Recommendation is a threshold-triggered advisory. Kind, Criterion,
// StabilityScore and Threshold carry the facts; Message is default English
// wording that presentation layers may replace.
type Recommendation struct {
	Kind           RecommendationKind `json:"kind"`
	Criterion      string             `json:"criterion,omitempty"`
	StabilityScore float64            `json:"stability_score"`
	Threshold      float64            `json:"threshold"`
	Message        string             `json:"message"`
}

func recommend(criteria []CriterionSensitivity, overall OverallSensitivity, t Thresholds) []Recommendation {
	var out []Recommendation

	s := overall.OverallStabilityScore
	switch {
	case s >= t.High:
		out = append(out, Recommendation{
			Kind: RecommendDecisionStable, StabilityScore: s, Threshold: t.High,
			Message: "Your decision is highly stable across weight variations. The ranking is reliable.",
		})
	case s >= t.Moderate:
		out = append(out, Recommendation{
			Kind: RecommendDecisionModerate, StabilityScore: s, Threshold: t.Moderate,
			Message: "Your decision shows moderate stability. Consider the most sensitive criteria.",
		})
	default:
		out = append(out, Recommendation{
			Kind: RecommendDecisionSensitive, StabilityScore: s, Threshold: t.Moderate,
			Message: "Your decision is sensitive to weight changes. Review your preferences carefully.",
		})
	}

	// Only worth calling out when some perturbation actually moved the top.
	for _, c := range criteria {
		if c.Criterion == overall.MostSensitiveCriterion && c.Metrics.StabilityScore < 100 {
			out = append(out, Recommendation{
				Kind:           RecommendMostSensitive,
				Criterion:      c.Criterion,
				StabilityScore: c.Metrics.StabilityScore,
				Threshold:      100,
				Message: fmt.Sprintf("The '%s' criterion has the highest impact on rankings. "+
					"Ensure your weight reflects its true importance to you.", c.Criterion),
			})
			break
		}
	}

	for _, c := range criteria {
		if c.Metrics.StabilityScore < t.Review {
			out = append(out, Recommendation{
				Kind:           RecommendReviewWeight,
				Criterion:      c.Criterion,
				StabilityScore: c.Metrics.StabilityScore,
				Threshold:      t.Review,
				Message: fmt.Sprintf("Consider reviewing your '%s' weight - small changes significantly affect rankings.",
					c.Criterion),
			})
		}
	}
	return out
}
