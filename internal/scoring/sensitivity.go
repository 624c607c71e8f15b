package scoring

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultFractions returns the standard weight variation sweep.
func DefaultFractions() []float64 {
	return []float64{-0.2, -0.1, 0, 0.1, 0.2}
}

// Thresholds are stability-score cut-offs (0–100) used for the summary
// distribution and recommendations.
type Thresholds struct {
	High     float64 `json:"high" yaml:"high"`
	Moderate float64 `json:"moderate" yaml:"moderate"`
	Review   float64 `json:"review" yaml:"review"`
}

// DefaultThresholds returns High=85, Moderate=70, Review=60.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 85, Moderate: 70, Review: 60}
}

// Validate checks that thresholds lie in [0,100] and Moderate <= High.
func (t Thresholds) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{{"high", t.High}, {"moderate", t.Moderate}, {"review", t.Review}}
	for _, f := range fields {
		if !isFinite(f.value) || f.value < 0 || f.value > 100 {
			return invalidf("thresholds."+f.name, "must be within [0, 100], got %v", f.value)
		}
	}
	if t.Moderate > t.High {
		return invalidf("thresholds", "moderate (%v) exceeds high (%v)", t.Moderate, t.High)
	}
	return nil
}

// SensitivityOptions tunes Analyze. Zero values select the defaults.
type SensitivityOptions struct {
	Fractions   []float64
	Thresholds  Thresholds
	Parallelism int
}

// Trial is one perturbed re-ranking.
type Trial struct {
	Fraction           float64  `json:"fraction"`
	Weight             float64  `json:"weight"`
	TopCountry         string   `json:"top_country"`
	TopCountryChanged  bool     `json:"top_country_changed"`
	RankingChanges     int      `json:"ranking_changes"`
	AverageScoreChange float64  `json:"average_score_change"`
	MaxScoreChange     float64  `json:"max_score_change"`
	Ranking            []string `json:"ranking"`
}

// CriterionMetrics summarises the trials for one criterion.
type CriterionMetrics struct {
	StabilityScore            float64 `json:"stability_score"`
	AverageRankingChanges     float64 `json:"average_ranking_changes"`
	MaxRankingChanges         int     `json:"max_ranking_changes"`
	TopCountryChangeFrequency float64 `json:"top_country_change_frequency"`
	AverageScoreChange        float64 `json:"average_score_change"`
}

// CriterionSensitivity holds every trial run against one criterion's weight.
type CriterionSensitivity struct {
	Criterion      string           `json:"criterion"`
	BaselineWeight float64          `json:"baseline_weight"`
	Trials         []Trial          `json:"trials"`
	Metrics        CriterionMetrics `json:"metrics"`
}

// Baseline is the unperturbed ranking.
type Baseline struct {
	TopCountry string             `json:"top_country"`
	Ranking    []string           `json:"ranking"`
	Scores     map[string]float64 `json:"scores"`
}

// Distribution counts criteria per sensitivity band.
type Distribution struct {
	High   int `json:"high_sensitivity"`
	Medium int `json:"medium_sensitivity"`
	Low    int `json:"low_sensitivity"`
}

// OverallSensitivity is the cross-criterion summary.
type OverallSensitivity struct {
	OverallStabilityScore   float64      `json:"overall_stability_score"`
	MostSensitiveCriterion  string       `json:"most_sensitive_criterion"`
	LeastSensitiveCriterion string       `json:"least_sensitive_criterion"`
	AverageRankingChanges   float64      `json:"average_ranking_changes"`
	Distribution            Distribution `json:"distribution"`
}

// SensitivityReport is the immutable output of Analyze. Criteria follow
// CriteriaSpec order.
type SensitivityReport struct {
	Fractions       []float64              `json:"fractions"`
	Thresholds      Thresholds             `json:"thresholds"`
	BaselineWeights WeightVector           `json:"baseline_weights"`
	Baseline        Baseline               `json:"baseline"`
	Criteria        []CriterionSensitivity `json:"criteria"`
	Overall         OverallSensitivity     `json:"overall"`
	Recommendations []Recommendation       `json:"recommendations"`
}

// Criterion returns the sensitivity entry for id.
func (r *SensitivityReport) Criterion(id string) (CriterionSensitivity, bool) {
	for _, c := range r.Criteria {
		if c.Criterion == id {
			return c, true
		}
	}
	return CriterionSensitivity{}, false
}

// Analyze perturbs each baseline weight in turn by every fraction,
// w(c) ← w(c)·(1+f), re-ranks the countries and measures how far the
// ranking moves from the baseline. Invalid weights, fractions or thresholds
// fail before any trial runs.
func Analyze(countries []Country, spec *CriteriaSpec, baseline WeightVector, opts SensitivityOptions) (*SensitivityReport, error) {
	fractions, err := resolveFractions(opts.Fractions)
	if err != nil {
		return nil, err
	}
	thresholds := opts.Thresholds
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if err := baseline.Validate(spec); err != nil {
		return nil, err
	}

	n, err := Normalize(countries, spec)
	if err != nil {
		return nil, err
	}
	baseScores, err := Aggregate(n, baseline)
	if err != nil {
		return nil, err
	}
	baseRank := Rank(baseScores)
	baseOrder := baseRank.Order()

	var analysed []string
	for _, id := range n.Criteria {
		if _, ok := baseline[id]; ok {
			analysed = append(analysed, id)
		}
	}

	for _, id := range analysed {
		for _, f := range fractions {
			if w := baseline[id] * (1 + f); !isFinite(w) {
				return nil, &InvalidInputError{Field: "weights", Criterion: id, Reason: fmt.Sprintf("weight %v overflows at fraction %+v", baseline[id], f)}
			}
		}
	}

	trials := make([]Trial, len(analysed)*len(fractions))
	g := errgroup.Group{}
	g.SetLimit(parallelism(opts.Parallelism))
	for i, id := range analysed {
		for j, f := range fractions {
			idx := i*len(fractions) + j
			g.Go(func() error {
				t, err := runTrial(n, baseline, id, f, baseOrder, baseScores)
				if err != nil {
					return err
				}
				trials[idx] = t
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &SensitivityReport{
		Fractions:       fractions,
		Thresholds:      thresholds,
		BaselineWeights: baseline.Clone(),
		Baseline: Baseline{
			TopCountry: baseRank.Top(),
			Ranking:    baseOrder,
			Scores:     baseScores,
		},
		Criteria: make([]CriterionSensitivity, 0, len(analysed)),
	}
	for i, id := range analysed {
		ct := trials[i*len(fractions) : (i+1)*len(fractions)]
		report.Criteria = append(report.Criteria, CriterionSensitivity{
			Criterion:      id,
			BaselineWeight: baseline[id],
			Trials:         ct,
			Metrics:        summariseTrials(ct),
		})
	}
	report.Overall = summariseCriteria(report.Criteria, thresholds)
	report.Recommendations = recommend(report.Criteria, report.Overall, thresholds)
	return report, nil
}

func resolveFractions(fractions []float64) ([]float64, error) {
	if len(fractions) == 0 {
		return DefaultFractions(), nil
	}
	out := make([]float64, len(fractions))
	for i, f := range fractions {
		if !isFinite(f) || f <= -1 {
			return nil, invalidf("variation_fractions", "fraction %v must be finite and greater than -1", f)
		}
		out[i] = f
	}
	return out, nil
}

func parallelism(p int) int {
	if p > 0 {
		return p
	}
	return runtime.GOMAXPROCS(0)
}

func runTrial(n *NormalizedScores, baseline WeightVector, id string, f float64, baseOrder []string, baseScores map[string]float64) (Trial, error) {
	perturbed := baseline.With(id, baseline[id]*(1+f))
	scores, err := Aggregate(n, perturbed)
	if err != nil {
		return Trial{}, fmt.Errorf("trial %s%+.2f: %w", id, f, err)
	}
	ranking := Rank(scores).Order()

	t := Trial{
		Fraction:       f,
		Weight:         perturbed[id],
		TopCountry:     ranking[0],
		RankingChanges: positionChanges(baseOrder, ranking),
		Ranking:        ranking,
	}
	t.TopCountryChanged = t.TopCountry != baseOrder[0]

	var total float64
	for _, country := range baseOrder {
		d := math.Abs(scores[country] - baseScores[country])
		total += d
		if d > t.MaxScoreChange {
			t.MaxScoreChange = d
		}
	}
	t.AverageScoreChange = total / float64(len(baseOrder))
	return t, nil
}

// positionChanges counts positions whose occupant differs from the baseline.
func positionChanges(baseline, modified []string) int {
	var changes int
	for i := range baseline {
		if i >= len(modified) || baseline[i] != modified[i] {
			changes++
		}
	}
	return changes
}

func summariseTrials(trials []Trial) CriterionMetrics {
	var m CriterionMetrics
	var changed, rankChanges int
	var scoreChange float64
	for _, t := range trials {
		if t.TopCountryChanged {
			changed++
		}
		rankChanges += t.RankingChanges
		if t.RankingChanges > m.MaxRankingChanges {
			m.MaxRankingChanges = t.RankingChanges
		}
		scoreChange += t.AverageScoreChange
	}
	count := float64(len(trials))
	m.TopCountryChangeFrequency = float64(changed) / count
	m.StabilityScore = 100 * float64(len(trials)-changed) / count
	m.AverageRankingChanges = float64(rankChanges) / count
	m.AverageScoreChange = scoreChange / count
	return m
}

func summariseCriteria(criteria []CriterionSensitivity, t Thresholds) OverallSensitivity {
	var o OverallSensitivity
	if len(criteria) == 0 {
		o.OverallStabilityScore = 100
		return o
	}

	minStability, maxStability := math.Inf(1), math.Inf(-1)
	var stability, rankChanges float64
	for _, c := range criteria {
		s := c.Metrics.StabilityScore
		stability += s
		rankChanges += c.Metrics.AverageRankingChanges
		if s < minStability {
			minStability = s
			o.MostSensitiveCriterion = c.Criterion
		}
		if s > maxStability {
			maxStability = s
			o.LeastSensitiveCriterion = c.Criterion
		}
		switch {
		case s < t.Moderate:
			o.Distribution.High++
		case s < t.High:
			o.Distribution.Medium++
		default:
			o.Distribution.Low++
		}
	}
	o.OverallStabilityScore = stability / float64(len(criteria))
	o.AverageRankingChanges = rankChanges / float64(len(criteria))
	return o
}
