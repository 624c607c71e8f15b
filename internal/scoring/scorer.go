package scoring

// Engine bundles a criteria table with sensitivity defaults so request
// handlers can evaluate without threading every option through. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	spec        *CriteriaSpec
	fractions   []float64
	thresholds  Thresholds
	parallelism int
}

// NewEngine creates an Engine. Nil fractions and zero thresholds select the
// package defaults.
func NewEngine(spec *CriteriaSpec, fractions []float64, thresholds Thresholds, parallelism int) (*Engine, error) {
	resolved, err := resolveFractions(fractions)
	if err != nil {
		return nil, err
	}
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		spec:        spec,
		fractions:   resolved,
		thresholds:  thresholds,
		parallelism: parallelism,
	}, nil
}

// Spec returns the engine's criteria table.
func (e *Engine) Spec() *CriteriaSpec { return e.spec }

// Fractions returns a copy of the default variation sweep.
func (e *Engine) Fractions() []float64 {
	out := make([]float64, len(e.fractions))
	copy(out, e.fractions)
	return out
}

// Rank evaluates countries under weights.
func (e *Engine) Rank(countries []Country, weights WeightVector) (RankedResult, error) {
	if err := weights.Validate(e.spec); err != nil {
		return nil, err
	}
	return Evaluate(countries, e.spec, weights)
}

// Sensitivity runs Analyze. A nil fractions slice uses the engine defaults.
func (e *Engine) Sensitivity(countries []Country, weights WeightVector, fractions []float64) (*SensitivityReport, error) {
	if len(fractions) == 0 {
		fractions = e.fractions
	}
	return Analyze(countries, e.spec, weights, SensitivityOptions{
		Fractions:   fractions,
		Thresholds:  e.thresholds,
		Parallelism: e.parallelism,
	})
}

// Compare runs Compare against the engine's criteria.
func (e *Engine) Compare(countries []Country, names, criteria []string) (*Comparison, error) {
	return Compare(countries, e.spec, names, criteria)
}

// Method describes the decision method.
func (e *Engine) Method() MethodInfo { return DescribeMethod(e.spec) }
