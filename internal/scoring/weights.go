package scoring

import (
	"maps"
	"slices"
)

// Country is one candidate destination: a name and one raw value per
// criterion ID.
type Country struct {
	Name   string             `json:"name" yaml:"name"`
	Values map[string]float64 `json:"values" yaml:"values"`
}

// WeightVector maps criterion IDs to non-negative importance weights.
// Weights need not sum to any fixed total.
type WeightVector map[string]float64

// EqualWeights returns a vector with weight 1 for every criterion in spec.
func EqualWeights(spec *CriteriaSpec) WeightVector {
	w := make(WeightVector, spec.Len())
	for _, id := range spec.IDs() {
		w[id] = 1
	}
	return w
}

// Sum returns the total of all weights.
func (w WeightVector) Sum() float64 {
	var sum float64
	for _, id := range slices.Sorted(maps.Keys(w)) {
		sum += w[id]
	}
	return sum
}

// Validate checks that every weight is finite and non-negative, that at
// least one weight names a criterion in spec, and that the weights on known
// criteria do not all equal zero.
func (w WeightVector) Validate(spec *CriteriaSpec) error {
	if len(w) == 0 {
		return invalidf("weights", "weight vector is empty")
	}
	_, _, err := effectiveWeights(spec.IDs(), w)
	return err
}

// Clone returns an independent copy.
func (w WeightVector) Clone() WeightVector {
	return maps.Clone(w)
}

// With returns a copy with the weight for id replaced.
func (w WeightVector) With(id string, weight float64) WeightVector {
	out := w.Clone()
	if out == nil {
		out = WeightVector{}
	}
	out[id] = weight
	return out
}

// Scale returns a copy with every weight multiplied by k.
func (w WeightVector) Scale(k float64) WeightVector {
	out := make(WeightVector, len(w))
	for id, v := range w {
		out[id] = v * k
	}
	return out
}
