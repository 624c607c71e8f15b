package scoring

// MethodInfo describes the decision method for display.
type MethodInfo struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Advantages  []string            `json:"advantages"`
	Limitations []string            `json:"limitations"`
	Criteria    map[string]Polarity `json:"criteria_types"`
}

// DescribeMethod returns the SAW method summary for spec.
func DescribeMethod(spec *CriteriaSpec) MethodInfo {
	info := MethodInfo{
		Name: "Simple Additive Weighting (SAW)",
		Description: "A multi-criteria decision analysis method that calculates a weighted sum " +
			"of min-max normalized criteria values",
		Advantages: []string{
			"Simple and intuitive to understand",
			"Computationally efficient",
			"Allows easy sensitivity analysis",
			"Transparent decision process",
		},
		Limitations: []string{
			"Assumes linear relationships between criteria",
			"May not handle extreme values well",
			"Sensitive to normalization method choice",
		},
		Criteria: make(map[string]Polarity, spec.Len()),
	}
	for _, c := range spec.criteria {
		info.Criteria[c.ID] = c.Polarity
	}
	return info
}
