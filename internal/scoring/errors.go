package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports misuse of the criteria table, such as
// registering the same criterion twice.
type ConfigurationError struct {
	Criterion string `json:"criterion,omitempty"`
	Reason    string `json:"reason"`
}

func (e *ConfigurationError) Error() string {
	if e.Criterion == "" {
		return "criteria configuration: " + e.Reason
	}
	return fmt.Sprintf("criteria configuration: criterion %q: %s", e.Criterion, e.Reason)
}

// InvalidInputError reports malformed per-request input. Country, Criterion
// and Field identify what was rejected; any of them may be empty.
type InvalidInputError struct {
	Country   string `json:"country,omitempty"`
	Criterion string `json:"criterion,omitempty"`
	Field     string `json:"field,omitempty"`
	Reason    string `json:"reason"`
}

func (e *InvalidInputError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, "field "+e.Field)
	}
	if e.Country != "" {
		parts = append(parts, fmt.Sprintf("country %q", e.Country))
	}
	if e.Criterion != "" {
		parts = append(parts, fmt.Sprintf("criterion %q", e.Criterion))
	}
	if len(parts) == 0 {
		return "invalid input: " + e.Reason
	}
	return "invalid input: " + strings.Join(parts, ", ") + ": " + e.Reason
}

// IsInvalidInput reports whether err wraps an *InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// IsConfiguration reports whether err wraps a *ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func invalidf(field, format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
