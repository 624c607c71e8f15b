package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Compass/internal/dataset"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

// Dataset is the on-disk country catalogue:
//
//	countries:
//	  - name: Canada
//	    values: {cost_of_living: 6.8, ...}
type Dataset struct {
	Countries []scoring.Country `yaml:"countries"`
}

// LoadDataset reads and validates a country dataset against spec. Files
// ending in .csv are read with dataset.ReadCSV; anything else is YAML.
func LoadDataset(path string, spec *scoring.CriteriaSpec) ([]scoring.Country, error) {
	var countries []scoring.Country
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		defer f.Close() //nolint:errcheck
		countries, err = dataset.ReadCSV(f, spec)
		if err != nil {
			return nil, fmt.Errorf("parse dataset %s: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		var ds Dataset
		if err := yaml.Unmarshal(data, &ds); err != nil {
			return nil, fmt.Errorf("parse dataset %s: %w", path, err)
		}
		for _, c := range ds.Countries {
			if err := spec.ValidateRecord(c); err != nil {
				return nil, err
			}
		}
		countries = ds.Countries
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("dataset %s has no countries", path)
	}
	return countries, nil
}

// LoadWeights reads a criterion-to-weight map. An empty path gives equal
// weights.
func LoadWeights(path string, spec *scoring.CriteriaSpec) (scoring.WeightVector, error) {
	if path == "" {
		return scoring.EqualWeights(spec), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	var w scoring.WeightVector
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse weights %s: %w", path, err)
	}
	for id := range w {
		if _, ok := spec.Lookup(id); !ok {
			return nil, &scoring.InvalidInputError{Field: "weights", Criterion: id, Reason: "unknown criterion"}
		}
	}
	if err := w.Validate(spec); err != nil {
		return nil, err
	}
	return w, nil
}
