package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

const testDataset = `countries:
  - name: Canada
    values:
      cost_of_living: 6.8
      university_ranking: 8.5
      language_barrier: 1.5
      visa_difficulty: 4.5
      job_prospects: 8.0
      climate_score: 5.0
      safety_index: 8.8
  - name: Germany
    values:
      cost_of_living: 5.5
      university_ranking: 8.0
      language_barrier: 6.5
      visa_difficulty: 4.0
      job_prospects: 8.2
      climate_score: 6.0
      safety_index: 8.2
  - name: Japan
    values:
      cost_of_living: 6.5
      university_ranking: 7.8
      language_barrier: 8.5
      visa_difficulty: 5.5
      job_prospects: 6.5
      climate_score: 7.0
      safety_index: 9.5
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithStderr(t, args...)
	return out, err
}

func runWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	dataPath, weightsPath, fractions, parallelism = "", "", "", 0
	verbose = false
	rootCmd.PersistentFlags().Lookup("verbose").Changed = false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestLoadDataset(t *testing.T) {
	spec := scoring.DefaultCriteria()

	countries, err := LoadDataset(writeFile(t, "countries.yaml", testDataset), spec)
	require.NoError(t, err)
	require.Len(t, countries, 3)
	assert.Equal(t, "Canada", countries[0].Name)
	assert.Equal(t, 9.5, countries[2].Values[scoring.SafetyIndex])

	bad := strings.Replace(testDataset, "safety_index: 9.5", "safety_index: 12", 1)
	_, err = LoadDataset(writeFile(t, "bad.yaml", bad), spec)
	var inv *scoring.InvalidInputError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "Japan", inv.Country)
	assert.Equal(t, scoring.SafetyIndex, inv.Criterion)

	_, err = LoadDataset(writeFile(t, "empty.yaml", "countries: []\n"), spec)
	assert.Error(t, err)

	_, err = LoadDataset(filepath.Join(t.TempDir(), "missing.yaml"), spec)
	assert.Error(t, err)
}

func TestLoadDatasetCSV(t *testing.T) {
	spec := scoring.DefaultCriteria()
	csv := "name,cost_of_living,university_ranking,language_barrier,visa_difficulty,job_prospects,climate_score,safety_index\n" +
		"Canada,6.8,8.5,1.5,4.5,8,5,8.8\n" +
		"Japan,6.5,7.8,8.5,5.5,6.5,7,9.5\n"

	countries, err := LoadDataset(writeFile(t, "countries.CSV", csv), spec)
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Equal(t, "Japan", countries[1].Name)

	bad := strings.Replace(csv, "9.5", "12", 1)
	_, err = LoadDataset(writeFile(t, "bad.csv", bad), spec)
	var inv *scoring.InvalidInputError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "Japan", inv.Country)

	_, err = LoadDataset(writeFile(t, "header.csv", strings.SplitAfter(csv, "\n")[0]), spec)
	assert.ErrorContains(t, err, "no countries")
}

func TestLoadWeights(t *testing.T) {
	spec := scoring.DefaultCriteria()

	w, err := LoadWeights("", spec)
	require.NoError(t, err)
	assert.Equal(t, scoring.EqualWeights(spec), w)

	w, err = LoadWeights(writeFile(t, "w.yaml", "safety_index: 5\ncost_of_living: 1\n"), spec)
	require.NoError(t, err)
	assert.Equal(t, 5.0, w[scoring.SafetyIndex])

	_, err = LoadWeights(writeFile(t, "unknown.yaml", "tuition: 1\n"), spec)
	assert.True(t, scoring.IsInvalidInput(err))

	_, err = LoadWeights(writeFile(t, "neg.yaml", "safety_index: -1\n"), spec)
	assert.True(t, scoring.IsInvalidInput(err))
}

func TestRankCommandJSON(t *testing.T) {
	data := writeFile(t, "countries.yaml", testDataset)

	out, err := run(t, "rank", "--data", data, "--format", "json")
	require.NoError(t, err)

	var result scoring.RankedResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{"Germany", "Canada", "Japan"}, result.Order())
	assert.Equal(t, 100.0, result[0].Percentage)
}

func TestRankCommandWithWeights(t *testing.T) {
	data := writeFile(t, "countries.yaml", testDataset)
	weights := writeFile(t, "weights.yaml", "safety_index: 5\ncost_of_living: 1\n")

	out, err := run(t, "rank", "--data", data, "--weights", weights, "--format", "json")
	require.NoError(t, err)

	var result scoring.RankedResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Japan", result.Top())
}

func TestRankCommandTable(t *testing.T) {
	data := writeFile(t, "countries.yaml", testDataset)

	out, err := run(t, "rank", "--data", data, "--format", "table")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "RANK")
	assert.Contains(t, lines[1], "Germany")
	assert.Contains(t, lines[1], "100.0%")
}

func TestVerboseOutput(t *testing.T) {
	data := writeFile(t, "countries.yaml", testDataset)

	_, stderr, err := runWithStderr(t, "rank", "--data", data, "--format", "json")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	t.Setenv("COMPASS_VERBOSE", "true")
	out, stderr, err := runWithStderr(t, "rank", "--data", data, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Ranked 3 countries over 7 criteria")
	assert.NotContains(t, out, "Ranked")

	_, stderr, err = runWithStderr(t, "sensitivity", "--data", data, "--fractions", "-0.5,0.5", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Ran 2 trials per criterion")

	t.Setenv("COMPASS_VERBOSE", "false")
	_, stderr, err = runWithStderr(t, "rank", "--data", data, "--format", "json", "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Ranked 3 countries")
}

func TestRankCommandRequiresData(t *testing.T) {
	_, err := run(t, "rank", "--format", "json")
	assert.Error(t, err)
}

func TestUnknownFormat(t *testing.T) {
	data := writeFile(t, "countries.yaml", testDataset)
	_, err := run(t, "rank", "--data", data, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestSensitivityCommand(t *testing.T) {
	data := writeFile(t, "countries.yaml", testDataset)

	out, err := run(t, "sensitivity", "--data", data, "--fractions", "-0.5, 0, 0.5", "--format", "json")
	require.NoError(t, err)

	var report scoring.SensitivityReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []float64{-0.5, 0, 0.5}, report.Fractions)
	assert.Len(t, report.Criteria, 7)
	assert.Equal(t, "Germany", report.Baseline.TopCountry)

	out, err = run(t, "sensitivity", "--data", data, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Baseline top: Germany")
	assert.Contains(t, out, "CRITERION")

	_, err = run(t, "sensitivity", "--data", data, "--fractions", "-1", "--format", "json")
	assert.True(t, scoring.IsInvalidInput(err))

	_, err = run(t, "sensitivity", "--data", data, "--fractions", "a,b", "--format", "json")
	assert.Error(t, err)
}

func TestCriteriaCommand(t *testing.T) {
	out, err := run(t, "criteria", "--format", "table")
	require.NoError(t, err)
	for _, id := range scoring.DefaultCriteria().IDs() {
		assert.Contains(t, out, id)
	}

	out, err = run(t, "criteria", "--format", "json")
	require.NoError(t, err)
	var criteria []scoring.Criterion
	require.NoError(t, json.Unmarshal([]byte(out), &criteria))
	assert.Len(t, criteria, 7)
	assert.Equal(t, scoring.PolarityCost, criteria[0].Polarity)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "compass dev\n", out)
}
