package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

var (
	dataPath    string
	weightsPath string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the countries in a dataset",
	Long: `Rank normalizes every criterion against the values observed in the
dataset, combines them with the given weights and prints the ordering.

Example:
  compass rank --data countries.yaml
  compass rank --data countries.csv --verbose
  compass rank --data countries.yaml --weights weights.yaml --format json`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
	addDatasetFlags(rankCmd)
}

func addDatasetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "country dataset (.yaml or .csv)")
	cmd.Flags().StringVarP(&weightsPath, "weights", "w", "", "weights YAML (default: equal weights)")
	_ = cmd.MarkFlagRequired("data")
}

func runRank(cmd *cobra.Command, args []string) error {
	out, err := outputFormat()
	if err != nil {
		return err
	}
	spec := scoring.DefaultCriteria()
	countries, weights, err := loadInputs(spec)
	if err != nil {
		return err
	}

	result, err := scoring.Evaluate(countries, spec, weights)
	if err != nil {
		return err
	}
	if viper.GetBool("verbose") {
		fmt.Fprintf(cmd.ErrOrStderr(), "Ranked %d countries over %d criteria\n", len(result), spec.Len())
	}
	return writeRanking(cmd.OutOrStdout(), out, result)
}

func loadInputs(spec *scoring.CriteriaSpec) ([]scoring.Country, scoring.WeightVector, error) {
	countries, err := LoadDataset(dataPath, spec)
	if err != nil {
		return nil, nil, err
	}
	weights, err := LoadWeights(weightsPath, spec)
	if err != nil {
		return nil, nil, err
	}
	return countries, weights, nil
}
