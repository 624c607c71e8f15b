package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MikeSquared-Agency/Compass/internal/config"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

var (
	fractions   string
	parallelism int
)

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Measure how stable the ranking is under weight changes",
	Long: `Sensitivity scales one weight at a time by each variation fraction,
re-ranks the dataset and reports how often the top country changes.

Example:
  compass sensitivity --data countries.yaml
  compass sensitivity --data countries.yaml --fractions -0.5,0,0.5`,
	Args: cobra.NoArgs,
	RunE: runSensitivity,
}

func init() {
	rootCmd.AddCommand(sensitivityCmd)
	addDatasetFlags(sensitivityCmd)
	sensitivityCmd.Flags().StringVar(&fractions, "fractions", "", "comma-separated weight variation fractions (default: -0.2,-0.1,0,0.1,0.2)")
	sensitivityCmd.Flags().IntVar(&parallelism, "parallelism", 0, "concurrent trials (0 = GOMAXPROCS)")
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	out, err := outputFormat()
	if err != nil {
		return err
	}
	spec := scoring.DefaultCriteria()
	countries, weights, err := loadInputs(spec)
	if err != nil {
		return err
	}

	var sweep []float64
	if fractions != "" {
		if sweep, err = config.ParseFloatList(fractions); err != nil {
			return fmt.Errorf("--fractions: %w", err)
		}
	}

	report, err := scoring.Analyze(countries, spec, weights, scoring.SensitivityOptions{
		Fractions:   sweep,
		Parallelism: parallelism,
	})
	if err != nil {
		return err
	}
	if viper.GetBool("verbose") {
		fmt.Fprintf(cmd.ErrOrStderr(), "Ran %d trials per criterion\n", len(report.Fractions))
	}
	return writeSensitivity(cmd.OutOrStdout(), out, report)
}
