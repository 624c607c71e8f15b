package cli

import (
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Compass/internal/scoring"
)

var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "List the evaluation criteria and their polarity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := outputFormat()
		if err != nil {
			return err
		}
		return writeCriteria(cmd.OutOrStdout(), out, scoring.DefaultCriteria())
	},
}

func init() {
	rootCmd.AddCommand(criteriaCmd)
}
