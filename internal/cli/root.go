package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
	format  string
)

var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Compass - multi-criteria ranking of study-abroad destinations",
	Long: `Compass ranks candidate countries with Simple Additive Weighting over
min-max normalized criteria, and measures how stable that ranking is when
individual weights move.

The offline commands read a country dataset from YAML or CSV and need no server.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "compass %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.compass/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", formatTable, "output format (table, json)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the optional config file and COMPASS_* environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.compass")
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("COMPASS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// outputFormat resolves --format after flag, env and file precedence.
func outputFormat() (string, error) {
	f := viper.GetString("format")
	switch f {
	case formatTable, formatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s or %s)", f, formatTable, formatJSON)
	}
}
