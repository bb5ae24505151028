package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	backendURL string
	policy     string
	verbose    bool
	asJSON     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Deal funnel dashboard",
	Long: `Deal funnel dashboard CLI

Reads per-stage deal statistics from the stats backend and shows the
25-stage funnel for a date, the deals behind a stage, and the dates
that have data. "serve" runs the HTML dashboard with live refresh.

Usage:
  go run ./cmd/funnel [command]

Examples:
  go run ./cmd/funnel stats --date 2024-01-15
  go run ./cmd/funnel deals "Все готово" --date 2024-01-15
  go run ./cmd/funnel deals 7
  go run ./cmd/funnel dates
  go run ./cmd/funnel calendar
  go run ./cmd/funnel serve --port 8090`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file to load (default is .env)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "stats backend base URL (overrides BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&policy, "policy", "", "total policy: all_deals|sum (overrides FUNNEL_TOTAL_POLICY)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
}
