package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	forceRefresh bool
	verbose      bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "stockpick",
	Short: "A-share stock screener with a local data cache",
	Long: `stockpick - A-share multi-factor stock screener

Scores the listed universe on fundamentals, volume activity and price
action, and prints the top picks. All vendor data is cached locally;
repeat runs only fetch what went stale.

Usage:
  go run ./cmd/stockpick [command]

Examples:
  go run ./cmd/stockpick select
  go run ./cmd/stockpick select --top 5 --force
  go run ./cmd/stockpick review
  go run ./cmd/stockpick serve`,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy file (default from STRATEGY_FILE)")
	rootCmd.PersistentFlags().BoolVar(&forceRefresh, "force", false, "ignore cache freshness and refetch everything")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
