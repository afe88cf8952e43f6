package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Run a selection and print the top picks",
	Long: `Runs the full pipeline for the current analysis date:

- refresh the listed universe and trade calendar as needed
- apply the strategy's universe filters
- fetch missing or stale data per symbol
- score and rank, print the top N, store the snapshot

Example:
  go run ./cmd/stockpick select
  go run ./cmd/stockpick select --top 5
  go run ./cmd/stockpick select --force --strategy config/strategy.yaml`,
	RunE: runSelect,
}

var topN int

func init() {
	rootCmd.AddCommand(selectCmd)
	selectCmd.Flags().IntVar(&topN, "top", 0, "override the strategy's top N")
}

func runSelect(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	sel, _, _, err := app.selector(forceRefresh)
	if err != nil {
		return err
	}

	// Ctrl+C mid-fetch finishes with a partial ranking.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := sel.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(summary)
	app.notifier().SelectionDone(context.Background(), summary)
	return nil
}
