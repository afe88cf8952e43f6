package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review [date]",
	Short: "Review how past picks performed",
	Long: `Measures the return of a stored recommendation snapshot from its
run date to the latest cached close. Without a date the newest
snapshot is reviewed.

Example:
  go run ./cmd/stockpick review
  go run ./cmd/stockpick review 2025-06-12`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	reviewer := app.reviewer()
	ctx := context.Background()

	if len(args) == 1 {
		runDate, err := time.Parse("2006-01-02", args[0])
		if err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
		report, err := reviewer.Review(ctx, runDate)
		if err != nil {
			return err
		}
		printReview(report)
		return nil
	}

	report, err := reviewer.ReviewLatest(ctx)
	if err != nil {
		return err
	}
	printReview(report)
	return nil
}
