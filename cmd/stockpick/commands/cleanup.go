package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouql/stockpick/internal/cache"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Reclaim space from long-stale cache rows",
	Long: `Deletes rows whose update time is past their type's staleness
window. Stale rows are kept day to day as the vendor-outage fallback,
so this is a manual or weekly maintenance step, not part of a run.

Example:
  go run ./cmd/stockpick cleanup
  go run ./cmd/stockpick cleanup --type kline`,
	RunE: runCleanup,
}

var cleanupType string

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().StringVar(&cleanupType, "type", "", "invalidate one data type entirely instead")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	ctx := context.Background()

	if cleanupType != "" {
		dt := cache.DataType(cleanupType)
		if err := app.store.Invalidate(ctx, dt, ""); err != nil {
			return err
		}
		fmt.Printf("Invalidated all %s rows\n", cleanupType)
		return nil
	}

	removed, err := app.store.Cleanup(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d expired rows\n", removed)
	return nil
}
