package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouql/stockpick/internal/cache"
	"github.com/zhouql/stockpick/internal/selection"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache contents and database health",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	ctx := context.Background()

	health, err := app.db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("database health check: %w", err)
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Cache database: %s\n", app.db.Path())
	fmt.Println(rule)
	for _, dt := range cache.AllTypes {
		n, err := app.store.CountRows(ctx, dt)
		if err != nil {
			return err
		}
		fmt.Printf("  %-16s %8d rows  (stale after %s)\n", string(dt), n, cache.StalenessWindow(dt))
	}
	fmt.Println(rule)
	fmt.Printf("  Pool: %d open, %d in use, %d idle\n",
		health.Stats.OpenConns, health.Stats.InUse, health.Stats.Idle)

	repo := selection.NewRepository(app.store)
	runDate, recs, err := repo.Latest(ctx)
	if err != nil {
		return err
	}
	if runDate.IsZero() {
		fmt.Println("  No recommendation snapshots stored")
	} else {
		fmt.Printf("  Latest snapshot: %s (%d picks)\n", runDate.Format("2006-01-02"), len(recs))
	}
	fmt.Println()
	return nil
}
