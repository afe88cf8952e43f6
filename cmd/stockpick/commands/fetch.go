package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouql/stockpick/internal/market"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [symbol...]",
	Short: "Warm the cache without running a selection",
	Long: `Fetches and caches data ahead of a selection run. Without
arguments it refreshes the universe and trade calendar; with symbols
it also pulls their klines and financials.

Example:
  go run ./cmd/stockpick fetch
  go run ./cmd/stockpick fetch 600000.SH 000001.SZ
  go run ./cmd/stockpick fetch sh600000 --force`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	coord, err := app.coordinator(forceRefresh)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	now := time.Now()
	calView, err := coord.EnsureCalendar(ctx, now)
	if err != nil {
		return err
	}
	analysisDate := market.AnalysisDate(now, calView)
	fmt.Printf("Analysis date: %s\n", analysisDate.Format("2006-01-02"))

	universe, err := coord.EnsureStockList(ctx, analysisDate)
	if err != nil {
		return err
	}
	fmt.Printf("Universe: %d listed stocks\n", len(universe))

	for i, raw := range args {
		symbol, err := market.NormalizeSymbol(raw)
		if err != nil {
			return fmt.Errorf("symbol %q: %w", raw, err)
		}

		series, err := coord.EnsureKlines(ctx, symbol, analysisDate)
		if err != nil {
			app.log.WithError(err).WithField("symbol", symbol).Warn("Kline fetch failed")
			continue
		}
		if _, err := coord.EnsureFinancial(ctx, symbol); err != nil {
			app.log.WithError(err).WithField("symbol", symbol).Warn("Financials fetch failed")
		}
		fmt.Printf("[%d/%d] %s: %d bars cached\n", i+1, len(args), symbol, len(series))
	}

	return nil
}
