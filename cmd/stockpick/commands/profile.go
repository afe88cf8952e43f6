package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouql/stockpick/internal/external/tushare"
	"github.com/zhouql/stockpick/internal/market"
	"github.com/zhouql/stockpick/pkg/redis"
)

var profileCmd = &cobra.Command{
	Use:   "profile [symbol]",
	Short: "Show a company's scraped profile",
	Long: `Scrapes the public quote page for a company's industry, main
business and other profile fields. Purely informational, nothing is
cached.

Example:
  go run ./cmd/stockpick profile 600000.SH`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	symbol, err := market.NormalizeSymbol(args[0])
	if err != nil {
		return err
	}

	var limiter *redis.RateLimiter
	if app.rdb != nil && app.rdb.Enabled() {
		limiter = redis.NewRateLimiter(app.rdb, "stockpick")
	}
	client := tushare.New(app.cfg, app.log, limiter)

	profile, err := client.FetchProfile(context.Background(), symbol)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Symbol    : %s\n", profile.Symbol)
	if profile.Industry != "" {
		fmt.Printf("  Industry  : %s\n", profile.Industry)
	}
	if profile.MainBiz != "" {
		fmt.Printf("  Business  : %s\n", profile.MainBiz)
	}
	if profile.RegionCN != "" {
		fmt.Printf("  Region    : %s\n", profile.RegionCN)
	}
	if profile.WebSite != "" {
		fmt.Printf("  Website   : %s\n", profile.WebSite)
	}
	if profile.Employees != "" {
		fmt.Printf("  Employees : %s\n", profile.Employees)
	}
	fmt.Println()
	return nil
}
