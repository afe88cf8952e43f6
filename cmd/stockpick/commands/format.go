package commands

import (
	"fmt"
	"sort"

	"github.com/zhouql/stockpick/internal/review"
	"github.com/zhouql/stockpick/internal/selection"
)

const rule = "───────────────────────────────────────────────────────────"

// printSummary renders a selection run for the terminal.
func printSummary(summary *selection.Summary) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Stock picks for %s\n", summary.AnalysisDate.Format("2006-01-02"))
	fmt.Println(rule)
	fmt.Printf("  Universe  : %d listed, %d candidates\n", summary.Universe, summary.Candidates)
	if len(summary.Filtered) > 0 {
		names := make([]string, 0, len(summary.Filtered))
		for name := range summary.Filtered {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  Filtered  : %-16s %d\n", name, summary.Filtered[name])
		}
	}
	fmt.Printf("  Scored    : %d (%d dropped)\n", summary.Scored, summary.Dropped)
	fmt.Printf("  Weights   : fundamental %.2f / volume %.2f / price %.2f\n",
		summary.Weights.Fundamental, summary.Weights.Volume, summary.Weights.Price)
	if summary.Partial {
		fmt.Println("  NOTE      : run was interrupted, ranking is partial")
	}
	fmt.Println(rule)

	for _, p := range summary.Picks {
		fmt.Printf("  %2d. %-10s %-8s  total %6.2f  (F %5.1f / V %5.1f / P %5.1f)\n",
			p.Rank, p.Symbol, p.Name, p.TotalScore,
			p.FundamentalScore, p.VolumeScore, p.PriceScore)
	}
	fmt.Println(rule)
	fmt.Printf("  Completed in %.2fs\n", summary.Elapsed.Seconds())
	fmt.Println()
}

// printReview renders a performance review.
func printReview(report *review.Report) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Review of %s picks\n", report.RunDate.Format("2006-01-02"))
	fmt.Println(rule)

	for _, p := range report.Picks {
		if p.ReturnPct != nil {
			fmt.Printf("  %2d. %-10s %-8s  score %6.2f  %+.2f%%  (%.2f -> %.2f)\n",
				p.Rank, p.Symbol, p.Name, p.TotalScore, *p.ReturnPct, p.EntryClose, p.LastClose)
		} else {
			fmt.Printf("  %2d. %-10s %-8s  score %6.2f  no bars yet\n",
				p.Rank, p.Symbol, p.Name, p.TotalScore)
		}
	}

	fmt.Println(rule)
	if report.AvgReturn != nil {
		fmt.Printf("  Average %+.2f%%  (%d winners, %d losers)\n",
			*report.AvgReturn, report.Winners, report.Losers)
	} else {
		fmt.Println("  No measurable returns yet")
	}
	fmt.Println()
}
