package selection

import (
	"time"

	"github.com/zhouql/stockpick/internal/cache"
	"github.com/zhouql/stockpick/internal/market"
	"github.com/zhouql/stockpick/internal/strategy"
)

// filterUniverse applies the strategy's universe filters and counts
// what each filter removed, for the run summary.
func filterUniverse(universe []cache.StockInfo, filter strategy.UniverseFilter, members map[string]bool, analysisDate time.Time) ([]cache.StockInfo, map[string]int) {
	allowedMarkets := make(map[string]bool, len(filter.Markets))
	for _, m := range filter.Markets {
		allowedMarkets[m] = true
	}

	passed := make([]cache.StockInfo, 0, len(universe))
	filtered := make(map[string]int)

	for _, si := range universe {
		switch {
		case filter.ExcludeST && market.IsSTName(si.Name):
			filtered["st"]++
		case filter.ExcludeSuspended && si.Suspended:
			filtered["suspended"]++
		case len(allowedMarkets) > 0 && !allowedMarkets[si.Market]:
			filtered["market"]++
		case filter.MinListDays > 0 && tooRecentlyListed(si.ListDate, filter.MinListDays, analysisDate):
			filtered["recently_listed"]++
		case members != nil && !members[si.Symbol]:
			filtered["not_in_index"]++
		default:
			passed = append(passed, si)
		}
	}
	return passed, filtered
}

// tooRecentlyListed is true when the stock listed less than minDays
// before the analysis date. An unknown list date passes; incomplete
// vendor data should not shrink the universe.
func tooRecentlyListed(listDate string, minDays int, analysisDate time.Time) bool {
	if listDate == "" {
		return false
	}
	listed, err := time.Parse("2006-01-02", listDate)
	if err != nil {
		return false
	}
	return analysisDate.Sub(listed) < time.Duration(minDays)*24*time.Hour
}
