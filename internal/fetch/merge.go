package fetch

import (
	"sort"

	"github.com/zhouql/stockpick/internal/cache"
)

// MergeKlines combines a cached series with freshly fetched bars.
// Duplicated dates take the fetched value, since the vendor may have
// restated a bar after a late correction. The result is ascending by
// date with no duplicates.
func MergeKlines(cached, fetched []cache.Kline) []cache.Kline {
	byDate := make(map[string]cache.Kline, len(cached)+len(fetched))
	for _, k := range cached {
		byDate[k.Date.Format("2006-01-02")] = k
	}
	for _, k := range fetched {
		byDate[k.Date.Format("2006-01-02")] = k
	}

	merged := make([]cache.Kline, 0, len(byDate))
	for _, k := range byDate {
		merged = append(merged, k)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged
}
