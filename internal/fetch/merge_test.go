package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouql/stockpick/internal/cache"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func bar(d int, close float64) cache.Kline {
	return cache.Kline{Symbol: "600000.SH", Period: cache.PeriodDaily, Date: day(d), Close: close}
}

func TestMergeKlinesOverlapNewWins(t *testing.T) {
	cached := []cache.Kline{bar(1, 10), bar(2, 11), bar(3, 12), bar(4, 13), bar(5, 14)}
	fetched := []cache.Kline{bar(4, 13.5), bar(5, 14.5), bar(6, 15), bar(7, 16), bar(8, 17)}

	merged := MergeKlines(cached, fetched)
	require.Len(t, merged, 8)

	for i, m := range merged {
		assert.Equal(t, day(i+1), m.Date)
	}
	// Overlapping days carry the fetched values.
	assert.Equal(t, 13.5, merged[3].Close)
	assert.Equal(t, 14.5, merged[4].Close)
	// Non-overlapping cached values survive.
	assert.Equal(t, 10.0, merged[0].Close)
}

func TestMergeKlinesEmptySides(t *testing.T) {
	fetched := []cache.Kline{bar(2, 11), bar(1, 10)}

	merged := MergeKlines(nil, fetched)
	require.Len(t, merged, 2)
	assert.Equal(t, day(1), merged[0].Date, "output is sorted even when input is not")

	merged = MergeKlines(fetched, nil)
	require.Len(t, merged, 2)

	assert.Empty(t, MergeKlines(nil, nil))
}
