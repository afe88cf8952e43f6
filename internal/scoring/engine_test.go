package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouql/stockpick/internal/cache"
)

func fp(v float64) *float64 { return &v }

// flatSeries builds n daily bars at a constant close so price metrics
// land on known bands (trend 55, momentum 45, volatility 85).
func flatSeries(n int, close float64) []cache.Kline {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]cache.Kline, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, cache.Kline{
			Symbol: "600000.SH",
			Period: cache.PeriodDaily,
			Date:   base.AddDate(0, 0, i),
			Close:  close,
			Volume: 1000,
			Amount: 3e8,
		})
	}
	return bars
}

func TestFundamentalDimensionKnownCase(t *testing.T) {
	in := Input{
		Symbol: "600000.SH",
		Fundamental: &cache.Fundamental{
			Symbol:  "600000.SH",
			PERatio: fp(15),
			PBRatio: fp(1.2),
		},
		Financial: &cache.Financial{
			Symbol:        "600000.SH",
			ROE:           fp(18),
			RevenueGrowth: fp(25),
			ProfitGrowth:  fp(20),
		},
	}

	dim := scoreFundamental(in)
	assert.Equal(t, 100.0, dim.SubScores["pe"])
	assert.Equal(t, 80.0, dim.SubScores["pb"])
	assert.Equal(t, 85.0, dim.SubScores["roe"])
	assert.Equal(t, 70.0, dim.SubScores["rev_growth"])
	assert.Equal(t, 70.0, dim.SubScores["profit_growth"])
	assert.InDelta(t, 81.75, dim.Score, 1e-9)
	assert.Equal(t, 5, dim.Known)
}

func TestMissingMetricIsNeutralNotZero(t *testing.T) {
	// PE missing entirely versus PE present at zero: the unknown gets
	// the neutral 50, the known-bad zero gets less.
	missing := scorePE(nil)
	zero := scorePE(fp(0))

	assert.Equal(t, Neutral, missing)
	assert.Equal(t, 40.0, zero)
	assert.Less(t, zero, missing)
}

func TestFundamentalAllMissing(t *testing.T) {
	dim := scoreFundamental(Input{Symbol: "600000.SH"})
	assert.Equal(t, Neutral, dim.Score, "all-unknown dimension must sit exactly at neutral")
	assert.Zero(t, dim.Known)
}

func TestPriceDimensionShortHistoryIsNeutral(t *testing.T) {
	dim := scorePrice(Input{Klines: flatSeries(10, 10)})
	assert.Equal(t, Neutral, dim.Score)
	assert.Zero(t, dim.Known)
}

func TestPriceDimensionFlatSeries(t *testing.T) {
	dim := scorePrice(Input{Klines: flatSeries(30, 10)})
	assert.Equal(t, 55.0, dim.SubScores["trend"], "close equal to its average is the weak-hold band")
	assert.Equal(t, 45.0, dim.SubScores["momentum"])
	assert.Equal(t, 85.0, dim.SubScores["volatility"])
	assert.Equal(t, 3, dim.Known)
}

func TestScoreBatchTotalsAndBounds(t *testing.T) {
	inputs := []Input{
		{
			Symbol:      "600000.SH",
			Fundamental: &cache.Fundamental{PERatio: fp(15), PBRatio: fp(1.2), TurnoverRate: fp(5), VolumeRatio: fp(1.5)},
			Financial:   &cache.Financial{ROE: fp(18), RevenueGrowth: fp(25), ProfitGrowth: fp(20)},
			Klines:      flatSeries(30, 10),
		},
		{
			Symbol: "000001.SZ",
			Klines: flatSeries(30, 8),
		},
	}

	results, effective := ScoreBatch(inputs, DefaultWeights)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.GreaterOrEqual(t, r.Total, 0.0)
		assert.LessOrEqual(t, r.Total, 100.0)
	}
	assert.Greater(t, results[0].Total, results[1].Total,
		"strong fundamentals must outrank an all-neutral symbol")
	assert.InDelta(t, 1.0, effective.Fundamental+effective.Volume+effective.Price, 1e-9)
}

func TestScoreBatchSkipsSymbolsWithoutPriceHistory(t *testing.T) {
	inputs := []Input{
		{Symbol: "600000.SH", Klines: flatSeries(30, 10)},
		{Symbol: "000001.SZ"}, // no series at all
	}

	results, _ := ScoreBatch(inputs, DefaultWeights)
	require.Len(t, results, 1)
	assert.Equal(t, "600000.SH", results[0].Symbol)
}

func TestScoreBatchRenormalizesUncoveredDimension(t *testing.T) {
	// Nobody has fundamentals or financials: the fundamental weight
	// must flow to volume and price, preserving their proportion.
	inputs := []Input{
		{Symbol: "600000.SH", Klines: flatSeries(30, 10)},
		{Symbol: "000001.SZ", Klines: flatSeries(30, 8)},
	}

	_, effective := ScoreBatch(inputs, DefaultWeights)

	assert.Zero(t, effective.Fundamental)
	assert.InDelta(t, 1.0, effective.Volume+effective.Price, 1e-9)
	assert.InDelta(t, DefaultWeights.Volume/DefaultWeights.Price,
		effective.Volume/effective.Price, 1e-9,
		"surviving dimensions keep their relative proportion")
}

func TestScoreBatchDegradedBatchStillRanks(t *testing.T) {
	// Short price history, zero amounts and no fundamentals anywhere:
	// every metric degrades to neutral and the symbol still comes back
	// scored instead of the batch failing.
	bars := flatSeries(5, 10)
	for i := range bars {
		bars[i].Amount = 0
	}
	inputs := []Input{{Symbol: "600000.SH", Klines: bars}}

	results, effective := ScoreBatch(inputs, DefaultWeights)
	require.Len(t, results, 1)
	assert.InDelta(t, Neutral, results[0].Total, 1e-9)
	assert.Zero(t, effective.Fundamental)
	assert.InDelta(t, 1.0, effective.Volume+effective.Price, 1e-9)
}

func TestScoreBatchFundamentalOnlyWeightsKeepConfig(t *testing.T) {
	// Degenerate config: all weight on the one uncovered dimension.
	// The configured weights stand and everything scores neutral.
	inputs := []Input{{Symbol: "600000.SH", Klines: flatSeries(30, 10)}}

	results, effective := ScoreBatch(inputs, Weights{Fundamental: 1})
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, effective.Fundamental)
	assert.InDelta(t, Neutral, results[0].Total, 1e-9)
}

func TestScoreBatchEmptyInput(t *testing.T) {
	results, effective := ScoreBatch(nil, DefaultWeights)
	assert.Empty(t, results)
	assert.InDelta(t, 1.0, effective.sum(), 1e-9)
}

func TestWeightsNormalized(t *testing.T) {
	w := Weights{Fundamental: 2, Volume: 1, Price: 1}.normalized()
	assert.InDelta(t, 0.5, w.Fundamental, 1e-9)
	assert.InDelta(t, 0.25, w.Volume, 1e-9)
	assert.InDelta(t, 0.25, w.Price, 1e-9)
}

func TestVolumeBands(t *testing.T) {
	tests := []struct {
		name     string
		turnover *float64
		want     float64
	}{
		{"dead", fp(0.5), 40},
		{"quiet", fp(2), 70},
		{"active", fp(5), 90},
		{"hot", fp(15), 60},
		{"churning", fp(25), 30},
		{"unknown", nil, Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreTurnoverRate(tt.turnover))
		})
	}
}
