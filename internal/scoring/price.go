package scoring

import (
	"math"

	"github.com/zhouql/stockpick/internal/cache"
)

// Price action over the last 20 trading days: trend versus the moving
// average, momentum, and realized volatility.
const priceWindow = 20

var priceSubWeights = map[string]float64{
	"trend":      0.40,
	"momentum":   0.35,
	"volatility": 0.25,
}

func scoreTrend(close, ma float64) float64 {
	switch {
	case close > ma*1.05:
		return 90
	case close > ma:
		return 75
	case close > ma*0.95:
		return 55
	default:
		return 35
	}
}

// Momentum in percent over the window. The best band is a steady
// climb; a stock already up 40% in a month is being chased.
func scoreMomentum(pct float64) float64 {
	switch {
	case pct >= 5 && pct <= 20:
		return 85
	case pct > 0 && pct < 5:
		return 70
	case pct > 20 && pct <= 40:
		return 55
	case pct > -10 && pct <= 0:
		return 45
	case pct > 40:
		return 40
	default:
		return 30
	}
}

// Volatility as the stddev of daily returns, in percent.
var volatilityBands = []band{{1.5, 85}, {2.5, 70}, {4, 55}}

func scoreVolatility(pct float64) float64 {
	return scoreAtMost(pct, volatilityBands, 35)
}

// scorePrice computes the price dimension from the kline series. With
// fewer bars than the window every sub-metric is neutral; with no
// bars at all the caller drops the symbol before getting here.
func scorePrice(in Input) Dimension {
	bars := in.Klines
	if len(bars) < priceWindow+1 {
		return Dimension{
			Score: Neutral,
			SubScores: map[string]float64{
				"trend":      Neutral,
				"momentum":   Neutral,
				"volatility": Neutral,
			},
			Known: 0,
		}
	}

	window := bars[len(bars)-priceWindow:]
	closeNow := window[len(window)-1].Close

	var maSum float64
	for _, b := range window {
		maSum += b.Close
	}
	ma := maSum / float64(len(window))

	prevClose := bars[len(bars)-priceWindow-1].Close
	momentum := 0.0
	if prevClose > 0 {
		momentum = (closeNow - prevClose) / prevClose * 100
	}

	sub := map[string]float64{
		"trend":      scoreTrend(closeNow, ma),
		"momentum":   scoreMomentum(momentum),
		"volatility": scoreVolatility(dailyReturnStddev(bars) * 100),
	}

	return Dimension{
		Score:     weightedSum(sub, priceSubWeights),
		SubScores: sub,
		Known:     3,
	}
}

// dailyReturnStddev is the sample stddev of daily returns over the
// price window.
func dailyReturnStddev(bars []cache.Kline) float64 {
	if len(bars) < priceWindow+1 {
		return 0
	}
	window := bars[len(bars)-priceWindow-1:]

	returns := make([]float64, 0, priceWindow)
	for i := 1; i < len(window); i++ {
		if window[i-1].Close <= 0 {
			continue
		}
		returns = append(returns, (window[i].Close-window[i-1].Close)/window[i-1].Close)
	}
	if len(returns) < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance)
}
