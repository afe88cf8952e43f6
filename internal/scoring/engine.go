package scoring

import (
	"github.com/zhouql/stockpick/internal/cache"
)

// Input is everything known about one symbol at scoring time. Any of
// the data fields may be nil or empty; only a missing price series is
// disqualifying.
type Input struct {
	Symbol      string
	Name        string
	Fundamental *cache.Fundamental
	Financial   *cache.Financial
	Klines      []cache.Kline
}

// Dimension is one scored dimension: the blended score, the
// per-metric breakdown, and how many metrics were actually known
// rather than defaulted.
type Dimension struct {
	Score     float64
	SubScores map[string]float64
	Known     int
}

// Result is the scored outcome for one symbol.
type Result struct {
	Symbol      string
	Name        string
	Total       float64
	Fundamental Dimension
	Volume      Dimension
	Price       Dimension
}

// ScoreBatch scores every input and returns the results together with
// the weights actually applied. When no symbol in the batch has any
// fundamental or financial data, the fundamental weight is
// redistributed proportionally over volume and price, so totals stay
// on the 0-100 scale instead of silently shrinking. Symbols without
// any price history are skipped; everything else scores with neutral
// defaults filling the gaps, and a fully degraded batch still ranks.
func ScoreBatch(inputs []Input, weights Weights) ([]Result, Weights) {
	type scored struct {
		in    Input
		fund  Dimension
		vol   Dimension
		price Dimension
	}

	batch := make([]scored, 0, len(inputs))
	fundCovered := false

	for _, in := range inputs {
		if len(in.Klines) == 0 {
			continue
		}
		s := scored{
			in:    in,
			fund:  scoreFundamental(in),
			vol:   scoreVolume(in),
			price: scorePrice(in),
		}
		fundCovered = fundCovered || s.fund.Known > 0
		batch = append(batch, s)
	}

	if len(batch) == 0 {
		return nil, weights.normalized()
	}

	effective := weights.withoutUncovered(fundCovered)

	results := make([]Result, 0, len(batch))
	for _, s := range batch {
		results = append(results, Result{
			Symbol:      s.in.Symbol,
			Name:        s.in.Name,
			Total:       s.fund.Score*effective.Fundamental + s.vol.Score*effective.Volume + s.price.Score*effective.Price,
			Fundamental: s.fund,
			Volume:      s.vol,
			Price:       s.price,
		})
	}
	return results, effective
}
