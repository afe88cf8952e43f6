package scoring

// All metric scores come from small step tables. Breakpoints are
// calibrated for A-share screening, not fitted to anything; the point
// is a stable ordinal ranking, not a predictive model.

// Neutral is the score of a metric the vendor knows nothing about.
// It must sit mid-scale so an unknown neither rewards nor punishes.
const Neutral = 50.0

type band struct {
	limit float64
	score float64
}

// scoreBelow walks ascending bands and returns the score of the first
// band the value is strictly under, else fallback. Used by metrics
// where higher is better.
func scoreBelow(v float64, bands []band, fallback float64) float64 {
	for _, b := range bands {
		if v < b.limit {
			return b.score
		}
	}
	return fallback
}

// scoreAtMost is the inclusive variant, for metrics where lower is
// better and the band edge belongs to the better side.
func scoreAtMost(v float64, bands []band, fallback float64) float64 {
	for _, b := range bands {
		if v <= b.limit {
			return b.score
		}
	}
	return fallback
}
