package scoring

// Weights are the dimension weights of the total score. They are
// expected to sum to 1 but any positive weights renormalize cleanly.
type Weights struct {
	Fundamental float64 `yaml:"fundamental"`
	Volume      float64 `yaml:"volume"`
	Price       float64 `yaml:"price"`
}

// DefaultWeights favor fundamentals, then price action, then volume.
var DefaultWeights = Weights{
	Fundamental: 0.40,
	Volume:      0.25,
	Price:       0.35,
}

// sum of all dimension weights.
func (w Weights) sum() float64 {
	return w.Fundamental + w.Volume + w.Price
}

// normalized scales the weights to sum to 1. All-zero weights come
// back unchanged.
func (w Weights) normalized() Weights {
	s := w.sum()
	if s <= 0 {
		return w
	}
	return Weights{
		Fundamental: w.Fundamental / s,
		Volume:      w.Volume / s,
		Price:       w.Price / s,
	}
}

// withoutUncovered drops the fundamental weight when no symbol in the
// batch had any fundamental or financial data, redistributing it over
// volume and price with their relative proportion preserved. Volume
// and price always keep their configured share: price history is
// mandatory for entering the batch at all, and thin volume data
// scores neutral instead of reweighting. When dropping fundamentals
// would leave nothing, the configured weights stand and the batch
// scores neutral across the board.
func (w Weights) withoutUncovered(fundCovered bool) Weights {
	if fundCovered {
		return w.normalized()
	}
	adjusted := w
	adjusted.Fundamental = 0
	if adjusted.sum() <= 0 {
		return w.normalized()
	}
	return adjusted.normalized()
}
