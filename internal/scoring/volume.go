package scoring

// Volume activity. Sweet spots, not monotonic: a dead stock and a
// churning one are both penalized.
var volumeSubWeights = map[string]float64{
	"turnover_rate": 0.40,
	"volume_ratio":  0.35,
	"amount":        0.25,
}

func scoreTurnoverRate(v *float64) float64 {
	if v == nil {
		return Neutral
	}
	switch {
	case *v < 1:
		return 40
	case *v < 3:
		return 70
	case *v <= 10:
		return 90
	case *v <= 20:
		return 60
	default:
		return 30
	}
}

func scoreVolumeRatio(v *float64) float64 {
	if v == nil {
		return Neutral
	}
	switch {
	case *v < 0.5:
		return 40
	case *v < 1:
		return 60
	case *v <= 2:
		return 85
	case *v <= 4:
		return 70
	default:
		return 40
	}
}

// amountBands score average daily turnover in CNY. Thin names are
// hard to exit and get marked down hard.
var amountBands = []band{{5e7, 35}, {2e8, 55}, {1e9, 70}}

func scoreAmount(v *float64) float64 {
	if v == nil {
		return Neutral
	}
	return scoreBelow(*v, amountBands, 85)
}

// scoreVolume blends turnover activity. The amount metric is derived
// from the kline tail when available; turnover and volume ratio come
// from the valuation snapshot.
func scoreVolume(in Input) Dimension {
	amount := avgAmount(in, 20)

	sub := map[string]float64{
		"turnover_rate": scoreTurnoverRate(turnoverOf(in)),
		"volume_ratio":  scoreVolumeRatio(volumeRatioOf(in)),
		"amount":        scoreAmount(amount),
	}

	known := 0
	for _, v := range []*float64{turnoverOf(in), volumeRatioOf(in), amount} {
		if v != nil {
			known++
		}
	}

	return Dimension{
		Score:     weightedSum(sub, volumeSubWeights),
		SubScores: sub,
		Known:     known,
	}
}

// avgAmount averages the amount column over the last n bars. Nil when
// the series is empty or carries no amount data.
func avgAmount(in Input, n int) *float64 {
	bars := in.Klines
	if len(bars) == 0 {
		return nil
	}
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	var sum float64
	nonzero := 0
	for _, b := range bars {
		sum += b.Amount
		if b.Amount > 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		return nil
	}
	avg := sum / float64(len(bars))
	return &avg
}

func turnoverOf(in Input) *float64 {
	if in.Fundamental == nil {
		return nil
	}
	return in.Fundamental.TurnoverRate
}

func volumeRatioOf(in Input) *float64 {
	if in.Fundamental == nil {
		return nil
	}
	return in.Fundamental.VolumeRatio
}
