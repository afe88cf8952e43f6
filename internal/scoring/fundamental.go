package scoring

// Fundamental sub-metric weights. Profitability carries the most.
var fundamentalSubWeights = map[string]float64{
	"pe":            0.20,
	"pb":            0.20,
	"roe":           0.25,
	"rev_growth":    0.20,
	"profit_growth": 0.15,
}

var (
	peBands = []band{{20, 100}, {35, 80}, {60, 60}}
	pbBands = []band{{1, 100}, {1.5, 80}, {3, 60}}

	roeBands    = []band{{0, 20}, {5, 40}, {10, 55}, {15, 70}, {20, 85}}
	growthBands = []band{{0, 30}, {10, 50}, {20, 60}, {30, 70}}
)

func scorePE(v *float64) float64 {
	if v == nil {
		return Neutral
	}
	if *v <= 0 {
		// Loss-making or meaningless ratio: known bad, below the
		// unknown neutral but above the worst valuation band.
		return 40
	}
	return scoreAtMost(*v, peBands, 30)
}

func scorePB(v *float64) float64 {
	if v == nil {
		return Neutral
	}
	if *v <= 0 {
		return 40
	}
	return scoreAtMost(*v, pbBands, 40)
}

func scoreROE(v *float64) float64 {
	if v == nil {
		return Neutral
	}
	return scoreBelow(*v, roeBands, 100)
}

func scoreGrowth(v *float64) float64 {
	if v == nil {
		return Neutral
	}
	return scoreBelow(*v, growthBands, 85)
}

// scoreFundamental blends valuation, profitability and growth into
// one dimension. Each absent metric contributes the neutral score but
// does not count toward coverage.
func scoreFundamental(in Input) Dimension {
	sub := map[string]float64{
		"pe":            scorePE(peOf(in)),
		"pb":            scorePB(pbOf(in)),
		"roe":           scoreROE(roeOf(in)),
		"rev_growth":    scoreGrowth(revGrowthOf(in)),
		"profit_growth": scoreGrowth(profitGrowthOf(in)),
	}

	known := 0
	for _, v := range []*float64{peOf(in), pbOf(in), roeOf(in), revGrowthOf(in), profitGrowthOf(in)} {
		if v != nil {
			known++
		}
	}

	return Dimension{
		Score:     weightedSum(sub, fundamentalSubWeights),
		SubScores: sub,
		Known:     known,
	}
}

func peOf(in Input) *float64 {
	if in.Fundamental == nil {
		return nil
	}
	return in.Fundamental.PERatio
}

func pbOf(in Input) *float64 {
	if in.Fundamental == nil {
		return nil
	}
	return in.Fundamental.PBRatio
}

func roeOf(in Input) *float64 {
	if in.Financial == nil {
		return nil
	}
	return in.Financial.ROE
}

func revGrowthOf(in Input) *float64 {
	if in.Financial == nil {
		return nil
	}
	return in.Financial.RevenueGrowth
}

func profitGrowthOf(in Input) *float64 {
	if in.Financial == nil {
		return nil
	}
	return in.Financial.ProfitGrowth
}

func weightedSum(scores, weights map[string]float64) float64 {
	var total float64
	for k, w := range weights {
		total += scores[k] * w
	}
	return total
}
