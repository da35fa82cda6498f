package signal

import "github.com/hanlyang/backtest/internal/indicators"

// macdAlignmentScore: 30 when all three directions agree, 20 when exactly
// two agree, 10 when exactly one MACD is directional (the other two
// neutral), else 0 (spec.md §4.5).
func macdAlignmentScore(upper, middle, lower indicators.Direction) int {
	var up, down int
	for _, d := range []indicators.Direction{upper, middle, lower} {
		switch d {
		case indicators.DirectionUp:
			up++
		case indicators.DirectionDown:
			down++
		}
	}
	agree := up
	if down > agree {
		agree = down
	}
	switch {
	case agree == 3:
		return 30
	case agree == 2:
		return 20
	case up+down == 1:
		return 10
	default:
		return 0
	}
}

// arrangementSubScore is the first half of the 0-40 trend-strength score.
func arrangementSubScore(stageValue int) int {
	switch stageValue {
	case 6, 3:
		return 20
	case 5, 2:
		return 15
	case 1, 4:
		return 5
	default:
		return 0
	}
}

// spreadSubScore buckets the normalized MA-spread's percentile within its
// own historical series into the second half of the trend-strength score.
func spreadSubScore(spreadPercentile float64) int {
	switch {
	case spreadPercentile >= 80:
		return 20
	case spreadPercentile >= 60:
		return 15
	case spreadPercentile >= 40:
		return 10
	default:
		return 5
	}
}

// trendStrengthScore combines the two sub-scores, capped at 40.
func trendStrengthScore(stageValue int, spreadPercentile float64) int {
	score := arrangementSubScore(stageValue) + spreadSubScore(spreadPercentile)
	if score > 40 {
		score = 40
	}
	return score
}

// momentumSlopeSubScore maps a categorical slope label to its sub-score.
func momentumSlopeSubScore(label indicators.SlopeLabel) int {
	switch label {
	case indicators.SlopeStrongUp, indicators.SlopeStrongDown:
		return 20
	case indicators.SlopeUp, indicators.SlopeDown:
		return 15
	case indicators.SlopeWeakUp, indicators.SlopeWeakDown:
		return 10
	default:
		return 0
	}
}

// atrAppropriatenessSubScore rewards ATR percentiles in the "tradeable"
// middle band and penalizes extremes.
func atrAppropriatenessSubScore(atrPercentile float64) int {
	switch {
	case atrPercentile >= 40 && atrPercentile <= 70:
		return 10
	case (atrPercentile >= 20 && atrPercentile < 40) || (atrPercentile > 70 && atrPercentile <= 85):
		return 7
	default:
		return 3
	}
}

// momentumScore combines the two sub-scores, capped at 30.
func momentumScore(label indicators.SlopeLabel, atrPercentile float64) int {
	score := momentumSlopeSubScore(label) + atrAppropriatenessSubScore(atrPercentile)
	if score > 30 {
		score = 30
	}
	return score
}

// Inputs bundles everything ComputeStrength needs for one bar.
type Inputs struct {
	DirUpper, DirMiddle, DirLower indicators.Direction
	StageValue                    int
	SpreadPercentile              float64 // percentile of |s-m|+|m-l| normalized by close
	LongEMASlopeLabel             indicators.SlopeLabel
	ATRPercentile                 float64
}

// ComputeStrength is the 0-100 signal-strength score of spec.md §4.5: the
// sum of the MACD-alignment (0-30), trend (0-40), and momentum (0-30)
// sub-scores, clipped to [0,100].
func ComputeStrength(in Inputs) int {
	score := macdAlignmentScore(in.DirUpper, in.DirMiddle, in.DirLower) +
		trendStrengthScore(in.StageValue, in.SpreadPercentile) +
		momentumScore(in.LongEMASlopeLabel, in.ATRPercentile)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// MASpread computes the normalized total MA spread
// (|EMA_s-EMA_m| + |EMA_m-EMA_l|) / close for every bar.
func MASpread(emaShort, emaMid, emaLong, closes []float64) []float64 {
	n := len(closes)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if closes[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = (abs(emaShort[i]-emaMid[i]) + abs(emaMid[i]-emaLong[i])) / closes[i]
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
