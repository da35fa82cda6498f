package risk

import "github.com/hanlyang/backtest/internal/portfolio"

// VolatilityStop is entry - k*ATR for a long, floored at zero (spec.md §4.8).
func VolatilityStop(entry, atr, k float64) float64 {
	stop := entry - k*atr
	if stop < 0 {
		return 0
	}
	return stop
}

// VolatilityStopShort mirrors VolatilityStop for a short position.
func VolatilityStopShort(entry, atr, k float64) float64 {
	return entry + k*atr
}

// TrendStopValid reports whether a long-horizon EMA value is usable as a
// trend stop: it must sit on the correct side of entry (below for long,
// above for short), per spec.md §4.8.
func TrendStopValid(entry, longEMA float64, long bool) bool {
	if long {
		return longEMA < entry
	}
	return longEMA > entry
}

// SelectStop picks the stop nearer to current price between the volatility
// and trend candidates: the higher one wins for a long position (lower for
// a short), ties breaking to volatility (spec.md §4.8).
func SelectStop(volStop, trendStop float64, trendValid, long bool) (float64, portfolio.StopKind) {
	if !trendValid {
		return volStop, portfolio.StopVolatility
	}
	if long {
		if trendStop > volStop {
			return trendStop, portfolio.StopTrend
		}
		return volStop, portfolio.StopVolatility
	}
	if trendStop < volStop {
		return trendStop, portfolio.StopTrend
	}
	return volStop, portfolio.StopVolatility
}
