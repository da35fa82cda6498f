// Package indicators computes the per-ticker technical columns the stage
// classifier and signal generators consume: EMA/SMA, True Range/ATR, and the
// triple-MACD. Every function operates on a plain []float64 and returns a
// same-length []float64 with math.NaN() for the warmup window, following the
// "Option-style optional value with an explicit warmup window" guidance
// instead of letting NaNs propagate implicitly.
package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
)

// EMA computes the exponential moving average with an SMA-seeded warmup,
// matching the recurrence EMA_t = EMA_{t-1}*(n-1)/(n+1) + price_t*2/(n+1).
// go-talib's Ema implementation seeds with the period-n SMA and applies this
// exact recurrence, so it is used directly rather than reimplemented.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) == 0 {
		return nanSeries(len(values))
	}
	out := talib.Ema(values, period)
	return withWarmupNaN(out, period)
}

// SMA computes the rolling arithmetic mean over period.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) == 0 {
		return nanSeries(len(values))
	}
	out := talib.Sma(values, period)
	return withWarmupNaN(out, period)
}

// withWarmupNaN guarantees the first (period-1) entries are NaN even when
// the underlying talib call returns zeros instead (it does for Ema/Sma).
func withWarmupNaN(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	copy(out, series)
	warmup := period - 1
	if warmup > len(out) {
		warmup = len(out)
	}
	for i := 0; i < warmup; i++ {
		out[i] = math.NaN()
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Last returns the most recent non-NaN value, or (0, false) if none exists.
func Last(series []float64) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i], true
		}
	}
	return 0, false
}
