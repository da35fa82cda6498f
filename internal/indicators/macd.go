package indicators

import "github.com/markcheno/go-talib"

// PeriodTriplet names the (fast, slow, signal) periods of one MACD line.
type PeriodTriplet struct {
	Fast   int
	Slow   int
	Signal int
}

// MACDLine holds the three series produced by one MACD calculation.
type MACDLine struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes MACD = EMA(fast) - EMA(slow), Signal = EMA(MACD, signal),
// Histogram = MACD - Signal. go-talib's Macd implements exactly this
// EMA-based construction, so it is used directly. Its first
// slow+signal-2 outputs are zero fill, replaced here by NaN.
func MACD(closes []float64, t PeriodTriplet) MACDLine {
	macd, signal, hist := talib.Macd(closes, t.Fast, t.Slow, t.Signal)
	warmup := t.Slow + t.Signal - 1
	return MACDLine{
		MACD:      withWarmupNaN(macd, warmup),
		Signal:    withWarmupNaN(signal, warmup),
		Histogram: withWarmupNaN(hist, warmup),
	}
}

// TripleMACDConfig names the three period triplets that make up the
// triple-MACD: upper (fastest), middle, lower (slowest).
type TripleMACDConfig struct {
	Upper  PeriodTriplet
	Middle PeriodTriplet
	Lower  PeriodTriplet
}

// DefaultTripleMACDConfig matches spec.md §3's defaults.
func DefaultTripleMACDConfig() TripleMACDConfig {
	return TripleMACDConfig{
		Upper:  PeriodTriplet{Fast: 5, Slow: 20, Signal: 9},
		Middle: PeriodTriplet{Fast: 5, Slow: 40, Signal: 9},
		Lower:  PeriodTriplet{Fast: 20, Slow: 40, Signal: 9},
	}
}

// TripleMACD holds the three named MACD lines.
type TripleMACD struct {
	Upper  MACDLine
	Middle MACDLine
	Lower  MACDLine
}

// ComputeTripleMACD runs all three MACD triplets over the same close series.
func ComputeTripleMACD(closes []float64, cfg TripleMACDConfig) TripleMACD {
	return TripleMACD{
		Upper:  MACD(closes, cfg.Upper),
		Middle: MACD(closes, cfg.Middle),
		Lower:  MACD(closes, cfg.Lower),
	}
}
