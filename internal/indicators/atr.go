package indicators

import "math"

// TrueRange computes max(H-L, |H-C_prev|, |L-C_prev|) for each bar. The
// first bar has no prior close, so TrueRange[0] is simply High[0]-Low[0].
func TrueRange(high, low, close []float64) []float64 {
	n := len(close)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := high[i] - low[i]
		if i == 0 {
			out[i] = hl
			continue
		}
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR is the EMA of True Range using the same recurrence as EMA, per spec
// (not Wilder/RMA smoothing, which go-talib's own Atr function would use).
func ATR(high, low, close []float64, period int) []float64 {
	tr := TrueRange(high, low, close)
	return EMA(tr, period)
}
