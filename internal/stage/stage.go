// Package stage implements the six-way regime classifier: the EMA
// arrangement gives a base label, which is then overridden by MACD
// zero-line cross events (spec.md §4.2).
package stage

import (
	"math"

	"github.com/hanlyang/backtest/internal/indicators"
)

// Arrangement classifies each bar's EMA ordering into one of the six
// patterns described in spec.md §4.2, or 0 when any input is NaN (warmup).
func Arrangement(short, mid, long []float64) []int {
	n := len(short)
	out := make([]int, n)
	for i := 0; i < n; i++ {
		s, m, l := short[i], mid[i], long[i]
		if math.IsNaN(s) || math.IsNaN(m) || math.IsNaN(l) {
			out[i] = 0
			continue
		}
		switch {
		case s > m && m > l:
			out[i] = 1
		case m > s && s > l:
			out[i] = 2
		case m > l && l > s:
			out[i] = 3
		case l > m && m > s:
			out[i] = 4
		case l > s && s > m:
			out[i] = 5
		case s > l && l > m:
			out[i] = 6
		default:
			out[i] = 0 // ties: arrangement undefined
		}
	}
	return out
}

// ZeroCross reports, for each bar, whether macd crossed its zero line:
// +1 golden cross (prior < 0, current >= 0), -1 dead cross (prior >= 0,
// current < 0), 0 otherwise. Bar 0 is always 0 (no prior bar).
func ZeroCross(macd []float64) []int {
	n := len(macd)
	out := make([]int, n)
	for i := 1; i < n; i++ {
		prev, curr := macd[i-1], macd[i]
		if math.IsNaN(prev) || math.IsNaN(curr) {
			continue
		}
		switch {
		case prev < 0 && curr >= 0:
			out[i] = 1
		case prev >= 0 && curr < 0:
			out[i] = -1
		}
	}
	return out
}

// Determine runs the full stage-assignment procedure: base arrangement,
// then MACD-cross overrides applied in priority order upper -> middle ->
// lower, where the last matched override on a bar wins (spec.md §4.2).
func Determine(arrangement []int, upperCross, middleCross, lowerCross []int) []int {
	n := len(arrangement)
	stage := make([]int, n)
	copy(stage, arrangement)

	for i := 0; i < n; i++ {
		if upperCross[i] == -1 {
			stage[i] = 2
		} else if upperCross[i] == 1 {
			stage[i] = 5
		}
		if middleCross[i] == -1 {
			stage[i] = 3
		} else if middleCross[i] == 1 {
			stage[i] = 6
		}
		if lowerCross[i] == 1 {
			stage[i] = 1
		} else if lowerCross[i] == -1 {
			stage[i] = 4
		}
	}
	return stage
}

// Transitions computes, for each bar, 10*stage[t-1]+stage[t] if the stage
// changed from the prior bar (and both are determined), else 0.
func Transitions(stage []int) []int {
	n := len(stage)
	out := make([]int, n)
	for i := 1; i < n; i++ {
		prev, curr := stage[i-1], stage[i]
		if prev == 0 || curr == 0 {
			continue
		}
		if prev != curr {
			out[i] = 10*prev + curr
		}
	}
	return out
}

// Apply computes the base arrangement and MACD-cross overrides from f's
// indicator columns and writes Stage/StageTransition back onto f.
func Apply(f *indicators.Frame) {
	arrangement := Arrangement(f.EMAShort, f.EMAMid, f.EMALong)
	upperCross := ZeroCross(f.MACD.Upper.MACD)
	middleCross := ZeroCross(f.MACD.Middle.MACD)
	lowerCross := ZeroCross(f.MACD.Lower.MACD)

	f.Stage = Determine(arrangement, upperCross, middleCross, lowerCross)
	f.StageTransition = Transitions(f.Stage)
}
