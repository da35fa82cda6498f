package signal

import "github.com/hanlyang/backtest/internal/indicators"

// Side is the position side an exit signal is evaluated for. The simulation
// driver only ever opens long positions (spec.md §1 Non-goals), but the
// three-level exit chain is defined symmetrically so a held short position
// (should one ever exist) is handled the same way.
type Side int

const (
	SideLong Side = iota
	SideShort
)

// ExitLevel is the three-step close schedule: 0 = no exit, 1 = histogram
// peakout (0% close), 2 = MACD-line peakout (50% close), 3 = MACD/Signal
// cross (100% close).
type ExitLevel int

const (
	ExitNone ExitLevel = iota
	ExitLevel1
	ExitLevel2
	ExitLevel3
)

// Ratio returns the close fraction for a level: 0, 0.5, or 1.0.
func (l ExitLevel) Ratio() float64 {
	switch l {
	case ExitLevel2:
		return 0.5
	case ExitLevel3:
		return 1.0
	default:
		return 0
	}
}

// MACDSource names which of the three MACD lines produced an exit decision.
type MACDSource int

const (
	SourceUpper MACDSource = iota
	SourceMiddle
	SourceLower
)

func (s MACDSource) String() string {
	switch s {
	case SourceUpper:
		return "upper"
	case SourceMiddle:
		return "middle"
	default:
		return "lower"
	}
}

// ThreeStepConditions holds, per bar, whether each of the three close
// conditions fired for one MACD line.
type ThreeStepConditions struct {
	HistPeakout []bool // level 1
	MACDPeakout []bool // level 2
	SignalCross []bool // level 3
}

// ComputeConditions evaluates the three-step close chain for one MACD line
// and side: histogram peakout, MACD-line peakout, and MACD/Signal cross
// (dead-cross for long, golden-cross for short).
func ComputeConditions(line indicators.MACDLine, side Side) ThreeStepConditions {
	peakDir := indicators.PeakoutDown
	if side == SideShort {
		peakDir = indicators.PeakoutUp
	}

	return ThreeStepConditions{
		HistPeakout: indicators.DetectPeakout(line.Histogram, peakDir),
		MACDPeakout: indicators.DetectPeakout(line.MACD, peakDir),
		SignalCross: crossSignal(line.MACD, line.Signal, side),
	}
}

// crossSignal detects a dead-cross (long) or golden-cross (short) of macd
// against signal.
func crossSignal(macd, sig []float64, side Side) []bool {
	n := len(macd)
	out := make([]bool, n)
	for t := 1; t < n; t++ {
		p0, p1, s0, s1 := macd[t-1], macd[t], sig[t-1], sig[t]
		if isNaNAny(p0, p1, s0, s1) {
			continue
		}
		if side == SideLong {
			out[t] = p0 >= s0 && p1 < s1 // dead-cross: macd falls below signal
		} else {
			out[t] = p0 <= s0 && p1 > s1 // golden-cross: macd rises above signal
		}
	}
	return out
}

func isNaNAny(vs ...float64) bool {
	for _, v := range vs {
		if v != v {
			return true
		}
	}
	return false
}

// MergeStrategy selects which of the three MACD lines feeds each exit
// level (spec.md §4.4).
type MergeStrategy int

const (
	MergeSequential MergeStrategy = iota
	MergeFastest
	MergeSlowest
	MergeMajority
)

// ExitDecision is the per-bar output of a merge strategy: the level, its
// close ratio, and which MACD(s) produced it.
type ExitDecision struct {
	Level  ExitLevel
	Ratio  float64
	Source MACDSource
}

// MergeExit combines the upper/middle/lower three-step conditions for one
// bar index into a single exit decision using strategy.
func MergeExit(upper, middle, lower ThreeStepConditions, t int, strategy MergeStrategy) ExitDecision {
	switch strategy {
	case MergeFastest:
		return fromSingle(upper, t, SourceUpper)
	case MergeSlowest:
		return fromSingle(lower, t, SourceLower)
	case MergeMajority:
		return fromMajority(upper, middle, lower, t)
	default: // MergeSequential
		return fromSequential(upper, middle, lower, t)
	}
}

func fromSingle(c ThreeStepConditions, t int, src MACDSource) ExitDecision {
	level := levelFrom(c, t)
	return ExitDecision{Level: level, Ratio: level.Ratio(), Source: src}
}

// fromSequential: level1 from the fast/upper MACD, level2 from the
// middle MACD, level3 from the slow/lower MACD; higher levels win ties.
func fromSequential(upper, middle, lower ThreeStepConditions, t int) ExitDecision {
	if t < len(lower.SignalCross) && lower.SignalCross[t] {
		return ExitDecision{Level: ExitLevel3, Ratio: ExitLevel3.Ratio(), Source: SourceLower}
	}
	if t < len(middle.MACDPeakout) && middle.MACDPeakout[t] {
		return ExitDecision{Level: ExitLevel2, Ratio: ExitLevel2.Ratio(), Source: SourceMiddle}
	}
	if t < len(upper.HistPeakout) && upper.HistPeakout[t] {
		return ExitDecision{Level: ExitLevel1, Ratio: ExitLevel1.Ratio(), Source: SourceUpper}
	}
	return ExitDecision{}
}

func fromMajority(upper, middle, lower ThreeStepConditions, t int) ExitDecision {
	majority3 := countTrue(upper.SignalCross, middle.SignalCross, lower.SignalCross, t) >= 2
	majority2 := countTrue(upper.MACDPeakout, middle.MACDPeakout, lower.MACDPeakout, t) >= 2
	majority1 := countTrue(upper.HistPeakout, middle.HistPeakout, lower.HistPeakout, t) >= 2

	switch {
	case majority3:
		return ExitDecision{Level: ExitLevel3, Ratio: ExitLevel3.Ratio(), Source: SourceLower}
	case majority2:
		return ExitDecision{Level: ExitLevel2, Ratio: ExitLevel2.Ratio(), Source: SourceMiddle}
	case majority1:
		return ExitDecision{Level: ExitLevel1, Ratio: ExitLevel1.Ratio(), Source: SourceUpper}
	default:
		return ExitDecision{}
	}
}

func countTrue(a, b, c []bool, t int) int {
	n := 0
	if t < len(a) && a[t] {
		n++
	}
	if t < len(b) && b[t] {
		n++
	}
	if t < len(c) && c[t] {
		n++
	}
	return n
}

func levelFrom(c ThreeStepConditions, t int) ExitLevel {
	switch {
	case t < len(c.SignalCross) && c.SignalCross[t]:
		return ExitLevel3
	case t < len(c.MACDPeakout) && c.MACDPeakout[t]:
		return ExitLevel2
	case t < len(c.HistPeakout) && c.HistPeakout[t]:
		return ExitLevel1
	default:
		return ExitNone
	}
}

// Reason renders a human/trade-ledger reason string: "exit_signal(<source>)".
func (d ExitDecision) Reason() string {
	if d.Level == ExitNone {
		return ""
	}
	return "exit_signal(" + d.Source.String() + ")"
}
