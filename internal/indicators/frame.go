package indicators

import (
	"fmt"
	"time"

	"github.com/hanlyang/backtest/internal/domain"
)

// EMAHorizons names the three EMA lookbacks the stage classifier arranges.
type EMAHorizons struct {
	Short int
	Mid   int
	Long  int
}

// DefaultEMAHorizons matches spec.md §3's defaults (5/20/40).
func DefaultEMAHorizons() EMAHorizons {
	return EMAHorizons{Short: 5, Mid: 20, Long: 40}
}

// Config bundles every parameter the indicator frame builder needs.
type Config struct {
	EMA   EMAHorizons
	ATR   int // default 20
	MACD  TripleMACDConfig
	Slope SlopeThresholds
}

// DefaultConfig returns spec.md §3's defaults.
func DefaultConfig() Config {
	return Config{
		EMA:   DefaultEMAHorizons(),
		ATR:   20,
		MACD:  DefaultTripleMACDConfig(),
		Slope: DefaultSlopeThresholds(),
	}
}

// WarmupBars is the minimum bar count needed before any column is non-NaN:
// the longest of the EMA horizons and the slowest MACD triplet's slow EMA.
func (c Config) WarmupBars() int {
	longest := c.EMA.Long
	for _, t := range []PeriodTriplet{c.MACD.Upper, c.MACD.Middle, c.MACD.Lower} {
		if t.Slow > longest {
			longest = t.Slow
		}
	}
	if c.ATR > longest {
		longest = c.ATR
	}
	return longest
}

// Frame is the read-only, once-computed superset of a ticker's bar series
// plus every derived indicator column, keyed by the same index as Bars.
type Frame struct {
	Ticker string
	Bars   domain.BarSeries

	EMAShort []float64
	EMAMid   []float64
	EMALong  []float64
	ATR      []float64

	MACD TripleMACD

	DirUpper  []Direction
	DirMiddle []Direction
	DirLower  []Direction

	Stage           []int // 0 means undetermined (warmup not complete)
	StageTransition []int // 10*prev+curr, 0 if unchanged or undetermined

	cfg Config
}

// Config returns the configuration this frame was built with.
func (f Frame) Config() Config { return f.cfg }

// Len returns the number of bars in the frame.
func (f Frame) Len() int { return f.Bars.Len() }

// DateIndex returns the bar index for date, or -1 if date is not present.
func (f Frame) DateIndex(date time.Time) int {
	for i, b := range f.Bars.Bars {
		if b.Date.Equal(date) {
			return i
		}
	}
	return -1
}

// BuildFrame computes every indicator column for a bar series. Stage and
// StageTransition are left at their zero value here; internal/stage.Apply
// fills them in as a second pass once a Frame exists, keeping the stage
// classifier's MA-arrangement/MACD-cross rules out of this package.
func BuildFrame(bars domain.BarSeries, cfg Config) (*Frame, error) {
	if bars.Len() < cfg.WarmupBars() {
		return nil, fmt.Errorf("indicators: %s: insufficient history: have %d bars, need %d for warmup",
			bars.Ticker, bars.Len(), cfg.WarmupBars())
	}

	closes := bars.Closes()
	highs := make([]float64, bars.Len())
	lows := make([]float64, bars.Len())
	for i, b := range bars.Bars {
		highs[i] = b.High
		lows[i] = b.Low
	}

	f := &Frame{
		Ticker:   bars.Ticker,
		Bars:     bars,
		EMAShort: EMA(closes, cfg.EMA.Short),
		EMAMid:   EMA(closes, cfg.EMA.Mid),
		EMALong:  EMA(closes, cfg.EMA.Long),
		ATR:      ATR(highs, lows, closes, cfg.ATR),
		MACD:     ComputeTripleMACD(closes, cfg.MACD),
		cfg:      cfg,
	}
	f.DirUpper = Directions(f.MACD.Upper.MACD)
	f.DirMiddle = Directions(f.MACD.Middle.MACD)
	f.DirLower = Directions(f.MACD.Lower.MACD)

	return f, nil
}

// Restore reconstructs a Frame from its exported columns plus the
// configuration it was built with. It exists for callers outside this
// package (the indicator-frame cache) that decode a Frame's fields from
// storage and cannot set the unexported cfg field directly.
func Restore(ticker string, bars domain.BarSeries, emaShort, emaMid, emaLong, atr []float64, macd TripleMACD, dirUpper, dirMiddle, dirLower []Direction, stageCol, stageTransition []int, cfg Config) *Frame {
	return &Frame{
		Ticker:          ticker,
		Bars:            bars,
		EMAShort:        emaShort,
		EMAMid:          emaMid,
		EMALong:         emaLong,
		ATR:             atr,
		MACD:            macd,
		DirUpper:        dirUpper,
		DirMiddle:       dirMiddle,
		DirLower:        dirLower,
		Stage:           stageCol,
		StageTransition: stageTransition,
		cfg:             cfg,
	}
}
