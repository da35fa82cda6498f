package signal

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// FilterConfig controls which of the four filters are active and their
// thresholds (spec.md §4.6).
type FilterConfig struct {
	EnableStrength   bool
	EnableVolatility bool
	EnableTrend      bool
	EnableConflict   bool

	StrengthThreshold       int     // default 50
	VolatilityPercentileMax float64 // default 90
	TrendSlopeMin           float64 // default 0.1, compared against |slope/price|
}

// DefaultFilterConfig enables all four filters with spec.md §4.6's defaults.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		EnableStrength:          true,
		EnableVolatility:        true,
		EnableTrend:             true,
		EnableConflict:          true,
		StrengthThreshold:       50,
		VolatilityPercentileMax: 90,
		TrendSlopeMin:           0.1,
	}
}

// FilterInputs are the columns the filter chain inspects. A nil pointer
// means that input is unavailable on this bar; per spec.md §4.6 a filter
// whose input is missing passes unconditionally, with a warning logged.
type FilterInputs struct {
	Strength         *int
	ATRPercentile    *float64
	LongEMANormSlope *float64 // slope/price, signed
	EntrySignal      int
	ExitSignal       int
}

// FilterResult is the composed pass/fail decision plus a human reason.
type FilterResult struct {
	Passed  bool
	Reasons []string // names of filters that failed; empty if Passed
}

// Apply runs every enabled filter and ANDs the results. A filter disabled
// in cfg is skipped entirely (never contributes a failure reason).
func Apply(cfg FilterConfig, in FilterInputs, log zerolog.Logger) FilterResult {
	result := FilterResult{Passed: true}

	check := func(enabled bool, name string, ok func() (bool, bool)) {
		if !enabled {
			return
		}
		passed, available := ok()
		if !available {
			log.Warn().Str("filter", name).Msg("signal filter input unavailable, passing unconditionally")
			return
		}
		if !passed {
			result.Passed = false
			result.Reasons = append(result.Reasons, name)
		}
	}

	check(cfg.EnableStrength, "strength", func() (bool, bool) {
		if in.Strength == nil {
			return true, false
		}
		return *in.Strength >= cfg.StrengthThreshold, true
	})

	check(cfg.EnableVolatility, "volatility", func() (bool, bool) {
		if in.ATRPercentile == nil {
			return true, false
		}
		return *in.ATRPercentile <= cfg.VolatilityPercentileMax, true
	})

	check(cfg.EnableTrend, "trend", func() (bool, bool) {
		if in.LongEMANormSlope == nil {
			return true, false
		}
		return math.Abs(*in.LongEMANormSlope) >= cfg.TrendSlopeMin, true
	})

	check(cfg.EnableConflict, "conflict", func() (bool, bool) {
		return !(in.EntrySignal != 0 && in.ExitSignal != 0), true
	})

	return result
}

// Reason renders the failed-filter list as a single string.
func (r FilterResult) Reason() string {
	if r.Passed {
		return ""
	}
	return fmt.Sprintf("failed filters: %v", r.Reasons)
}
