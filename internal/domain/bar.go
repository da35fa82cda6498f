// Package domain holds the value types shared across the backtesting engine:
// daily bars (Bar, BarSeries) and the Market listing-venue identifier.
package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Bar is a single daily OHLCV observation. All price fields are positive and
// Volume is non-negative; construction is always validated through
// NewBarSeries rather than trusted ad hoc.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// BarSeries is a date-ordered, deduplicated sequence of bars for one ticker.
type BarSeries struct {
	Ticker string
	Bars   []Bar
}

// NewBarSeries validates and sorts raw bars into a BarSeries. It rejects
// NaNs, non-positive OHLC, negative volume, and duplicate dates rather than
// silently dropping or averaging them — callers decide how to handle a
// rejected ticker (spec: per-ticker data failures are logged and the ticker
// is dropped, never silently patched).
func NewBarSeries(ticker string, bars []Bar) (BarSeries, error) {
	if ticker == "" {
		return BarSeries{}, fmt.Errorf("domain: ticker must not be empty")
	}
	if len(bars) == 0 {
		return BarSeries{}, fmt.Errorf("domain: %s: empty bar series", ticker)
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	seen := make(map[string]struct{}, len(sorted))
	for i, b := range sorted {
		if err := validateBar(b); err != nil {
			return BarSeries{}, fmt.Errorf("domain: %s: bar %d: %w", ticker, i, err)
		}
		key := b.Date.Format("2006-01-02")
		if _, dup := seen[key]; dup {
			return BarSeries{}, fmt.Errorf("domain: %s: duplicate date %s", ticker, key)
		}
		seen[key] = struct{}{}
	}

	return BarSeries{Ticker: ticker, Bars: sorted}, nil
}

func validateBar(b Bar) error {
	for name, v := range map[string]float64{
		"open": b.Open, "high": b.High, "low": b.Low, "close": b.Close, "volume": b.Volume,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not a finite number: %v", name, v)
		}
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("OHLC must be positive: open=%v high=%v low=%v close=%v", b.Open, b.High, b.Low, b.Close)
	}
	if b.Volume < 0 {
		return fmt.Errorf("volume must be non-negative: %v", b.Volume)
	}
	if b.High < b.Low {
		return fmt.Errorf("high (%v) below low (%v)", b.High, b.Low)
	}
	return nil
}

// Closes returns the close-price column, the most common input to indicator
// calculations.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Dates returns the date column.
func (s BarSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Date
	}
	return out
}

// Len returns the number of bars.
func (s BarSeries) Len() int { return len(s.Bars) }

// Market identifies a listing venue for TickerListProvider.
type Market string

const (
	MarketKOSPI  Market = "KOSPI"
	MarketKOSDAQ Market = "KOSDAQ"
	MarketAll    Market = "ALL"
)
