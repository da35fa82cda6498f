// Package portfolio owns the open/closed position book, the cash balance,
// and the append-only trade and snapshot ledgers the simulation driver
// writes to day by day.
package portfolio

import (
	"fmt"
	"math"
	"time"
)

// StopKind names which rule produced a position's current stop price.
type StopKind int

const (
	StopVolatility StopKind = iota
	StopTrend
)

func (k StopKind) String() string {
	if k == StopTrend {
		return "trend"
	}
	return "volatility"
}

// Position is one open holding. Units is the turtle sizing unit count;
// Shares is the raw share quantity the unit count was translated into.
type Position struct {
	Ticker            string
	Shares            float64
	Units             float64
	AvgEntryPrice     float64
	EntryDate         time.Time
	StopPrice         float64
	StopKind          StopKind
	HighestSinceEntry float64
	LowestSinceEntry  float64
}

// Value marks the position at price, falling back to the entry price when
// price is unavailable (spec.md §4.13 valuation fallback).
func (p Position) Value(price float64) float64 {
	if price <= 0 {
		price = p.AvgEntryPrice
	}
	return p.Shares * price
}

// Add merges additional shares into the position, recomputing the average
// entry price and summing units (spec.md §4.13).
func (p *Position) Add(shares, units, price float64, date time.Time) {
	totalShares := p.Shares + shares
	if totalShares > 0 {
		p.AvgEntryPrice = (p.AvgEntryPrice*p.Shares + price*shares) / totalShares
	}
	p.Shares = totalShares
	p.Units += units
	if p.EntryDate.IsZero() || date.Before(p.EntryDate) {
		p.EntryDate = date
	}
	if p.HighestSinceEntry == 0 || price > p.HighestSinceEntry {
		p.HighestSinceEntry = price
	}
	if p.LowestSinceEntry == 0 || price < p.LowestSinceEntry {
		p.LowestSinceEntry = price
	}
}

// ReduceBy scales units and shares down by the remaining/prior ratio after
// closing sharesClosed, flooring the resulting unit count per spec.md §4.13.
func (p *Position) ReduceBy(sharesClosed float64) {
	if p.Shares <= 0 {
		return
	}
	priorShares := p.Shares
	remaining := priorShares - sharesClosed
	if remaining < 0 {
		remaining = 0
	}
	ratio := remaining / priorShares
	p.Units = math.Floor(p.Units * ratio)
	p.Shares = remaining
}

// UpdateExtremes folds a new high/low into the position's trailing-stop
// reference points (spec.md §4.14 step 2).
func (p *Position) UpdateExtremes(high, low float64) {
	if high > p.HighestSinceEntry {
		p.HighestSinceEntry = high
	}
	if p.LowestSinceEntry == 0 || low < p.LowestSinceEntry {
		p.LowestSinceEntry = low
	}
}

// TrailStopLong recomputes a long position's trailing volatility stop:
// max(current, highest_since_entry - k*atr), never retreating below the
// current stop and never exceeding entry (locks in break-even once it is
// reached, per spec.md §4.8).
func (p *Position) TrailStopLong(atr, k float64) {
	candidate := p.HighestSinceEntry - k*atr
	if candidate > p.AvgEntryPrice {
		candidate = p.AvgEntryPrice
	}
	if candidate > p.StopPrice {
		p.StopPrice = candidate
	}
}

// StopTriggered reports whether the current price has breached the stop
// for a long position: price <= stop (inclusive, per spec.md §4.8).
func (p Position) StopTriggered(price float64) bool {
	return price <= p.StopPrice
}

func (p Position) String() string {
	return fmt.Sprintf("%s shares=%.4f units=%.2f avg=%.4f stop=%.4f(%s)",
		p.Ticker, p.Shares, p.Units, p.AvgEntryPrice, p.StopPrice, p.StopKind)
}
