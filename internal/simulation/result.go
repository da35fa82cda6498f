package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/hanlyang/backtest/internal/analytics"
	"github.com/hanlyang/backtest/internal/portfolio"
)

// TickerListProvider resolves a market name to its ticker universe
// (spec.md §6: `list_tickers(market) -> [ticker]`).
type TickerListProvider interface {
	ListTickers(ctx context.Context, market string) ([]string, error)
}

// Market name constants recognised by TickerListProvider.
const (
	MarketKOSPI  = "KOSPI"
	MarketKOSDAQ = "KOSDAQ"
	MarketAll    = "ALL"
)

// BacktestResult is the full output of one run (spec.md §6).
type BacktestResult struct {
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64
	FinalCapital   float64
	TotalReturn    float64 // percent
	MaxDrawdown    float64 // percent
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64 // percent
	Snapshots      []portfolio.Snapshot
	Trades         []portfolio.Trade
	ScannedTickers int
}

// BuildResult assembles a BacktestResult from a completed portfolio.
func BuildResult(p *portfolio.Portfolio, initialCapital float64, scannedTickers int) BacktestResult {
	result := BacktestResult{
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
		Snapshots:      p.Snapshots,
		Trades:         p.Trades,
		ScannedTickers: scannedTickers,
	}

	if n := len(p.Snapshots); n > 0 {
		result.StartDate = p.Snapshots[0].Date
		result.EndDate = p.Snapshots[n-1].Date
		result.FinalCapital = p.Snapshots[n-1].Equity
	}

	returns := analytics.ComputeReturns(p.Snapshots)
	result.TotalReturn = returns.TotalReturn * 100

	drawdown := analytics.MaxDrawdown(p.Snapshots)
	result.MaxDrawdown = drawdown.MaxDrawdown * 100

	stats := analytics.ComputeTradeStats(p.Trades)
	result.WinningTrades = stats.WinCount
	result.LosingTrades = stats.LossCount
	result.TotalTrades = stats.WinCount + stats.LossCount
	result.WinRate = stats.WinRate * 100

	return result
}

// Summary renders a short human-readable rendering of the result. Its exact
// format is informational, not a contract (spec.md §6).
func (r BacktestResult) Summary() string {
	return fmt.Sprintf(
		"backtest %s -> %s: capital %.0f -> %.0f (%.2f%%), max drawdown %.2f%%, trades %d (%d win / %d loss, %.1f%% win rate), tickers scanned %d",
		r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"),
		r.InitialCapital, r.FinalCapital, r.TotalReturn, r.MaxDrawdown,
		r.TotalTrades, r.WinningTrades, r.LosingTrades, r.WinRate, r.ScannedTickers,
	)
}
