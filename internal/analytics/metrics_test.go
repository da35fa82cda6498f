package analytics

import (
	"testing"
	"time"

	"github.com/hanlyang/backtest/internal/portfolio"
	"github.com/stretchr/testify/assert"
)

func snap(dateStr string, equity float64) portfolio.Snapshot {
	d, _ := time.Parse("2006-01-02", dateStr)
	return portfolio.Snapshot{Date: d, Equity: equity}
}

func TestComputeReturns_TotalAndCAGR(t *testing.T) {
	snapshots := []portfolio.Snapshot{
		snap("2024-01-01", 10_000_000),
		snap("2025-01-01", 12_000_000),
	}
	r := ComputeReturns(snapshots)
	assert.InDelta(t, 0.2, r.TotalReturn, 1e-9)
	assert.Greater(t, r.CAGR, 0.0)
}

func TestSharpe_ZeroWhenNoSpread(t *testing.T) {
	returns := []float64{0.001, 0.001, 0.001}
	assert.Equal(t, 0.0, Sharpe(returns, 0.02))
}

func TestSharpe_PositiveOnUptrend(t *testing.T) {
	returns := []float64{0.01, -0.002, 0.015, 0.003, -0.001}
	s := Sharpe(returns, 0.0)
	assert.Greater(t, s, 0.0)
}

func TestMaxDrawdown_FindsTroughAndRecovery(t *testing.T) {
	snapshots := []portfolio.Snapshot{
		snap("2024-01-01", 100),
		snap("2024-01-02", 120), // peak
		snap("2024-01-03", 90),  // trough
		snap("2024-01-04", 100),
		snap("2024-01-05", 125), // recovers above peak
	}
	dd := MaxDrawdown(snapshots)
	assert.InDelta(t, -0.25, dd.MaxDrawdown, 1e-9)
	peakDate, _ := time.Parse("2006-01-02", "2024-01-02")
	assert.Equal(t, peakDate, dd.PeakDate)
	troughDate, _ := time.Parse("2006-01-02", "2024-01-03")
	assert.Equal(t, troughDate, dd.TroughDate)
	if assert.NotNil(t, dd.RecoveryDate) {
		want, _ := time.Parse("2006-01-02", "2024-01-05")
		assert.Equal(t, want, *dd.RecoveryDate)
	}
}

func TestMaxDrawdown_NilRecoveryWhenNeverReached(t *testing.T) {
	snapshots := []portfolio.Snapshot{
		snap("2024-01-01", 100),
		snap("2024-01-02", 80),
	}
	dd := MaxDrawdown(snapshots)
	assert.Nil(t, dd.RecoveryDate)
}

func TestComputeTradeStats(t *testing.T) {
	trades := []portfolio.Trade{
		{Side: portfolio.Buy, PnL: 0},
		{Side: portfolio.Sell, PnL: 100},
		{Side: portfolio.Sell, PnL: -50},
		{Side: portfolio.Sell, PnL: 200},
	}
	stats := ComputeTradeStats(trades)
	assert.Equal(t, 2, stats.WinCount)
	assert.Equal(t, 1, stats.LossCount)
	assert.InDelta(t, 2.0/3.0, stats.WinRate, 1e-9)
	assert.InDelta(t, 6.0, stats.ProfitFactor, 1e-9) // 300/50
}

func TestComputeTradeStats_NoLossesIsInfiniteProfitFactor(t *testing.T) {
	trades := []portfolio.Trade{
		{Side: portfolio.Sell, PnL: 100},
	}
	stats := ComputeTradeStats(trades)
	assert.True(t, stats.ProfitFactor > 1e300)
}
