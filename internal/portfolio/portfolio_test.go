package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestOpen_RejectsInsufficientCash(t *testing.T) {
	p := New(1000)
	err := p.Open("005930", 100, 2, 20, 0.1, date("2024-01-02"), 18, StopVolatility)
	assert.Error(t, err)
	assert.Equal(t, 1000.0, p.Cash)
}

func TestOpen_ThenAddRecomputesAveragePrice(t *testing.T) {
	p := New(100000)
	require.NoError(t, p.Open("005930", 10, 1, 100, 0, date("2024-01-02"), 90, StopVolatility))
	require.NoError(t, p.Open("005930", 10, 1, 120, 0, date("2024-01-03"), 90, StopVolatility))

	pos := p.Positions["005930"]
	assert.Equal(t, 20.0, pos.Shares)
	assert.Equal(t, 2.0, pos.Units)
	assert.InDelta(t, 110.0, pos.AvgEntryPrice, 1e-9)
	assert.Equal(t, 100000.0-2200, p.Cash)
}

func TestClose_FullClosePaysProceedsAndRemovesPosition(t *testing.T) {
	p := New(100000)
	require.NoError(t, p.Open("005930", 10, 2, 100, 0, date("2024-01-02"), 90, StopVolatility))
	err := p.Close("005930", 10, 120, 1, date("2024-01-05"), "exit_signal(lower)")
	require.NoError(t, err)

	_, stillOpen := p.Positions["005930"]
	assert.False(t, stillOpen)
	require.Len(t, p.Closed, 1)
	require.Len(t, p.Trades, 2)
	last := p.Trades[1]
	assert.Equal(t, Sell, last.Side)
	assert.InDelta(t, 200.0, last.PnL, 1e-9)
}

func TestClose_PartialScalesUnitsByRemainingRatio(t *testing.T) {
	p := New(100000)
	require.NoError(t, p.Open("005930", 10, 4, 100, 0, date("2024-01-02"), 90, StopVolatility))
	require.NoError(t, p.Close("005930", 5, 110, 0, date("2024-01-05"), "exit_signal(middle)"))

	pos := p.Positions["005930"]
	assert.Equal(t, 5.0, pos.Shares)
	assert.Equal(t, 2.0, pos.Units) // floor(4 * 5/10) = 2
}

func TestEquity_FallsBackToEntryPriceWhenQuoteMissing(t *testing.T) {
	p := New(1000)
	require.NoError(t, p.Open("005930", 10, 1, 50, 0, date("2024-01-02"), 45, StopVolatility))
	equity := p.Equity(map[string]float64{})
	assert.Equal(t, 500.0+p.Cash, equity)
}

func TestClassifyStopReason(t *testing.T) {
	assert.Equal(t, "trailing_stop", ClassifyStopReason(120, 100))
	assert.Equal(t, "stop_loss", ClassifyStopReason(90, 100))
}

func TestSortedTickers_Deterministic(t *testing.T) {
	p := New(100000)
	require.NoError(t, p.Open("005930", 1, 1, 10, 0, date("2024-01-02"), 9, StopVolatility))
	require.NoError(t, p.Open("000660", 1, 1, 10, 0, date("2024-01-02"), 9, StopVolatility))
	assert.Equal(t, []string{"000660", "005930"}, p.SortedTickers())
}

// Cash must never go negative: Open rejects any order whose cost exceeds
// the cash on hand, so a sequence of opens and closes can never drive cash
// below zero regardless of order.
func TestCash_NeverGoesNegativeAcrossOpenAndClose(t *testing.T) {
	p := New(1000)
	require.NoError(t, p.Open("005930", 5, 1, 100, 0, date("2024-01-02"), 90, StopVolatility))
	require.GreaterOrEqual(t, p.Cash, 0.0)

	err := p.Open("005930", 100, 10, 100, 0, date("2024-01-03"), 90, StopVolatility)
	assert.Error(t, err)
	assert.GreaterOrEqual(t, p.Cash, 0.0)

	require.NoError(t, p.Close("005930", 5, 90, 0, date("2024-01-04"), "exit_signal(lower)"))
	assert.GreaterOrEqual(t, p.Cash, 0.0)
}

// Equity conservation: closing a position changes cash by exactly the
// trade's proceeds, and equity (valued at the same close price) is
// unchanged by the round trip beyond the realised commission cost.
func TestEquity_ConservedAcrossOpenAndClose(t *testing.T) {
	p := New(100000)
	require.NoError(t, p.Open("005930", 10, 2, 100, 1, date("2024-01-02"), 90, StopVolatility))
	equityAfterOpen := p.Equity(map[string]float64{"005930": 100})
	assert.InDelta(t, 100000.0-1, equityAfterOpen, 1e-9) // cash spent only the commission, rest moved into position value

	require.NoError(t, p.Close("005930", 10, 100, 1, date("2024-01-03"), "exit_signal(lower)"))
	equityAfterClose := p.Equity(map[string]float64{})
	assert.InDelta(t, 100000.0-2, equityAfterClose, 1e-9) // both commissions paid, no price movement
}

// Trades and snapshots are append-only: their counts never decrease and a
// prior entry's value is never mutated by a later operation.
func TestTradesAndSnapshots_AreAppendOnly(t *testing.T) {
	p := New(100000)
	require.NoError(t, p.Open("005930", 10, 2, 100, 0, date("2024-01-02"), 90, StopVolatility))
	p.Snapshot(date("2024-01-02"), map[string]float64{"005930": 100})
	firstTrade := p.Trades[0]
	firstSnapshot := p.Snapshots[0]

	require.NoError(t, p.Close("005930", 10, 110, 0, date("2024-01-03"), "exit_signal(lower)"))
	p.Snapshot(date("2024-01-03"), map[string]float64{})

	require.Len(t, p.Trades, 2)
	require.Len(t, p.Snapshots, 2)
	assert.Equal(t, firstTrade, p.Trades[0])
	assert.Equal(t, firstSnapshot, p.Snapshots[0])
}
