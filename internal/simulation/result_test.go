package simulation

import (
	"testing"
	"time"

	"github.com/hanlyang/backtest/internal/portfolio"
	"github.com/stretchr/testify/assert"
)

func TestBuildResult_SummarizesFromPortfolio(t *testing.T) {
	p := portfolio.New(10_000_000)
	d1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

	require := assert.New(t)
	require.NoError(p.Open("005930", 10, 1, 70_000, 10, d1, 65_000, portfolio.StopVolatility))
	p.Snapshot(d1, map[string]float64{"005930": 70_000})
	require.NoError(p.Close("005930", 10, 75_000, 10, d2, "exit_signal(upper)"))
	p.Snapshot(d2, map[string]float64{})

	result := BuildResult(p, 10_000_000, 120)

	assert.Equal(t, d1, result.StartDate)
	assert.Equal(t, d2, result.EndDate)
	assert.Equal(t, 10_000_000.0, result.InitialCapital)
	assert.Equal(t, 1, result.TotalTrades)
	assert.Equal(t, 1, result.WinningTrades)
	assert.Equal(t, 120, result.ScannedTickers)
	assert.Contains(t, result.Summary(), "2024-01-02")
	assert.Contains(t, result.Summary(), "tickers scanned 120")
}
