// Package analytics computes the return, risk, and trade-quality metrics
// of spec.md §4.15 from a portfolio's snapshot and trade ledgers.
package analytics

import (
	"math"
	"time"

	"github.com/hanlyang/backtest/internal/portfolio"
	"gonum.org/v1/gonum/stat"
)

// Returns bundles the total-return and CAGR figures.
type Returns struct {
	TotalReturn float64 // fraction, not percent
	CAGR        float64
}

// ComputeReturns derives total return and CAGR from the first and last
// equity snapshots (spec.md §4.15).
func ComputeReturns(snapshots []portfolio.Snapshot) Returns {
	if len(snapshots) < 2 {
		return Returns{}
	}
	first := snapshots[0]
	last := snapshots[len(snapshots)-1]
	if first.Equity <= 0 {
		return Returns{}
	}

	totalReturn := (last.Equity - first.Equity) / first.Equity
	days := last.Date.Sub(first.Date).Hours() / 24
	if days <= 0 {
		return Returns{TotalReturn: totalReturn}
	}

	cagr := math.Pow(last.Equity/first.Equity, 252/days) - 1
	return Returns{TotalReturn: totalReturn, CAGR: cagr}
}

// DailyLogReturns computes log(equity[t]/equity[t-1]) for consecutive
// snapshots, skipping non-positive equity.
func DailyLogReturns(snapshots []portfolio.Snapshot) []float64 {
	if len(snapshots) < 2 {
		return nil
	}
	out := make([]float64, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1].Equity, snapshots[i].Equity
		if prev <= 0 || cur <= 0 {
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// Sharpe computes the annualized Sharpe ratio of daily log returns against
// a daily risk-free rate (rf/252), zero when the sample has no spread
// (spec.md §4.15).
func Sharpe(returns []float64, annualRiskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := stat.Mean(returns, nil)
	std := stat.StdDev(returns, nil)
	if std == 0 {
		return 0
	}
	dailyRF := annualRiskFreeRate / 252
	return (mean - dailyRF) / std * math.Sqrt(252)
}

// DrawdownResult is the maximum-drawdown summary with its peak/trough/
// recovery dates.
type DrawdownResult struct {
	MaxDrawdown  float64 // negative fraction
	PeakDate     time.Time
	TroughDate   time.Time
	RecoveryDate *time.Time // nil if never recovered
}

// MaxDrawdown runs a cumulative-maximum sweep over the equity curve and
// reports the deepest drawdown plus its peak/trough/recovery dates
// (spec.md §4.15).
func MaxDrawdown(snapshots []portfolio.Snapshot) DrawdownResult {
	if len(snapshots) == 0 {
		return DrawdownResult{}
	}

	cummax := snapshots[0].Equity
	peakDate := snapshots[0].Date

	result := DrawdownResult{PeakDate: peakDate, TroughDate: peakDate}
	minDD := 0.0
	peakValueAtTrough := cummax

	for _, s := range snapshots {
		if s.Equity > cummax {
			cummax = s.Equity
			peakDate = s.Date
		}
		if cummax <= 0 {
			continue
		}
		dd := (s.Equity - cummax) / cummax
		if dd < minDD {
			minDD = dd
			result.TroughDate = s.Date
			result.PeakDate = peakDate
			peakValueAtTrough = cummax
		}
	}
	result.MaxDrawdown = minDD

	if minDD < 0 {
		for _, s := range snapshots {
			if s.Date.After(result.TroughDate) && s.Equity >= peakValueAtTrough {
				d := s.Date
				result.RecoveryDate = &d
				break
			}
		}
	}
	return result
}

// TradeStats bundles win-rate and P&L quality metrics from closed trades.
type TradeStats struct {
	WinCount     int
	LossCount    int
	WinRate      float64
	AvgWin       float64
	AvgLoss      float64
	ProfitFactor float64 // +Inf if no losses, 0 if no wins
}

// ComputeTradeStats scans every sell trade's PnL (spec.md §4.15).
func ComputeTradeStats(trades []portfolio.Trade) TradeStats {
	var wins, losses []float64
	for _, t := range trades {
		if t.Side != portfolio.Sell {
			continue
		}
		if t.PnL > 0 {
			wins = append(wins, t.PnL)
		} else if t.PnL < 0 {
			losses = append(losses, t.PnL)
		}
	}

	stats := TradeStats{WinCount: len(wins), LossCount: len(losses)}
	total := len(wins) + len(losses)
	if total > 0 {
		stats.WinRate = float64(len(wins)) / float64(total)
	}

	sumWins, sumLosses := sum(wins), sum(losses)
	if len(wins) > 0 {
		stats.AvgWin = sumWins / float64(len(wins))
	}
	if len(losses) > 0 {
		stats.AvgLoss = sumLosses / float64(len(losses))
	}

	switch {
	case sumLosses == 0 && sumWins > 0:
		stats.ProfitFactor = math.Inf(1)
	case sumWins == 0:
		stats.ProfitFactor = 0
	default:
		stats.ProfitFactor = sumWins / math.Abs(sumLosses)
	}
	return stats
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}
