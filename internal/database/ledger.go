package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hanlyang/backtest/internal/analytics"
	"github.com/hanlyang/backtest/internal/portfolio"
)

// LedgerRepository persists a completed run's trade and snapshot ledgers.
// Writes are append-only: a run's rows, including the summary fields on
// its runs row, are inserted once and never updated.
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository wraps db for ledger persistence.
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// SaveRun inserts the run header and every trade/snapshot from p in a single
// transaction, returning the generated run ID.
func (r *LedgerRepository) SaveRun(ctx context.Context, p *portfolio.Portfolio, initialCapital float64) (string, error) {
	runID := uuid.NewString()

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("database: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	finalCapital := initialCapital
	if n := len(p.Snapshots); n > 0 {
		finalCapital = p.Snapshots[n-1].Equity
	}
	returns := analytics.ComputeReturns(p.Snapshots)
	drawdown := analytics.MaxDrawdown(p.Snapshots)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, initial_capital, final_capital, total_return, max_drawdown)
		 VALUES (?, CURRENT_TIMESTAMP, ?, ?, ?, ?)`,
		runID, initialCapital, finalCapital, returns.TotalReturn, drawdown.MaxDrawdown)
	if err != nil {
		return "", fmt.Errorf("database: insert run: %w", err)
	}

	for _, t := range p.Trades {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO trades (id, run_id, ticker, side, shares, units, fill_price, commission, date, reason, pnl)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, runID, t.Ticker, t.Side.String(), t.Shares, t.Units, t.FillPrice, t.Commission, t.Date, t.Reason, t.PnL)
		if err != nil {
			return "", fmt.Errorf("database: insert trade %s: %w", t.ID, err)
		}
	}

	for _, s := range p.Snapshots {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshots (run_id, date, cash, equity) VALUES (?, ?, ?, ?)`,
			runID, s.Date, s.Cash, s.Equity)
		if err != nil {
			return "", fmt.Errorf("database: insert snapshot %s: %w", s.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("database: commit: %w", err)
	}
	return runID, nil
}

// TradeCount returns the number of trades recorded for runID, used by tests
// and health checks to confirm a run was persisted.
func (r *LedgerRepository) TradeCount(ctx context.Context, runID string) (int, error) {
	var count int
	err := r.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("database: count trades: %w", err)
	}
	return count, nil
}
