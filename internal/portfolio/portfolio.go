package portfolio

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Snapshot is one append-only equity-curve record.
type Snapshot struct {
	Date   time.Time
	Cash   float64
	Equity float64
}

// Portfolio is the single mutable aggregate the simulation driver owns
// exclusively: cash, open positions, and the append-only trade/snapshot
// ledgers (spec.md §4.13, §5 "owned exclusively by the driver thread").
type Portfolio struct {
	Cash      float64
	Positions map[string]*Position
	Closed    []Position
	Trades    []Trade
	Snapshots []Snapshot
}

// New starts a portfolio with startingCash and no positions.
func New(startingCash float64) *Portfolio {
	return &Portfolio{
		Cash:      startingCash,
		Positions: make(map[string]*Position),
	}
}

// UnitsFor returns the current unit count held for ticker (0 if none).
func (p *Portfolio) UnitsFor(ticker string) float64 {
	if pos, ok := p.Positions[ticker]; ok {
		return pos.Units
	}
	return 0
}

// TotalUnits sums units across every open position.
func (p *Portfolio) TotalUnits() float64 {
	total := 0.0
	for _, pos := range p.Positions {
		total += pos.Units
	}
	return total
}

// Open adds a new position or merges into an existing one. cost must not
// exceed available cash (spec.md §4.13 "require cost <= cash").
func (p *Portfolio) Open(ticker string, shares, units, fillPrice, commission float64, date time.Time, stopPrice float64, stopKind StopKind) error {
	cost := fillPrice*shares + commission
	if cost > p.Cash {
		return fmt.Errorf("portfolio: %s: cost %.4f exceeds cash %.4f", ticker, cost, p.Cash)
	}

	pos, exists := p.Positions[ticker]
	if !exists {
		pos = &Position{Ticker: ticker, StopPrice: stopPrice, StopKind: stopKind}
		p.Positions[ticker] = pos
	}
	pos.Add(shares, units, fillPrice, date)

	p.Cash -= cost
	p.Trades = append(p.Trades, Trade{
		ID: uuid.NewString(), Ticker: ticker, Side: Buy,
		Shares: shares, Units: units, FillPrice: fillPrice,
		Commission: commission, Date: date, Reason: "entry",
	})
	return nil
}

// Close sells sharesToClose of ticker's position (partial or full) and
// records the trade, crediting cash by proceeds minus commission.
func (p *Portfolio) Close(ticker string, sharesToClose, fillPrice, commission float64, date time.Time, reason string) error {
	pos, ok := p.Positions[ticker]
	if !ok {
		return fmt.Errorf("portfolio: %s: no open position", ticker)
	}
	if sharesToClose > pos.Shares {
		sharesToClose = pos.Shares
	}

	pnl := (fillPrice - pos.AvgEntryPrice) * sharesToClose
	proceeds := fillPrice*sharesToClose - commission
	p.Cash += proceeds

	unitsClosed := pos.Units
	pos.ReduceBy(sharesToClose)
	unitsClosed -= pos.Units

	p.Trades = append(p.Trades, Trade{
		ID: uuid.NewString(), Ticker: ticker, Side: Sell,
		Shares: sharesToClose, Units: unitsClosed, FillPrice: fillPrice,
		Commission: commission, Date: date, Reason: reason, PnL: pnl,
	})

	if pos.Shares <= 1e-9 {
		p.Closed = append(p.Closed, *pos)
		delete(p.Positions, ticker)
	}
	return nil
}

// Equity values cash plus every open position at the supplied price map,
// falling back to each position's entry price when a ticker has no quote
// for the date (spec.md §4.13).
func (p *Portfolio) Equity(prices map[string]float64) float64 {
	equity := p.Cash
	for ticker, pos := range p.Positions {
		price, ok := prices[ticker]
		if !ok || price <= 0 {
			price = pos.AvgEntryPrice
		}
		equity += pos.Value(price)
	}
	return equity
}

// Snapshot records the current cash/equity as an append-only ledger entry.
func (p *Portfolio) Snapshot(date time.Time, prices map[string]float64) {
	p.Snapshots = append(p.Snapshots, Snapshot{
		Date: date, Cash: p.Cash, Equity: p.Equity(prices),
	})
}

// SortedTickers returns the currently held tickers in deterministic
// (lexicographic) order, per spec.md §4.14's tie-breaking rule.
func (p *Portfolio) SortedTickers() []string {
	tickers := make([]string, 0, len(p.Positions))
	for t := range p.Positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
