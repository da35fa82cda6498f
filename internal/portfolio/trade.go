package portfolio

import "time"

// TradeSide is buy or sell.
type TradeSide int

const (
	Buy TradeSide = iota
	Sell
)

func (s TradeSide) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// Trade is one append-only ledger entry. Reason is a short tag: every buy
// is recorded as "entry" (the kind of entry is not recorded); sells carry
// tags such as "exit_signal(lower)", "stop_loss", or "trailing_stop" (the
// latter two are distinguished after the fact: a stop-loss exit closed at a
// positive PnL is reclassified to trailing_stop, since it locked in a gain
// rather than limiting a loss).
type Trade struct {
	ID         string
	Ticker     string
	Side       TradeSide
	Shares     float64
	Units      float64
	FillPrice  float64
	Commission float64
	Date       time.Time
	Reason     string
	PnL        float64 // zero for buys
}

// ClassifyStopReason reclassifies a stop-triggered exit: a long stop filled
// above the position's average entry price locked in a gain and is recorded
// as a trailing stop rather than a loss-limiting stop loss.
func ClassifyStopReason(fillPrice, avgEntryPrice float64) string {
	if fillPrice > avgEntryPrice {
		return "trailing_stop"
	}
	return "stop_loss"
}
