// Package signal generates and filters the buy/sell entry and exit signals
// that drive the simulation driver: entry signals from stage + MACD
// alignment (spec.md §4.3), multi-level exit signals from the three-MACD
// hierarchy (§4.4), a 0-100 signal-strength score (§4.5), and a composable
// filter chain (§4.6).
package signal

import "github.com/hanlyang/backtest/internal/indicators"

// EntryKind names the one entry signal a bar may emit.
type EntryKind int

const (
	NoEntry EntryKind = iota
	NormalBuy
	EarlyBuy
	NormalSell
	EarlySell
)

func (k EntryKind) String() string {
	switch k {
	case NormalBuy:
		return "normal_buy"
	case EarlyBuy:
		return "early_buy"
	case NormalSell:
		return "normal_sell"
	case EarlySell:
		return "early_sell"
	default:
		return "none"
	}
}

// Value returns the -2..2 Entry_Signal integer spec.md §4.3 defines.
func (k EntryKind) Value() int {
	switch k {
	case NormalBuy:
		return 2
	case EarlyBuy:
		return 1
	case NormalSell:
		return -2
	case EarlySell:
		return -1
	default:
		return 0
	}
}

// EntryResult carries the emitted signal plus whether the stage label on
// this bar came from a pure MA-arrangement read or from a MACD-cross
// override — the latter is what distinguishes a "contrarian" entry
// (SPEC_FULL.md §5: buying against the raw arrangement label).
type EntryResult struct {
	Kind       EntryKind
	Contrarian bool
}

// GenerateEntry evaluates one bar's (stage, MACD direction triple) against
// spec.md §4.3's rules. enableEarly gates early_buy/early_sell; rawArrangement
// is the bar's un-overridden MA-arrangement label, used only to detect a
// contrarian entry.
func GenerateEntry(stageValue, rawArrangement int, dirUpper, dirMiddle, dirLower indicators.Direction, enableEarly bool) EntryResult {
	allUp := dirUpper == indicators.DirectionUp && dirMiddle == indicators.DirectionUp && dirLower == indicators.DirectionUp
	allDown := dirUpper == indicators.DirectionDown && dirMiddle == indicators.DirectionDown && dirLower == indicators.DirectionDown

	var kind EntryKind
	switch {
	case stageValue == 6 && allUp:
		kind = NormalBuy
	case enableEarly && stageValue == 5 && allUp:
		kind = EarlyBuy
	case stageValue == 3 && allDown:
		kind = NormalSell
	case enableEarly && stageValue == 2 && allDown:
		kind = EarlySell
	default:
		kind = NoEntry
	}

	contrarian := kind != NoEntry && rawArrangement != 0 && rawArrangement != stageValue
	return EntryResult{Kind: kind, Contrarian: contrarian}
}
