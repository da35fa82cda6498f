package risk

import (
	"fmt"

	"github.com/hanlyang/backtest/internal/portfolio"
	"github.com/rs/zerolog"
)

// Action is the signal kind submitted to the gate.
type Action int

const (
	ActionEntry Action = iota
	ActionExit
)

// Signal is a candidate trade the gate evaluates.
type Signal struct {
	Ticker       string
	Action       Action
	Strength     int
	CurrentPrice float64
	ATR          float64
	LongEMA      float64
	LongEMAValid bool // whether the trend EMA is available for this ticker/date
}

// Environment is everything the gate needs about current portfolio state.
type Environment struct {
	Balance       float64
	HeldUnits     map[string]float64 // ticker -> current units
	ExistingRisks []float64          // dollar risk of every other open position
}

// Decision is the gate's approve/reject outcome (spec.md §4.11).
type Decision struct {
	Approved   bool
	Reason     string
	Shares     float64
	Units      float64
	StopPrice  float64
	StopKind   portfolio.StopKind
	RiskAmount float64
	RiskPct    float64
	Warnings   []string
}

// Gate evaluates signals against a Config and logs its decisions.
type Gate struct {
	cfg Config
	log zerolog.Logger
}

// NewGate builds a Gate bound to cfg, logging under the "risk_gate" component.
func NewGate(cfg Config, log zerolog.Logger) *Gate {
	return &Gate{cfg: cfg, log: log.With().Str("component", "risk_gate").Logger()}
}

// Evaluate runs the full spec.md §4.11 pipeline for one signal.
func (g *Gate) Evaluate(sig Signal, env Environment) Decision {
	if sig.Action == ActionExit {
		return Decision{Approved: true}
	}

	size := Size(env.Balance, sig.CurrentPrice, sig.ATR, sig.Strength, g.cfg)
	if size.DesiredUnits == 0 || size.Shares <= 0 {
		g.log.Debug().Str("ticker", sig.Ticker).Msg("signal too weak, desired units is zero")
		return Decision{Approved: false, Reason: "signal_too_weak"}
	}

	allowedUnits, tier := AvailableUnits(sig.Ticker, size.DesiredUnits, env.HeldUnits, g.cfg)
	if allowedUnits <= 0 {
		g.log.Debug().Str("ticker", sig.Ticker).Str("tier", tier).Msg("rejected by portfolio limit")
		return Decision{Approved: false, Reason: fmt.Sprintf("portfolio_limit: %s", tier)}
	}

	var warnings []string
	units := size.DesiredUnits
	shares := size.Shares
	if allowedUnits < units {
		ratio := allowedUnits / units
		units = allowedUnits
		shares = shares * ratio
		warnings = append(warnings, fmt.Sprintf("clamped to %s tier limit", tier))
	}

	volStop := VolatilityStop(sig.CurrentPrice, sig.ATR, g.cfg.ATRMultiplier)
	trendValid := sig.LongEMAValid && TrendStopValid(sig.CurrentPrice, sig.LongEMA, true)
	stopPrice, stopKind := SelectStop(volStop, sig.LongEMA, trendValid, true)

	positionRisk := PositionRisk(shares, sig.CurrentPrice, stopPrice)
	exposure := CheckExposure(env.ExistingRisks, positionRisk, env.Balance, g.cfg)
	if !exposure.WithinPortfolio || !exposure.WithinSinglePos {
		g.log.Debug().Str("ticker", sig.Ticker).Msg("rejected by risk limit")
		return Decision{Approved: false, Reason: "risk_limit_exceeded"}
	}
	if exposure.PortfolioWarning {
		warnings = append(warnings, "portfolio risk near limit")
	}
	if exposure.SingleRiskWarning {
		warnings = append(warnings, "position risk near limit")
	}

	riskPct := 0.0
	if env.Balance > 0 {
		riskPct = positionRisk / env.Balance
	}

	return Decision{
		Approved:   true,
		Shares:     shares,
		Units:      units,
		StopPrice:  stopPrice,
		StopKind:   stopKind,
		RiskAmount: positionRisk,
		RiskPct:    riskPct,
		Warnings:   warnings,
	}
}
