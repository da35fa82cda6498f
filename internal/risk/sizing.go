package risk

import "math"

// UnitSize is the turtle volatility unit: account_balance * risk_fraction /
// ATR, rounded to the nearest share (spec.md §4.7).
func UnitSize(accountBalance, riskFraction, atr float64) float64 {
	if atr <= 0 {
		return 0
	}
	return math.Round(accountBalance * riskFraction / atr)
}

// StrengthScale maps a 0-100 signal strength to the position-size multiplier
// of spec.md §4.7: full size at or above threshold, tapering down to zero
// below 50.
func StrengthScale(strength, threshold int) float64 {
	switch {
	case strength >= threshold:
		return 1.0
	case strength >= 70:
		return 0.75
	case strength >= 60:
		return 0.5
	case strength >= 50:
		return 0.25
	default:
		return 0
	}
}

// CapitalCapShares is the maximum shares affordable within maxCapitalRatio
// of the account (spec.md §4.7).
func CapitalCapShares(accountBalance, maxCapitalRatio, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return math.Floor(accountBalance * maxCapitalRatio / price)
}

// SizeResult is the final sizing decision for one signal.
type SizeResult struct {
	UnitSize     float64
	ScaledShares float64
	CapShares    float64
	Shares       float64
	DesiredUnits float64
}

// Size computes the full spec.md §4.7 sizing pipeline: the turtle unit,
// strength-scaled shares, clipped by the capital cap, and the resulting
// unit count (at least one unit if any shares survive).
func Size(accountBalance, price, atr float64, strength int, cfg Config) SizeResult {
	unit := UnitSize(accountBalance, cfg.RiskPercentage, atr)
	if unit <= 0 {
		return SizeResult{}
	}

	scale := StrengthScale(strength, cfg.SignalStrengthThreshold)
	baseShares := unit * cfg.DesiredUnitsPerSignal
	scaledShares := baseShares * scale

	capShares := CapitalCapShares(accountBalance, cfg.MaxCapitalRatio, price)

	shares := scaledShares
	if capShares < shares {
		shares = capShares
	}
	if shares <= 0 {
		return SizeResult{UnitSize: unit, ScaledShares: scaledShares, CapShares: capShares}
	}

	units := shares / unit
	if units < 1 {
		units = 1
	}

	return SizeResult{
		UnitSize:     unit,
		ScaledShares: scaledShares,
		CapShares:    capShares,
		Shares:       shares,
		DesiredUnits: units,
	}
}
