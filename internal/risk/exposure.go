package risk

import "math"

// PositionRisk is the dollar amount at risk if a position's stop is hit:
// shares * |entry - stop| (spec.md §4.10).
func PositionRisk(shares, entry, stop float64) float64 {
	return shares * math.Abs(entry-stop)
}

// ExposureCheck is the outcome of the portfolio-wide risk-limit check.
type ExposureCheck struct {
	PortfolioRisk     float64
	MaxPositionRisk   float64
	WithinPortfolio   bool
	WithinSinglePos   bool
	PortfolioWarning  bool
	SingleRiskWarning bool
}

// CheckExposure sums existing position risks plus a candidate new position
// and tests both the aggregate and single-position risk ceilings of
// spec.md §4.10, flagging a warning at 90% of either limit.
func CheckExposure(existingRisks []float64, newPositionRisk, account float64, cfg Config) ExposureCheck {
	portfolioRisk := newPositionRisk
	for _, r := range existingRisks {
		portfolioRisk += r
	}

	maxPositionRisk := newPositionRisk
	for _, r := range existingRisks {
		if r > maxPositionRisk {
			maxPositionRisk = r
		}
	}

	portfolioLimit := account * cfg.MaxRiskPercentage
	singleLimit := account * cfg.MaxSingleRisk

	return ExposureCheck{
		PortfolioRisk:     portfolioRisk,
		MaxPositionRisk:   maxPositionRisk,
		WithinPortfolio:   portfolioRisk <= portfolioLimit,
		WithinSinglePos:   maxPositionRisk <= singleLimit,
		PortfolioWarning:  portfolioRisk >= 0.9*portfolioLimit,
		SingleRiskWarning: maxPositionRisk >= 0.9*singleLimit,
	}
}
