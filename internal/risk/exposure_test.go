package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionRisk(t *testing.T) {
	assert.Equal(t, 2000.0, PositionRisk(100, 50_000, 48_000))
}

func TestCheckExposure_WithinLimits(t *testing.T) {
	cfg := DefaultConfig()
	check := CheckExposure([]float64{10_000}, 5_000, 1_000_000, cfg)
	// portfolio risk = 15000, limit = 1e6*0.02 = 20000 -> within
	// single risk = max(10000,5000)=10000, limit=1e6*0.01=10000 -> within (equal)
	assert.True(t, check.WithinPortfolio)
	assert.True(t, check.WithinSinglePos)
}

func TestCheckExposure_ExceedsPortfolioLimit(t *testing.T) {
	cfg := DefaultConfig()
	check := CheckExposure([]float64{15_000}, 10_000, 1_000_000, cfg)
	assert.False(t, check.WithinPortfolio) // 25000 > 20000
}

func TestCheckExposure_WarningAt90Percent(t *testing.T) {
	cfg := DefaultConfig()
	check := CheckExposure(nil, 18_500, 1_000_000, cfg) // 92.5% of 20000
	assert.True(t, check.PortfolioWarning)
	assert.True(t, check.WithinPortfolio)
}
