package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnv(t *testing.T, key, value string) {
	t.Helper()
	original, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, original)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_UsesDocumentedDefaultsWhenUnset(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10_000_000.0, cfg.InitialCapital)
	assert.Equal(t, 0.01, cfg.RiskPercentage)
	assert.Equal(t, 2.0, cfg.DesiredUnitsPerSignal)
	assert.Equal(t, 80, cfg.SignalStrengthThreshold)
	assert.Equal(t, 4.0, cfg.SingleLimit)
	assert.Equal(t, 0.00015, cfg.CommissionPct)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	withEnv(t, "BACKTEST_INITIAL_CAPITAL", "50000000")
	withEnv(t, "BACKTEST_STRENGTH_THRESHOLD", "70")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50_000_000.0, cfg.InitialCapital)
	assert.Equal(t, 70, cfg.SignalStrengthThreshold)
}

func TestValidate_RejectsNonPositiveCapital(t *testing.T) {
	cfg := &BacktestConfig{InitialCapital: 0, CommissionPct: 0.001, SlippagePct: 0.001}
	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_RejectsNegativeCommissionOrSlippage(t *testing.T) {
	cfg := &BacktestConfig{InitialCapital: 1000, CommissionPct: -0.1, SlippagePct: 0.001}
	assert.Error(t, cfg.Validate())

	cfg2 := &BacktestConfig{InitialCapital: 1000, CommissionPct: 0.001, SlippagePct: -0.1}
	assert.Error(t, cfg2.Validate())
}

func TestValidate_AcceptsZeroCommissionAndSlippage(t *testing.T) {
	cfg := &BacktestConfig{InitialCapital: 1000, CommissionPct: 0, SlippagePct: 0}
	assert.NoError(t, cfg.Validate())
}

func TestToRiskConfig_TruncatesLimitsToInt(t *testing.T) {
	cfg := &BacktestConfig{SingleLimit: 4, CorrelatedLimit: 6, DiversifiedLimit: 10, TotalLimit: 12}
	rc := cfg.ToRiskConfig()
	assert.Equal(t, 4, rc.Limits.Single)
	assert.Equal(t, 12, rc.Limits.Total)
}
