package config

import (
	"github.com/hanlyang/backtest/internal/execution"
	"github.com/hanlyang/backtest/internal/indicators"
	"github.com/hanlyang/backtest/internal/loader"
	"github.com/hanlyang/backtest/internal/risk"
	"github.com/hanlyang/backtest/internal/simulation"
)

// ToRiskConfig projects the risk-block fields onto internal/risk.Config.
func (c *BacktestConfig) ToRiskConfig() risk.Config {
	return risk.Config{
		RiskPercentage:          c.RiskPercentage,
		DesiredUnitsPerSignal:   c.DesiredUnitsPerSignal,
		SignalStrengthThreshold: c.SignalStrengthThreshold,
		ATRMultiplier:           c.ATRMultiplier,
		Limits: risk.Limits{
			Single:      int(c.SingleLimit),
			Correlated:  int(c.CorrelatedLimit),
			Diversified: int(c.DiversifiedLimit),
			Total:       int(c.TotalLimit),
		},
		CorrelationGroups: map[string][]string{},
		MaxRiskPercentage: c.MaxRiskPercentage,
		MaxSingleRisk:     c.MaxSingleRisk,
		MaxCapitalRatio:   c.MaxCapitalRatio,
	}
}

// ToExecutionConfig projects the commission/slippage fields onto
// internal/execution.Config.
func (c *BacktestConfig) ToExecutionConfig() execution.Config {
	return execution.Config{
		SlippagePct:   c.SlippagePct,
		CommissionPct: c.CommissionPct,
	}
}

// ToLoaderConfig builds an internal/loader.Config bounded by LoaderWorkers.
func (c *BacktestConfig) ToLoaderConfig() loader.Config {
	return loader.Config{Indicators: indicators.DefaultConfig(), Concurrency: c.LoaderWorkers}
}

// ToSimulationConfig assembles the simulation driver's Config from the
// risk/execution projections plus the indicator and filter defaults.
func (c *BacktestConfig) ToSimulationConfig() simulation.Config {
	cfg := simulation.DefaultConfig()
	cfg.Risk = c.ToRiskConfig()
	cfg.Execution = c.ToExecutionConfig()
	return cfg
}
