// Package config loads the backtester's environment-variable driven
// configuration, following the same Load/Validate pattern the rest of the
// retrieval pack uses for its own application config.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// BacktestConfig bundles every knob spec.md §6 names plus the run-level
// settings needed to drive a backtest end to end.
type BacktestConfig struct {
	DataDir      string
	CachePath    string
	DatabasePath string
	LogLevel     string
	ServerAddr   string

	InitialCapital float64
	LoaderWorkers  int

	RiskPercentage          float64
	DesiredUnitsPerSignal   float64
	SignalStrengthThreshold int
	ATRMultiplier           float64

	SingleLimit      float64
	CorrelatedLimit  float64
	DiversifiedLimit float64
	TotalLimit       float64

	MaxRiskPercentage float64
	MaxSingleRisk     float64
	MaxCapitalRatio   float64

	SlippagePct   float64
	CommissionPct float64
}

// Load reads configuration from the environment (and an optional .env file
// if present), applies spec.md §6's documented defaults for anything unset,
// and validates the result.
func Load() (*BacktestConfig, error) {
	_ = godotenv.Load()

	dataDir := getEnv("BACKTEST_DATA_DIR", "./data")
	cfg := &BacktestConfig{
		DataDir:      dataDir,
		CachePath:    getEnv("BACKTEST_CACHE_PATH", dataDir+"/cache.db"),
		DatabasePath: getEnv("BACKTEST_DATABASE_PATH", dataDir+"/backtest.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ServerAddr:   getEnv("BACKTEST_SERVER_ADDR", ":8090"),

		InitialCapital: getEnvAsFloat("BACKTEST_INITIAL_CAPITAL", 10_000_000),
		LoaderWorkers:  getEnvAsInt("BACKTEST_LOADER_WORKERS", 10),

		RiskPercentage:          getEnvAsFloat("BACKTEST_RISK_PERCENTAGE", 0.01),
		DesiredUnitsPerSignal:   getEnvAsFloat("BACKTEST_DESIRED_UNITS", 2),
		SignalStrengthThreshold: getEnvAsInt("BACKTEST_STRENGTH_THRESHOLD", 80),
		ATRMultiplier:           getEnvAsFloat("BACKTEST_ATR_MULTIPLIER", 2.0),

		SingleLimit:      getEnvAsFloat("BACKTEST_LIMIT_SINGLE", 4),
		CorrelatedLimit:  getEnvAsFloat("BACKTEST_LIMIT_CORRELATED", 6),
		DiversifiedLimit: getEnvAsFloat("BACKTEST_LIMIT_DIVERSIFIED", 10),
		TotalLimit:       getEnvAsFloat("BACKTEST_LIMIT_TOTAL", 12),

		MaxRiskPercentage: getEnvAsFloat("BACKTEST_MAX_RISK_PERCENTAGE", 0.02),
		MaxSingleRisk:     getEnvAsFloat("BACKTEST_MAX_SINGLE_RISK", 0.01),
		MaxCapitalRatio:   getEnvAsFloat("BACKTEST_MAX_CAPITAL_RATIO", 0.25),

		SlippagePct:   getEnvAsFloat("BACKTEST_SLIPPAGE_PCT", 0.001),
		CommissionPct: getEnvAsFloat("BACKTEST_COMMISSION_PCT", 0.00015),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the two fatal conditions spec.md §7 names: a backtest
// must not start with non-positive capital or negative commission/slippage.
func (c *BacktestConfig) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("config: initial capital must be positive, got %v", c.InitialCapital)
	}
	if c.CommissionPct < 0 || c.SlippagePct < 0 {
		return fmt.Errorf("config: commission and slippage must be non-negative, got commission=%v slippage=%v", c.CommissionPct, c.SlippagePct)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
