// Command backtest runs the six-stage moving-average backtesting engine end
// to end: load configuration, fetch bars for a ticker universe, build
// indicator frames, run the day-by-day simulation, and persist the ledger.
//
// The market-data and ticker-list providers are out of scope (spec.md §1):
// this entrypoint wires against the loader.BarProvider /
// simulation.TickerListProvider interfaces and expects a real
// implementation to be supplied by the embedding application.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hanlyang/backtest/internal/cache"
	"github.com/hanlyang/backtest/internal/config"
	"github.com/hanlyang/backtest/internal/database"
	"github.com/hanlyang/backtest/internal/loader"
	"github.com/hanlyang/backtest/internal/reliability"
	"github.com/hanlyang/backtest/internal/server"
	"github.com/hanlyang/backtest/internal/simulation"
	"github.com/hanlyang/backtest/pkg/logger"
)

// memResultStore is an in-process server.ResultStore holding the most recent
// run. A real deployment with many runs would back this with the ledger
// database instead; main here has exactly one run to serve.
type memResultStore struct {
	mu     sync.RWMutex
	runID  string
	result simulation.BacktestResult
}

func (s *memResultStore) set(runID string, result simulation.BacktestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID, s.result = runID, result
}

func (s *memResultStore) Result(runID string) (simulation.BacktestResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if runID != s.runID {
		return simulation.BacktestResult{}, false
	}
	return s.result, true
}

func main() {
	log := logger.New(logger.Config{Level: "info", Pretty: true})
	logger.SetGlobalLogger(log)

	log.Info().Msg("starting backtest")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ledgerDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath,
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open ledger database")
	}
	defer ledgerDB.Close()

	ctx := context.Background()
	if err := ledgerDB.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate ledger database")
	}

	frameCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Warn().Err(err).Msg("indicator-frame cache unavailable, proceeding without it")
	} else {
		defer frameCache.Close()
	}

	provider, tickers, err := resolveUniverse(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("no tickers produced any data at all")
	}

	sizer := reliability.NewPoolSizer(log)
	loaderCfg := cfg.ToLoaderConfig()
	loaderCfg.Concurrency = sizer.RecommendedConcurrency(loaderCfg.Concurrency, 64)

	l := loader.New(provider, loaderCfg, log)
	end := time.Now()
	start := end.AddDate(-3, 0, 0)
	frames := l.Load(ctx, tickers, start, end)
	if len(frames) == 0 {
		log.Fatal().Msg("no tickers produced any data at all")
	}

	driver := simulation.New(cfg.ToSimulationConfig(), log)
	portfolioResult := driver.Run(frames, cfg.InitialCapital)

	result := simulation.BuildResult(portfolioResult, cfg.InitialCapital, len(tickers))
	log.Info().Msg(result.Summary())

	repo := database.NewLedgerRepository(ledgerDB)
	runID, err := repo.SaveRun(ctx, portfolioResult, cfg.InitialCapital)
	if err != nil {
		log.Error().Err(err).Msg("failed to persist run ledger")
		os.Exit(1)
	}
	log.Info().Str("run_id", runID).Msg("run persisted")

	store := &memResultStore{}
	store.set(runID, result)
	srv := server.New(store, log)
	httpServer := &http.Server{Addr: cfg.ServerAddr, Handler: srv}
	log.Info().Str("addr", cfg.ServerAddr).Msg("serving run results")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("result server stopped")
	}
}

// resolveUniverse is a placeholder wiring point: a real deployment supplies
// a loader.BarProvider and the resolved ticker list (e.g. from a
// simulation.TickerListProvider backed by a market-data vendor). Without one
// configured, the run has nothing to load and fails the documented "no
// tickers produced any data at all" fatal condition (spec.md §7).
func resolveUniverse(ctx context.Context, cfg *config.BacktestConfig) (loader.BarProvider, []string, error) {
	return nil, nil, errNoProviderConfigured
}

var errNoProviderConfigured = errors.New("no market-data provider configured")
