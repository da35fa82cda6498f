// Package loader fetches per-ticker bars and builds their indicator frames
// concurrently, bounded by a worker pool, before the simulation begins
// (spec.md §5). Completion order never affects the result: each ticker's
// frame is independent and is written into its own map slot.
package loader

import (
	"context"
	"sort"
	"time"

	"github.com/hanlyang/backtest/internal/domain"
	"github.com/hanlyang/backtest/internal/indicators"
	"github.com/hanlyang/backtest/internal/stage"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the default bound on simultaneous loaders.
const DefaultConcurrency = 10

// BarProvider fetches the raw daily bars for a single ticker over [start,end].
// Implementations talk to whatever backs the market data (a vendor API, a
// local cache, a database) — the loader only depends on this interface.
type BarProvider interface {
	LoadBars(ctx context.Context, ticker string, start, end time.Time) ([]domain.Bar, error)
}

// Config bundles the loader's tunables.
type Config struct {
	Indicators  indicators.Config
	Concurrency int // bounded worker count, default DefaultConcurrency
}

// DefaultConfig returns spec.md §5/§6's documented defaults.
func DefaultConfig() Config {
	return Config{Indicators: indicators.DefaultConfig(), Concurrency: DefaultConcurrency}
}

// Result is one ticker's outcome: either a built frame or the error that
// caused it to be dropped from the universe.
type Result struct {
	Ticker string
	Frame  *indicators.Frame
	Err    error
}

// Loader loads and builds indicator frames for a universe of tickers.
type Loader struct {
	provider BarProvider
	cfg      Config
	log      zerolog.Logger
}

// New builds a Loader bound to provider and cfg, logging under the "loader"
// component.
func New(provider BarProvider, cfg Config, log zerolog.Logger) *Loader {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Loader{provider: provider, cfg: cfg, log: log.With().Str("component", "loader").Logger()}
}

// Load fetches bars and builds indicator frames for every ticker in the
// universe, bounded by cfg.Concurrency concurrent loaders. A failure on one
// ticker — a provider error, empty series, or malformed bars — is logged as
// a warning and that ticker is dropped from the result map; it never aborts
// the run for the rest of the universe (spec.md §5).
func (l *Loader) Load(ctx context.Context, tickers []string, start, end time.Time) map[string]*indicators.Frame {
	results := make([]Result, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Concurrency)

	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			results[i] = l.loadOne(gctx, ticker, start, end)
			return nil // per-ticker errors are carried in Result, never propagated
		})
	}
	_ = g.Wait() // no goroutine returns an error; Wait only blocks for completion

	frames := make(map[string]*indicators.Frame, len(tickers))
	for _, r := range results {
		if r.Ticker == "" {
			continue
		}
		if r.Err != nil {
			l.log.Warn().Err(r.Err).Str("ticker", r.Ticker).Msg("dropping ticker from universe")
			continue
		}
		frames[r.Ticker] = r.Frame
	}
	return frames
}

func (l *Loader) loadOne(ctx context.Context, ticker string, start, end time.Time) Result {
	bars, err := l.provider.LoadBars(ctx, ticker, start, end)
	if err != nil {
		return Result{Ticker: ticker, Err: err}
	}

	series, err := domain.NewBarSeries(ticker, bars)
	if err != nil {
		return Result{Ticker: ticker, Err: err}
	}

	frame, err := indicators.BuildFrame(series, l.cfg.Indicators)
	if err != nil {
		return Result{Ticker: ticker, Err: err}
	}
	stage.Apply(frame)

	return Result{Ticker: ticker, Frame: frame}
}

// SortedTickers returns frames' keys in deterministic lexicographic order,
// matching the iteration order the simulation driver uses.
func SortedTickers(frames map[string]*indicators.Frame) []string {
	out := make([]string, 0, len(frames))
	for t := range frames {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
