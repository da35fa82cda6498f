// Package simulation runs the strictly sequential, single-threaded day-by-
// day backtest loop described in spec.md §4.14: stops, then exits, then
// entries, in deterministic ticker order, against a pre-loaded, read-only
// map of per-ticker indicator frames.
package simulation

import (
	"sort"
	"time"

	"github.com/hanlyang/backtest/internal/execution"
	"github.com/hanlyang/backtest/internal/indicators"
	"github.com/hanlyang/backtest/internal/portfolio"
	"github.com/hanlyang/backtest/internal/risk"
	"github.com/hanlyang/backtest/internal/signal"
	"github.com/hanlyang/backtest/internal/stage"
	"github.com/rs/zerolog"
)

// Config bundles every sub-configuration the day loop needs.
type Config struct {
	Indicators         indicators.Config
	Risk               risk.Config
	Execution          execution.Config
	Filter             signal.FilterConfig
	ExitMerge          signal.MergeStrategy
	EnableEarlySignals bool
}

// DefaultConfig returns the documented defaults of spec.md §6.
func DefaultConfig() Config {
	return Config{
		Indicators: indicators.DefaultConfig(),
		Risk:       risk.DefaultConfig(),
		Execution:  execution.DefaultConfig(),
		Filter:     signal.DefaultFilterConfig(),
		ExitMerge:  signal.MergeSequential,
	}
}

// Driver owns the per-day loop; it holds no mutable state of its own. Each
// Run creates its own portfolio (spec.md §5: "owned exclusively by the
// driver thread").
type Driver struct {
	cfg Config
	log zerolog.Logger
}

// New builds a Driver bound to cfg, logging under the "simulation" component.
func New(cfg Config, log zerolog.Logger) *Driver {
	return &Driver{cfg: cfg, log: log.With().Str("component", "simulation").Logger()}
}

// CommonDates returns the sorted union of every frame's bar dates
// (spec.md §4.14).
func CommonDates(frames map[string]*indicators.Frame) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, f := range frames {
		for _, b := range f.Bars.Bars {
			seen[b.Date] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// sortedTickers returns frames' keys in deterministic lexicographic order.
func sortedTickers(frames map[string]*indicators.Frame) []string {
	tickers := make([]string, 0, len(frames))
	for t := range frames {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Run executes the full day loop over frames and returns the resulting
// portfolio, whose Trades and Snapshots are the append-only ledgers.
func (d *Driver) Run(frames map[string]*indicators.Frame, startingCash float64) *portfolio.Portfolio {
	p := portfolio.New(startingCash)
	dates := CommonDates(frames)
	tickers := sortedTickers(frames)

	for _, date := range dates {
		prices := d.pricesForDate(frames, date)

		d.updateExtremesAndTrails(p, frames, date)
		d.processStopTriggers(p, frames, date)
		d.processExitSignals(p, frames, date)
		d.scanEntries(p, frames, tickers, date, prices)

		p.Snapshot(date, prices)
	}

	return p
}

func (d *Driver) pricesForDate(frames map[string]*indicators.Frame, date time.Time) map[string]float64 {
	prices := make(map[string]float64)
	for ticker, f := range frames {
		idx := f.DateIndex(date)
		if idx < 0 {
			continue
		}
		prices[ticker] = f.Bars.Bars[idx].Close
	}
	return prices
}

// updateExtremesAndTrails folds the day's high/low into every open
// position's trailing reference and recomputes its trailing stop using the
// day's ATR (spec.md §4.14 steps 2-3).
func (d *Driver) updateExtremesAndTrails(p *portfolio.Portfolio, frames map[string]*indicators.Frame, date time.Time) {
	for ticker, pos := range p.Positions {
		f, ok := frames[ticker]
		if !ok {
			continue
		}
		idx := f.DateIndex(date)
		if idx < 0 {
			continue
		}
		bar := f.Bars.Bars[idx]
		pos.UpdateExtremes(bar.High, bar.Low)
		if atr := f.ATR[idx]; atr == atr { // not NaN
			pos.TrailStopLong(atr, d.cfg.Risk.ATRMultiplier)
		}
	}
}

// processStopTriggers sells at the stop price (not the close) for every
// position whose stop has been breached (spec.md §4.14 step 4).
func (d *Driver) processStopTriggers(p *portfolio.Portfolio, frames map[string]*indicators.Frame, date time.Time) {
	for _, ticker := range p.SortedTickers() {
		pos, ok := p.Positions[ticker]
		if !ok {
			continue
		}
		f, ok := frames[ticker]
		if !ok {
			continue
		}
		idx := f.DateIndex(date)
		if idx < 0 {
			continue
		}
		price := f.Bars.Bars[idx].Close
		if !pos.StopTriggered(price) {
			continue
		}

		fill := execution.Sell(pos.StopPrice, pos.Shares, d.cfg.Execution)
		reason := portfolio.ClassifyStopReason(fill.Price, pos.AvgEntryPrice)
		if err := p.Close(ticker, pos.Shares, fill.Price, fill.Commission, date, reason); err != nil {
			d.log.Warn().Err(err).Str("ticker", ticker).Msg("failed to close stopped-out position")
		}
	}
}

// processExitSignals emits the three-level exit decision for every held
// ticker on the bar slice ending at date and executes a partial or full
// sell at the day's close when the level is 2 or 3 (spec.md §4.14 step 5).
func (d *Driver) processExitSignals(p *portfolio.Portfolio, frames map[string]*indicators.Frame, date time.Time) {
	for _, ticker := range p.SortedTickers() {
		pos, ok := p.Positions[ticker]
		if !ok {
			continue
		}
		f, ok := frames[ticker]
		if !ok {
			continue
		}
		idx := f.DateIndex(date)
		if idx < 0 {
			continue
		}

		decision := exitDecisionAt(f, idx, d.cfg.ExitMerge)
		if decision.Level < signal.ExitLevel2 {
			continue
		}

		price := f.Bars.Bars[idx].Close
		sharesToClose := pos.Shares * decision.Ratio
		fill := execution.Sell(price, sharesToClose, d.cfg.Execution)
		if err := p.Close(ticker, sharesToClose, fill.Price, fill.Commission, date, decision.Reason()); err != nil {
			d.log.Warn().Err(err).Str("ticker", ticker).Msg("failed to close position on exit signal")
		}
	}
}

func exitDecisionAt(f *indicators.Frame, idx int, strategy signal.MergeStrategy) signal.ExitDecision {
	upper := signal.ComputeConditions(f.MACD.Upper, signal.SideLong)
	middle := signal.ComputeConditions(f.MACD.Middle, signal.SideLong)
	lower := signal.ComputeConditions(f.MACD.Lower, signal.SideLong)
	return signal.MergeExit(upper, middle, lower, idx, strategy)
}

// scanEntries evaluates every non-held ticker for an entry signal, runs it
// through the risk gate, and executes a buy at the day's close on approval
// (spec.md §4.14 step 6). Candidates are iterated in sorted ticker order so
// that portfolio-limit ties resolve deterministically.
func (d *Driver) scanEntries(p *portfolio.Portfolio, frames map[string]*indicators.Frame, tickers []string, date time.Time, prices map[string]float64) {
	gate := risk.NewGate(d.cfg.Risk, d.log)
	heldUnits := make(map[string]float64, len(p.Positions))
	for t, pos := range p.Positions {
		heldUnits[t] = pos.Units
	}

	for _, ticker := range tickers {
		if _, held := p.Positions[ticker]; held {
			continue
		}
		f, ok := frames[ticker]
		if !ok {
			continue
		}
		idx := f.DateIndex(date)
		if idx < 0 {
			continue
		}

		entry := entrySignalAt(f, idx, d.cfg.EnableEarlySignals)
		if entry.Kind != signal.NormalBuy && entry.Kind != signal.EarlyBuy {
			continue
		}

		price := prices[ticker]
		if price <= 0 {
			continue
		}

		strength := strengthAt(f, idx)
		exitLevel := exitDecisionAt(f, idx, d.cfg.ExitMerge).Level
		filterResult := signal.Apply(d.cfg.Filter, signal.FilterInputs{
			Strength:         &strength,
			ATRPercentile:    atrPercentilePtr(f, idx),
			LongEMANormSlope: longEMASlopePtr(f, idx),
			EntrySignal:      entry.Kind.Value(),
			ExitSignal:       int(exitLevel),
		}, d.log)
		if !filterResult.Passed {
			continue
		}

		existingRisks := positionRisks(p)
		equity := p.Equity(prices)
		atr := f.ATR[idx]
		longEMA := f.EMALong[idx]
		longEMAValid := longEMA == longEMA

		sig := risk.Signal{
			Ticker:       ticker,
			Action:       risk.ActionEntry,
			Strength:     strength,
			CurrentPrice: price,
			ATR:          atr,
			LongEMA:      longEMA,
			LongEMAValid: longEMAValid,
		}
		decision := gate.Evaluate(sig, risk.Environment{
			Balance:       equity,
			HeldUnits:     heldUnits,
			ExistingRisks: existingRisks,
		})
		if !decision.Approved {
			continue
		}

		fill := execution.Buy(price, decision.Shares, d.cfg.Execution)
		if err := p.Open(ticker, decision.Shares, decision.Units, fill.Price, fill.Commission, date, decision.StopPrice, decision.StopKind); err != nil {
			d.log.Warn().Err(err).Str("ticker", ticker).Msg("failed to open approved entry")
			continue
		}
		heldUnits[ticker] = decision.Units
	}
}

func entrySignalAt(f *indicators.Frame, idx int, enableEarly bool) signal.EntryResult {
	stageValue := f.Stage[idx]
	rawArrangement := stage.Arrangement(f.EMAShort, f.EMAMid, f.EMALong)[idx]
	return signal.GenerateEntry(stageValue, rawArrangement, f.DirUpper[idx], f.DirMiddle[idx], f.DirLower[idx], enableEarly)
}

// strengthAt computes the 0-100 signal-strength score for bar idx, scoring
// the MA spread and ATR against their history up to and including idx
// (spec.md §4.5).
func strengthAt(f *indicators.Frame, idx int) int {
	spread := signal.MASpread(f.EMAShort, f.EMAMid, f.EMALong, f.Bars.Closes())
	spreadPct := indicators.Percentile(spread[:idx+1], spread[idx])
	atrPct := indicators.Percentile(f.ATR[:idx+1], f.ATR[idx])

	slope := indicators.Slope(f.EMALong, 5)
	label := indicators.ClassifySlope(slope[idx], f.Bars.Bars[idx].Close, f.Config().Slope)

	return signal.ComputeStrength(signal.Inputs{
		DirUpper:          f.DirUpper[idx],
		DirMiddle:         f.DirMiddle[idx],
		DirLower:          f.DirLower[idx],
		StageValue:        f.Stage[idx],
		SpreadPercentile:  spreadPct,
		LongEMASlopeLabel: label,
		ATRPercentile:     atrPct,
	})
}

func atrPercentilePtr(f *indicators.Frame, idx int) *float64 {
	pct := indicators.Percentile(f.ATR[:idx+1], f.ATR[idx])
	return &pct
}

func longEMASlopePtr(f *indicators.Frame, idx int) *float64 {
	slope := indicators.Slope(f.EMALong, 5)[idx]
	close := f.Bars.Bars[idx].Close
	if close == 0 {
		return nil
	}
	normalized := slope / close
	return &normalized
}

// positionRisks lists every open position's dollar risk in sorted-ticker
// order. Floating-point addition is not associative, so CheckExposure's
// summation must see a fixed order across runs rather than Go's randomized
// map iteration, or the portfolio-risk total could differ in its last bit
// from one run to the next.
func positionRisks(p *portfolio.Portfolio) []float64 {
	tickers := p.SortedTickers()
	risks := make([]float64, 0, len(tickers))
	for _, ticker := range tickers {
		pos := p.Positions[ticker]
		risks = append(risks, risk.PositionRisk(pos.Shares, pos.AvgEntryPrice, pos.StopPrice))
	}
	return risks
}
