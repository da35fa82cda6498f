// Package scheduler wraps robfig/cron to drive optional recurring or
// walk-forward backtest runs (spec.md §1's CLI/orchestration collaborators
// are out of the core scope, but a repeatable run schedule is ambient
// infrastructure the teacher provides this way for its own sync jobs).
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RunFunc is one scheduled backtest invocation. Its error is logged, never
// propagated: a single failed run must not stop the schedule.
type RunFunc func() error

// Scheduler runs one or more RunFuncs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New builds a Scheduler with second-precision disabled (minute resolution,
// matching cron's default parser), logging under the "scheduler" component.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Schedule registers fn to run on spec (standard 5-field cron syntax),
// labelled by name for logging. It returns the entry ID so the caller can
// later remove it.
func (s *Scheduler) Schedule(name, spec string, fn RunFunc) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		s.log.Info().Str("job", name).Msg("starting scheduled run")
		if err := fn(); err != nil {
			s.log.Error().Err(err).Str("job", name).Msg("scheduled run failed")
			return
		}
		s.log.Info().Str("job", name).Msg("scheduled run completed")
	})
}

// Remove cancels a previously scheduled job.
func (s *Scheduler) Remove(id cron.EntryID) { s.cron.Remove(id) }

// Start begins executing scheduled jobs in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler, waiting for any in-flight job to finish.
func (s *Scheduler) Stop() { <-s.cron.Stop().Done() }
