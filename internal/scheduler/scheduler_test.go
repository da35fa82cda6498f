package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_RunsFuncOnEverySecondTick(t *testing.T) {
	s := New(zerolog.Nop())
	var calls int32

	_, err := s.Schedule("test-run", "@every 1s", func() error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, err)

	s.Start()
	time.Sleep(1200 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestSchedule_FailedRunDoesNotStopFutureRuns(t *testing.T) {
	s := New(zerolog.Nop())
	var calls int32

	_, err := s.Schedule("flaky-run", "@every 1s", func() error {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return assert.AnError
		}
		return nil
	})
	require.NoError(t, err)

	s.Start()
	time.Sleep(2200 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}
