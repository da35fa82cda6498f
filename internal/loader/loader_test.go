package loader

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hanlyang/backtest/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	fail map[string]error
	n    int
}

func (f *fakeProvider) LoadBars(ctx context.Context, ticker string, start, end time.Time) ([]domain.Bar, error) {
	if err, ok := f.fail[ticker]; ok {
		return nil, err
	}
	bars := make([]domain.Bar, f.n)
	d := start
	for i := range bars {
		price := 100.0 + float64(i)
		bars[i] = domain.Bar{Date: d, Open: price, High: price + 1, Low: price - 1, Close: price, Volume: 1000}
		d = d.AddDate(0, 0, 1)
	}
	return bars, nil
}

func TestLoad_BuildsFrameForEveryTicker(t *testing.T) {
	provider := &fakeProvider{n: 80, fail: map[string]error{}}
	l := New(provider, DefaultConfig(), zerolog.Nop())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 80)
	frames := l.Load(context.Background(), []string{"005930", "000660", "035720"}, start, end)

	require.Len(t, frames, 3)
	for _, ticker := range []string{"005930", "000660", "035720"} {
		assert.NotNil(t, frames[ticker])
	}
}

func TestLoad_DropsFailingTickerWithoutAbortingOthers(t *testing.T) {
	provider := &fakeProvider{n: 80, fail: map[string]error{"000660": fmt.Errorf("vendor timeout")}}
	l := New(provider, DefaultConfig(), zerolog.Nop())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 80)
	frames := l.Load(context.Background(), []string{"005930", "000660", "035720"}, start, end)

	require.Len(t, frames, 2)
	assert.NotNil(t, frames["005930"])
	assert.NotNil(t, frames["035720"])
	_, dropped := frames["000660"]
	assert.False(t, dropped)
}

func TestLoad_DropsTickerWithTooFewBarsRatherThanPanicking(t *testing.T) {
	provider := &fakeProvider{n: 1, fail: map[string]error{}}
	l := New(provider, DefaultConfig(), zerolog.Nop())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	frames := l.Load(context.Background(), []string{"005930"}, start, end)

	assert.Empty(t, frames)
}

func TestSortedTickers_Deterministic(t *testing.T) {
	provider := &fakeProvider{n: 80, fail: map[string]error{}}
	l := New(provider, DefaultConfig(), zerolog.Nop())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 80)
	frames := l.Load(context.Background(), []string{"035720", "005930", "000660"}, start, end)

	assert.Equal(t, []string{"000660", "005930", "035720"}, SortedTickers(frames))
}
