package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hanlyang/backtest/internal/simulation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore map[string]simulation.BacktestResult

func (m memStore) Result(runID string) (simulation.BacktestResult, bool) {
	r, ok := m[runID]
	return r, ok
}

func TestHandleGetRun_ReturnsJSONForKnownRun(t *testing.T) {
	store := memStore{"run-1": simulation.BacktestResult{TotalTrades: 5, ScannedTickers: 42}}
	s := New(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/runs/run-1", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ScannedTickers":42`)
}

func TestHandleGetRun_404sForUnknownRun(t *testing.T) {
	s := New(memStore{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/runs/missing", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealthz_ReturnsOK(t *testing.T) {
	s := New(memStore{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
