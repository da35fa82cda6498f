// Package cache persists computed indicator frames keyed by
// (ticker, start, end) so a repeated backtest run over the same window
// can skip recomputation (spec.md §6 "Persisted cache layout"). A lookup
// miss or a key mismatch is never an error. internal/loader does not read
// or write this store; callers use Get and Put directly.
package cache

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hanlyang/backtest/internal/domain"
	"github.com/hanlyang/backtest/internal/indicators"
	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver, matches the teacher's per-entity history stores
)

const schema = `
CREATE TABLE IF NOT EXISTS frames (
	ticker TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	payload BLOB NOT NULL,
	written_at TIMESTAMP NOT NULL,
	PRIMARY KEY (ticker, start_date, end_date)
);
`

// Store is a gob-encoded indicator-frame cache backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates (if needed) and opens the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("cache: migrate %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// record is the gob-serialized shape of a cached Frame. Frame's own cfg
// field is unexported, so the cache keeps it alongside the exported columns
// and hands them back to indicators.Restore on a hit.
type record struct {
	Ticker          string
	Bars            []gobBar
	EMAShort        []float64
	EMAMid          []float64
	EMALong         []float64
	ATR             []float64
	MACD            indicators.TripleMACD
	DirUpper        []indicators.Direction
	DirMiddle       []indicators.Direction
	DirLower        []indicators.Direction
	Stage           []int
	StageTransition []int
	Config          indicators.Config
}

type gobBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

func toGobBars(bars []domain.Bar) []gobBar {
	out := make([]gobBar, len(bars))
	for i, b := range bars {
		out[i] = gobBar{Date: b.Date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
	}
	return out
}

func buildBarSeries(ticker string, bars []gobBar) (domain.BarSeries, error) {
	out := make([]domain.Bar, len(bars))
	for i, b := range bars {
		out[i] = domain.Bar{Date: b.Date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
	}
	return domain.NewBarSeries(ticker, out)
}

// Get looks up the frame for (ticker, start, end). A miss returns
// (nil, false, nil); only a genuine I/O or decode failure returns an error.
func (s *Store) Get(ticker string, start, end time.Time) (*indicators.Frame, bool, error) {
	var payload []byte
	err := s.db.QueryRow(
		`SELECT payload FROM frames WHERE ticker = ? AND start_date = ? AND end_date = ?`,
		ticker, dateKey(start), dateKey(end),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup %s: %w", ticker, err)
	}

	var rec record
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&rec); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", ticker, err)
	}

	series, err := buildBarSeries(rec.Ticker, rec.Bars)
	if err != nil {
		return nil, false, fmt.Errorf("cache: rebuild bars %s: %w", ticker, err)
	}

	frame := indicators.Restore(rec.Ticker, series, rec.EMAShort, rec.EMAMid, rec.EMALong, rec.ATR,
		rec.MACD, rec.DirUpper, rec.DirMiddle, rec.DirLower, rec.Stage, rec.StageTransition, rec.Config)
	return frame, true, nil
}

// Put writes frame under (ticker, start, end), replacing any prior entry for
// the same key. The write is wrapped in a transaction so a crash mid-write
// leaves the previous row intact rather than a half-written blob.
func (s *Store) Put(ticker string, start, end time.Time, frame *indicators.Frame) error {
	rec := record{
		Ticker:          frame.Ticker,
		Bars:            toGobBars(frame.Bars.Bars),
		EMAShort:        frame.EMAShort,
		EMAMid:          frame.EMAMid,
		EMALong:         frame.EMALong,
		ATR:             frame.ATR,
		MACD:            frame.MACD,
		DirUpper:        frame.DirUpper,
		DirMiddle:       frame.DirMiddle,
		DirLower:        frame.DirLower,
		Stage:           frame.Stage,
		StageTransition: frame.StageTransition,
		Config:          frame.Config(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return fmt.Errorf("cache: encode %s: %w", ticker, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cache: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO frames (ticker, start_date, end_date, payload, written_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		ticker, dateKey(start), dateKey(end), buf.Bytes())
	if err != nil {
		return fmt.Errorf("cache: write %s: %w", ticker, err)
	}
	return tx.Commit()
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }
