// Package database wraps the append-only SQLite ledger that records every
// trade and equity snapshot a backtest run produces (spec.md §6's "durable,
// inspectable output" requirement), following the teacher's connection and
// profile conventions.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Profile selects the PRAGMA set a database is opened with.
type Profile string

const (
	// ProfileLedger maximizes durability for the append-only trade/snapshot
	// ledger: fsync after every write, never auto-shrink.
	ProfileLedger Profile = "ledger"
	// ProfileCache maximizes throughput for the disposable indicator-frame
	// cache: no fsync, auto-reclaim space.
	ProfileCache Profile = "cache"
)

// Config holds the parameters for opening a DB.
type Config struct {
	Path    string
	Profile Profile
	Name    string
}

// DB wraps a SQLite connection opened with profile-specific PRAGMAs.
type DB struct {
	conn    *sql.DB
	path    string
	profile Profile
	name    string
}

// New opens (creating if necessary) a SQLite database at cfg.Path under the
// given profile.
func New(cfg Config) (*DB, error) {
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("database: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("database: create directory: %w", err)
	}

	if cfg.Profile == "" {
		cfg.Profile = ProfileLedger
	}

	conn, err := sql.Open("sqlite", buildConnectionString(absPath, cfg.Profile))
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", cfg.Name, err)
	}
	configureConnectionPool(conn, cfg.Profile)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database: ping %s: %w", cfg.Name, err)
	}

	return &DB{conn: conn, path: absPath, profile: cfg.Profile, name: cfg.Name}, nil
}

func buildConnectionString(path string, profile Profile) string {
	connStr := path + "?_pragma=journal_mode(WAL)"

	switch profile {
	case ProfileLedger:
		connStr += "&_pragma=synchronous(FULL)"
		connStr += "&_pragma=auto_vacuum(NONE)"
	case ProfileCache:
		connStr += "&_pragma=synchronous(OFF)"
		connStr += "&_pragma=auto_vacuum(FULL)"
		connStr += "&_pragma=temp_store(MEMORY)"
	}

	connStr += "&_pragma=foreign_keys(1)"
	connStr += "&_pragma=wal_autocheckpoint(1000)"
	connStr += "&_pragma=cache_size(-64000)"
	return connStr
}

func configureConnectionPool(conn *sql.DB, profile Profile) {
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(1 * time.Hour)
	conn.SetConnMaxIdleTime(10 * time.Minute)

	if profile == ProfileCache {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
	}
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }

// Conn returns the underlying *sql.DB for repositories that need raw access.
func (db *DB) Conn() *sql.DB { return db.conn }

// Path returns the resolved database file path.
func (db *DB) Path() string { return db.path }

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	initial_capital REAL NOT NULL,
	final_capital REAL,
	total_return REAL,
	max_drawdown REAL
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(id),
	ticker TEXT NOT NULL,
	side TEXT NOT NULL,
	shares REAL NOT NULL,
	units REAL NOT NULL,
	fill_price REAL NOT NULL,
	commission REAL NOT NULL,
	date TIMESTAMP NOT NULL,
	reason TEXT NOT NULL,
	pnl REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);

CREATE TABLE IF NOT EXISTS snapshots (
	run_id TEXT NOT NULL REFERENCES runs(id),
	date TIMESTAMP NOT NULL,
	cash REAL NOT NULL,
	equity REAL NOT NULL,
	PRIMARY KEY (run_id, date)
);
`

// Migrate applies the ledger schema. It is idempotent: CREATE TABLE/INDEX
// IF NOT EXISTS makes re-running it on an already-migrated database a no-op.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, ledgerSchema); err != nil {
		return fmt.Errorf("database: migrate %s: %w", db.name, err)
	}
	return nil
}
