package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists bars and fetch history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger glog.Logger
	now    func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger glog.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = glog.Nop()
	}
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the HTTP API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger, now: func() time.Time { return time.Now().UTC() }}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_bars (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT NOT NULL,
			contract_id TEXT NOT NULL,
			live        INTEGER NOT NULL DEFAULT 0,
			bar_time    INTEGER NOT NULL,
			open        REAL,
			high        REAL,
			low         REAL,
			close       REAL,
			volume      INTEGER,
			recorded_at INTEGER NOT NULL,
			UNIQUE (contract_id, bar_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_symbol_time ON daily_bars(symbol, bar_time)`,

		`CREATE TABLE IF NOT EXISTS fetch_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			fetch_id    TEXT NOT NULL UNIQUE,
			timestamp   INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			contract_id TEXT,
			live        INTEGER NOT NULL DEFAULT 0,
			outcome     TEXT NOT NULL,
			error_code  TEXT,
			error       TEXT,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_ts ON fetch_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordBar upserts a bar; a second write for the same contract and bar time
// replaces the prices.
func (r *SQLiteRecorder) RecordBar(rec *BarRecord) error {
	if rec == nil {
		return errors.New("record bar: nil record")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b := rec.Bar
	_, err := r.db.Exec(`INSERT INTO daily_bars
		(symbol, contract_id, live, bar_time, open, high, low, close, volume, recorded_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(contract_id, bar_time) DO UPDATE SET
			symbol=excluded.symbol, live=excluded.live,
			open=excluded.open, high=excluded.high, low=excluded.low, close=excluded.close,
			volume=excluded.volume, recorded_at=excluded.recorded_at`,
		strings.ToUpper(rec.Symbol), rec.ContractID, boolInt(rec.Live), b.Timestamp.Unix(),
		b.Open, b.High, b.Low, b.Close, b.Volume, r.now().Unix(),
	)
	return err
}

// RecordFetch stores evt and returns its fetch id, generating one when empty.
func (r *SQLiteRecorder) RecordFetch(evt *FetchEvent) (string, error) {
	if evt == nil {
		return "", errors.New("record fetch: nil event")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.FetchID == "" {
		evt.FetchID = uuid.NewString()
	}
	at := evt.FetchedAt
	if at.IsZero() {
		at = r.now()
	}

	_, err := r.db.Exec(`INSERT INTO fetch_events
		(fetch_id, timestamp, symbol, contract_id, live, outcome, error_code, error, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		evt.FetchID, at.Unix(), strings.ToUpper(evt.Symbol), evt.ContractID, boolInt(evt.Live),
		evt.Outcome, evt.ErrorCode, evt.Error, evt.Duration.Milliseconds(),
	)
	if err != nil {
		return "", err
	}
	return evt.FetchID, nil
}

// LatestBar returns the newest stored bar for symbol, or nil when none exists.
func (r *SQLiteRecorder) LatestBar(symbol string) (*BarRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := r.db.QueryRow(`SELECT symbol, contract_id, live, bar_time, open, high, low, close, volume
		FROM daily_bars WHERE symbol = ? ORDER BY bar_time DESC LIMIT 1`, strings.ToUpper(symbol))

	var (
		rec     BarRecord
		live    int
		barTime int64
	)
	err := row.Scan(&rec.Symbol, &rec.ContractID, &live, &barTime,
		&rec.Bar.Open, &rec.Bar.High, &rec.Bar.Low, &rec.Bar.Close, &rec.Bar.Volume)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest bar: %w", err)
	}
	rec.Live = live != 0
	rec.Bar.Timestamp = time.Unix(barTime, 0).UTC()
	return &rec, nil
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
