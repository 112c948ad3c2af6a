package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"LiveCounters/internal/model"
)

// SQLiteRecorder persists tick history to a SQLite database.
type SQLiteRecorder struct {
	db    *sql.DB
	mu    sync.Mutex
	runID string
}

// NewSQLiteRecorder opens (or creates) the SQLite database, runs migrations
// and registers a new run.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while ticks are written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, runID: uuid.NewString()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := db.Exec(`INSERT INTO runs (run_id, started_at) VALUES (?, ?)`,
		r.runID, time.Now().Unix()); err != nil {
		db.Close()
		return nil, fmt.Errorf("register run: %w", err)
	}

	slog.Info("sqlite recorder opened", "path", dbPath, "run_id", r.runID)
	return r, nil
}

// RunID identifies this process's rows.
func (r *SQLiteRecorder) RunID() string { return r.runID }

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id     TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS metric_samples (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL,
			tick      INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			metric    TEXT NOT NULL,
			label     TEXT,
			value     REAL,
			display   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_run_metric ON metric_samples(run_id, metric, tick)`,

		`CREATE TABLE IF NOT EXISTS info_cards (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			title         TEXT,
			display_value TEXT,
			note          TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordTick stores the newest point of every reading.
func (r *SQLiteRecorder) RecordTick(snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO metric_samples
		(run_id, tick, timestamp, metric, label, value, display)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, rd := range snap.Readings {
		label := ""
		if n := len(rd.Series); n > 0 {
			label = rd.Series[n-1].Label
		}
		if _, err := stmt.Exec(r.runID, snap.Tick, snap.At.Unix(),
			string(rd.Metric), label, rd.Value, rd.Display); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", rd.Metric, err)
		}
	}
	return tx.Commit()
}

// RecordCards stores the startup info cards once per run.
func (r *SQLiteRecorder) RecordCards(cards []model.InfoCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range cards {
		if _, err := r.db.Exec(`INSERT INTO info_cards
			(run_id, title, display_value, note) VALUES (?,?,?,?)`,
			r.runID, c.Title, c.DisplayValue, c.Note); err != nil {
			return fmt.Errorf("insert card %q: %w", c.Title, err)
		}
	}
	return nil
}

// History returns the last n recorded values of metric for this run,
// oldest first.
func (r *SQLiteRecorder) History(metric model.Metric, n int) ([]model.Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT label, value FROM (
			SELECT tick, label, value FROM metric_samples
			WHERE run_id = ? AND metric = ?
			ORDER BY tick DESC LIMIT ?
		) ORDER BY tick ASC`, r.runID, string(metric), n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.Point
	for rows.Next() {
		var p model.Point
		if err := rows.Scan(&p.Label, &p.Value); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	slog.Info("closing sqlite recorder")
	return r.db.Close()
}
