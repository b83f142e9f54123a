// Package store persists scan runs and their findings in a SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/MeKo-Tech/contrastscan/internal/scan"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// DefaultBatchSize is the number of findings to buffer before flushing to the database.
	DefaultBatchSize = 1000
)

// RunMeta describes a scan run.
type RunMeta struct {
	StartedAt  time.Time
	MinChannel int
	MaxChannel int
	Workers    int
}

// Writer writes the findings of one scan run.
type Writer struct {
	db        *sql.DB
	path      string
	batch     []scan.Finding
	runID     int64
	batchSize int
	mu        sync.Mutex
}

// New opens (or creates) the database at path and registers a new run.
func New(path string, meta RunMeta) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if meta.StartedAt.IsZero() {
		meta.StartedAt = time.Now()
	}
	res, err := db.Exec(
		"INSERT INTO runs (started_at, min_channel, max_channel, workers) VALUES (?, ?, ?, ?)",
		meta.StartedAt.UTC().Format(time.RFC3339Nano), meta.MinChannel, meta.MaxChannel, meta.Workers,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read run id: %w", err)
	}

	return &Writer{
		db:        db,
		path:      path,
		runID:     runID,
		batch:     make([]scan.Finding, 0, DefaultBatchSize),
		batchSize: DefaultBatchSize,
	}, nil
}

// createSchema creates the runs and findings tables.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			min_channel INTEGER NOT NULL,
			max_channel INTEGER NOT NULL,
			workers INTEGER NOT NULL,
			scanned INTEGER,
			pass INTEGER,
			fail_small INTEGER,
			fail_large INTEGER,
			elapsed_ms INTEGER
		);

		CREATE TABLE IF NOT EXISTS findings (
			run_id INTEGER NOT NULL REFERENCES runs (id),
			brand TEXT NOT NULL,
			secondary TEXT NOT NULL,
			text_colour TEXT NOT NULL,
			ratio REAL NOT NULL,
			level TEXT NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS finding_index ON findings (run_id, brand);
		CREATE INDEX IF NOT EXISTS finding_level_index ON findings (run_id, level);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// RunID returns the id of the run being written.
func (w *Writer) RunID() int64 {
	return w.runID
}

// Write adds a finding to the batch. When the batch is full, it is automatically flushed.
// Its signature matches scan.EmitFunc.
func (w *Writer) Write(f scan.Finding) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.batch = append(w.batch, f)

	if len(w.batch) >= w.batchSize {
		return w.flushLocked()
	}

	return nil
}

// Flush writes any buffered findings to the database.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked writes buffered findings to the database. Must be called with lock held.
func (w *Writer) flushLocked() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO findings (run_id, brand, secondary, text_colour, ratio, level) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range w.batch {
		if _, err := stmt.Exec(w.runID, f.Brand.Hex(), f.Secondary.Hex(), f.Text.Hex(), f.Ratio, f.Level.String()); err != nil {
			return fmt.Errorf("failed to insert finding %s: %w", f.Brand.Hex(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.batch = w.batch[:0]
	return nil
}

// Finish flushes pending findings and records the run totals.
func (w *Writer) Finish(stats scan.Stats) error {
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := w.db.Exec(
		"UPDATE runs SET scanned = ?, pass = ?, fail_small = ?, fail_large = ?, elapsed_ms = ? WHERE id = ?",
		stats.Scanned, stats.Pass, stats.FailSmall, stats.FailLarge, stats.Elapsed.Milliseconds(), w.runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", w.runID, err)
	}
	return nil
}

// Close flushes any remaining findings and closes the database.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.db.Close()
		return fmt.Errorf("%s: %w", w.path, err)
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", w.path, err)
	}

	return nil
}
