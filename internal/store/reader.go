package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MeKo-Tech/contrastscan/internal/colour"
	"github.com/MeKo-Tech/contrastscan/internal/scan"
	"github.com/MeKo-Tech/contrastscan/internal/wcag"
)

// ErrNoRuns is returned when the database holds no scan runs.
var ErrNoRuns = errors.New("no scan runs recorded")

// Run is a recorded scan run. Totals are zero until the run finished.
type Run struct {
	StartedAt time.Time
	Meta      RunMeta
	Stats     scan.Stats
	ID        int64
	Finished  bool
}

// Reader reads scan results from the database.
type Reader struct {
	db *sql.DB
}

// OpenReader opens a results database for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('runs', 'findings')").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count != 2 {
		db.Close()
		return nil, fmt.Errorf("%s does not contain scan tables", path)
	}

	return &Reader{db: db}, nil
}

// Runs returns all runs, newest first.
func (r *Reader) Runs() ([]Run, error) {
	rows, err := r.db.Query(`
		SELECT id, started_at, min_channel, max_channel, workers,
		       scanned, pass, fail_small, fail_large, elapsed_ms
		FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			startedAt string
			scanned   sql.NullInt64
			pass      sql.NullInt64
			failSmall sql.NullInt64
			failLarge sql.NullInt64
			elapsedMS sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &startedAt, &run.Meta.MinChannel, &run.Meta.MaxChannel, &run.Meta.Workers,
			&scanned, &pass, &failSmall, &failLarge, &elapsedMS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("run %d: invalid started_at %q: %w", run.ID, startedAt, err)
		}
		run.Meta.StartedAt = run.StartedAt
		run.Finished = scanned.Valid
		run.Stats = scan.Stats{
			Scanned:   int(scanned.Int64),
			Pass:      int(pass.Int64),
			FailSmall: int(failSmall.Int64),
			FailLarge: int(failLarge.Int64),
			Elapsed:   time.Duration(elapsedMS.Int64) * time.Millisecond,
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// LatestRun returns the most recent run.
func (r *Reader) LatestRun() (Run, error) {
	runs, err := r.Runs()
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrNoRuns
	}
	return runs[0], nil
}

// Findings returns the findings of a run in brand order. A nil level returns
// every level; limit <= 0 means no limit.
func (r *Reader) Findings(runID int64, level *wcag.Level, limit int) ([]scan.Finding, error) {
	query := "SELECT brand, secondary, text_colour, ratio, level FROM findings WHERE run_id = ?"
	args := []any{runID}
	if level != nil {
		query += " AND level = ?"
		args = append(args, level.String())
	}
	query += " ORDER BY brand"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []scan.Finding
	for rows.Next() {
		var brand, secondary, text, lvl string
		var f scan.Finding
		if err := rows.Scan(&brand, &secondary, &text, &f.Ratio, &lvl); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}

		if f.Brand, err = colour.ParseHex(brand); err != nil {
			return nil, err
		}
		if f.Secondary, err = colour.ParseHex(secondary); err != nil {
			return nil, err
		}
		if f.Text, err = colour.ParseHex(text); err != nil {
			return nil, err
		}
		l, ok := wcag.ParseLevel(lvl)
		if !ok {
			return nil, fmt.Errorf("finding %s: unknown level %q", brand, lvl)
		}
		f.Level = l

		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate findings: %w", err)
	}

	return findings, nil
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}
