// Package history keeps one summary row per report run in a local SQLite
// database, so a report can say how it moved since the previous run.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dkoosis/tcr/pkg/pattern"
)

// Run is the summary of one report run.
type Run struct {
	At             time.Time
	Total          int
	Pass           int
	Fail           int
	NotImplemented int
	Manual         int
	Skipped        int
	Unknown        int
}

// History records report runs. A History opened with an empty path is
// disabled: it records nothing and has no previous run.
type History struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(ctx context.Context, path string) (*History, error) {
	if path == "" {
		return &History{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	h := New(db)
	if err := h.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return h, nil
}

// New wraps an open database. The schema must already exist.
func New(db *sql.DB) *History {
	return &History{db: db}
}

// Enabled reports whether runs are being recorded.
func (h *History) Enabled() bool { return h.db != nil }

func (h *History) initSchema(ctx context.Context) error {
	_, err := h.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS report_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TEXT NOT NULL,
		total INTEGER NOT NULL,
		pass INTEGER NOT NULL,
		fail INTEGER NOT NULL,
		not_implemented INTEGER NOT NULL,
		manual INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		unknown INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_report_runs_at ON report_runs(at);`)
	return err
}

const insertRun = `INSERT INTO report_runs (at, total, pass, fail, not_implemented, manual, skipped, unknown) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Record appends run.
func (h *History) Record(ctx context.Context, run Run) error {
	if h.db == nil {
		return nil
	}
	_, err := h.db.ExecContext(ctx, insertRun,
		run.At.UTC().Format(time.RFC3339Nano),
		run.Total, run.Pass, run.Fail, run.NotImplemented, run.Manual, run.Skipped, run.Unknown,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

const selectRuns = `SELECT at, total, pass, fail, not_implemented, manual, skipped, unknown FROM report_runs ORDER BY id DESC LIMIT ?`

// Recent returns up to n runs, newest first.
func (h *History) Recent(ctx context.Context, n int) ([]Run, error) {
	if h.db == nil || n <= 0 {
		return nil, nil
	}
	rows, err := h.db.QueryContext(ctx, selectRuns, n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r  Run
			at string
		)
		if err := rows.Scan(&at, &r.Total, &r.Pass, &r.Fail, &r.NotImplemented, &r.Manual, &r.Skipped, &r.Unknown); err != nil {
			return nil, err
		}
		if r.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("run timestamp %q: %w", at, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Last returns the newest run; ok is false when there is none.
func (h *History) Last(ctx context.Context) (run Run, ok bool, err error) {
	runs, err := h.Recent(ctx, 1)
	if err != nil || len(runs) == 0 {
		return Run{}, false, err
	}
	return runs[0], true, nil
}

// Close closes the database.
func (h *History) Close() error {
	if h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Compare describes how cur moved relative to prev.
func Compare(prev, cur Run) *pattern.Comparison {
	item := func(label string, before, after int, higherIsBetter bool) pattern.ComparisonItem {
		return pattern.ComparisonItem{
			Label:          label,
			Before:         strconv.Itoa(before),
			After:          strconv.Itoa(after),
			Change:         float64(after - before),
			HigherIsBetter: higherIsBetter,
		}
	}
	return &pattern.Comparison{
		Label: fmt.Sprintf("Since last run (%s)", prev.At.Local().Format("2006-01-02 15:04")),
		Changes: []pattern.ComparisonItem{
			item("Passed", prev.Pass, cur.Pass, true),
			item("Failed", prev.Fail, cur.Fail, false),
			item("Not implemented", prev.NotImplemented, cur.NotImplemented, false),
		},
	}
}
