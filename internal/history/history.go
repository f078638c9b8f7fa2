// Package history keeps a local journal of fetch cycles: which source was
// loaded, when, how long it took and how it ended. Headlines themselves are
// never stored.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeNoContent   Outcome = "no_content"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeFailed      Outcome = "failed"
)

// Entry is one fetch cycle.
type Entry struct {
	Cycle    string
	Source   string
	Event    string
	Items    int
	Outcome  Outcome
	Error    string
	Duration time.Duration
	At       time.Time
}

type QueryOpts struct {
	Since   time.Time
	Sources []string
	Limit   int
}

// SourceStats summarizes the journal for one source.
type SourceStats struct {
	Source   string
	Fetches  int
	Failures int
	AvgItems float64
	Last     time.Time
}

type Stats struct {
	Path    string
	Entries int
	Size    int64
	Sources []SourceStats
}

type Journal struct {
	db   *sql.DB
	path string
}

func Open(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	db.SetMaxOpenConns(1)

	j := &Journal{db: db, path: dbPath}
	if err := j.init(); err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) init() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS fetches (
			cycle       TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			event       TEXT NOT NULL DEFAULT '',
			items       INTEGER NOT NULL DEFAULT 0,
			outcome     TEXT NOT NULL,
			error       TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			at_ms       INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_fetches_at ON fetches(at_ms DESC);
		CREATE INDEX IF NOT EXISTS idx_fetches_source ON fetches(source);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Path is the database file backing the journal.
func (j *Journal) Path() string { return j.path }

func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends e. Entries with a cycle ID already in the journal replace
// the earlier row.
func (j *Journal) Record(e Entry) error {
	if e.Cycle == "" {
		return fmt.Errorf("recording fetch: empty cycle id")
	}
	_, err := j.db.Exec(`
		INSERT INTO fetches (cycle, source, event, items, outcome, error, duration_ms, at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cycle) DO UPDATE SET
			items = excluded.items,
			outcome = excluded.outcome,
			error = excluded.error,
			duration_ms = excluded.duration_ms,
			at_ms = excluded.at_ms
	`, e.Cycle, e.Source, e.Event, e.Items, string(e.Outcome), e.Error, e.Duration.Milliseconds(), e.At.UnixMilli())
	if err != nil {
		return fmt.Errorf("recording fetch %s: %w", e.Cycle, err)
	}
	return nil
}

// Entries returns journal rows newest first.
func (j *Journal) Entries(opts QueryOpts) ([]Entry, error) {
	var (
		where []string
		args  []any
	)

	if !opts.Since.IsZero() {
		where = append(where, "at_ms >= ?")
		args = append(args, opts.Since.UnixMilli())
	}

	if len(opts.Sources) > 0 {
		placeholders := make([]string, len(opts.Sources))
		for i, s := range opts.Sources {
			placeholders[i] = "?"
			args = append(args, s)
		}
		where = append(where, "source IN ("+strings.Join(placeholders, ",")+")") //nolint:gosec
	}

	query := "SELECT cycle, source, event, items, outcome, error, duration_ms, at_ms FROM fetches"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY at_ms DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fetches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			outcome    string
			durationMs int64
			atMs       int64
		)
		if err := rows.Scan(&e.Cycle, &e.Source, &e.Event, &e.Items, &outcome, &e.Error, &durationMs, &atMs); err != nil {
			return nil, fmt.Errorf("scanning fetch: %w", err)
		}
		e.Outcome = Outcome(outcome)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.At = time.UnixMilli(atMs)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries recorded before now minus olderThan.
func (j *Journal) Prune(olderThan time.Duration) (int64, error) {
	return j.PruneBefore(time.Now().Add(-olderThan))
}

func (j *Journal) PruneBefore(cutoff time.Time) (int64, error) {
	res, err := j.db.Exec("DELETE FROM fetches WHERE at_ms < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("pruning fetches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := j.db.Exec("VACUUM"); err != nil {
			return n, fmt.Errorf("vacuuming: %w", err)
		}
	}
	return n, nil
}

func (j *Journal) Stats() (Stats, error) {
	st := Stats{Path: j.path}

	if err := j.db.QueryRow("SELECT COUNT(*) FROM fetches").Scan(&st.Entries); err != nil {
		return st, fmt.Errorf("counting fetches: %w", err)
	}

	rows, err := j.db.Query(`
		SELECT source,
		       COUNT(*),
		       SUM(CASE WHEN outcome = 'ok' THEN 0 ELSE 1 END),
		       AVG(items),
		       MAX(at_ms)
		FROM fetches
		GROUP BY source
		ORDER BY source
	`)
	if err != nil {
		return st, fmt.Errorf("summarizing fetches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s    SourceStats
			last int64
		)
		if err := rows.Scan(&s.Source, &s.Fetches, &s.Failures, &s.AvgItems, &last); err != nil {
			return st, fmt.Errorf("scanning summary: %w", err)
		}
		s.Last = time.UnixMilli(last)
		st.Sources = append(st.Sources, s)
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	if info, err := os.Stat(j.path); err == nil {
		st.Size = info.Size()
	}
	return st, nil
}
