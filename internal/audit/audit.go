// Package audit records document accesses in a SQLite database.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/agentic-research/docket/internal/hook"
	_ "modernc.org/sqlite"
)

// Access is one recorded document access.
type Access struct {
	Path    string
	Remote  string
	Elapsed time.Duration
	At      time.Time
}

// Recorder persists accesses. It is safe for concurrent use.
type Recorder struct {
	db *sql.DB
}

// Open opens the audit database at path, creating the schema if needed.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS accesses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		remote TEXT,
		elapsed_ms INTEGER NOT NULL,
		at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_accesses_at ON accesses(at);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Record inserts one access row.
func (r *Recorder) Record(ctx context.Context, a Access) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO accesses (path, remote, elapsed_ms, at) VALUES (?, ?, ?, ?)",
		a.Path, a.Remote, a.Elapsed.Milliseconds(), a.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record access: %w", err)
	}
	return nil
}

// Recent returns up to limit accesses, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Access, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT path, remote, elapsed_ms, at FROM accesses ORDER BY at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query accesses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Access
	for rows.Next() {
		var (
			a         Access
			remote    sql.NullString
			elapsedMS int64
			atMS      int64
		)
		if err := rows.Scan(&a.Path, &remote, &elapsedMS, &atMS); err != nil {
			return nil, err
		}
		a.Remote = remote.String
		a.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		a.At = time.UnixMilli(atMS)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the total number of recorded accesses.
func (r *Recorder) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM accesses").Scan(&n); err != nil {
		return 0, fmt.Errorf("count accesses: %w", err)
	}
	return n, nil
}

// Hook returns an after-hook that records each served document. The
// remote address is taken from the HTTP request when the event carries
// one.
func (r *Recorder) Hook() hook.Func {
	return func(ctx context.Context, ev *hook.Event) error {
		a := Access{Path: ev.Path, Elapsed: ev.Elapsed, At: time.Now()}
		if req, ok := ev.Request.(*http.Request); ok && req != nil {
			a.Remote = req.RemoteAddr
		}
		return r.Record(ctx, a)
	}
}

// Close closes the database connection.
func (r *Recorder) Close() error {
	return r.db.Close()
}
