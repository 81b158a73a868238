// Package journal keeps an optional SQLite record of translation runs so an
// operator can see what was translated when, with which backend, and how
// often the backend fell back to the original text.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	backend     TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	written     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	fallbacks   INTEGER NOT NULL DEFAULT 0,
	error       TEXT
);

CREATE TABLE IF NOT EXISTS posts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	language    TEXT NOT NULL,
	name        TEXT NOT NULL,
	status      TEXT NOT NULL,
	fallbacks   INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error       TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_run ON posts(run_id);
`

// Post statuses
const (
	StatusWritten = "written"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Run is a recorded invocation of sync or retranslate
type Run struct {
	ID         string
	Command    string
	Backend    string
	StartedAt  time.Time
	FinishedAt time.Time
	Written    int
	Failed     int
	Skipped    int
	Fallbacks  int
	Error      string
}

// Post is the outcome of one post translation within a run
type Post struct {
	Language  string
	Name      string
	Status    string
	Fallbacks int
	Duration  time.Duration
	Error     string
}

// Summary holds the totals recorded when a run finishes
type Summary struct {
	Written   int
	Failed    int
	Skipped   int
	Fallbacks int
	Err       error
}

// Journal is a handle on the journal database
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the journal database at path
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// StartRun records the start of a run and returns its id
func (j *Journal) StartRun(ctx context.Context, command, backend string) (string, error) {
	id := uuid.New().String()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, backend, started_at) VALUES (?, ?, ?, ?)`,
		id, command, backend, j.timestamp())
	if err != nil {
		return "", fmt.Errorf("failed to record run start: %w", err)
	}
	return id, nil
}

// RecordPost records the outcome of a single post translation
func (j *Journal) RecordPost(ctx context.Context, runID string, p Post) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO posts (run_id, language, name, status, fallbacks, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, p.Language, p.Name, p.Status, p.Fallbacks, p.Duration.Milliseconds(), nullString(p.Error), j.timestamp())
	if err != nil {
		return fmt.Errorf("failed to record post: %w", err)
	}
	return nil
}

// FinishRun records the totals of a run
func (j *Journal) FinishRun(ctx context.Context, runID string, s Summary) error {
	var errText string
	if s.Err != nil {
		errText = s.Err.Error()
	}
	res, err := j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, written = ?, failed = ?, skipped = ?, fallbacks = ?, error = ? WHERE id = ?`,
		j.timestamp(), s.Written, s.Failed, s.Skipped, s.Fallbacks, nullString(errText), runID)
	if err != nil {
		return fmt.Errorf("failed to record run end: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("unknown run: %s", runID)
	}
	return nil
}

// Recent returns up to limit runs, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, command, backend, started_at, COALESCE(finished_at, ''), written, failed, skipped, fallbacks, COALESCE(error, '')
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Command, &r.Backend, &started, &finished,
			&r.Written, &r.Failed, &r.Skipped, &r.Fallbacks, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to read run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Posts returns the post records of a run in recording order
func (j *Journal) Posts(ctx context.Context, runID string) ([]Post, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT language, name, status, fallbacks, duration_ms, COALESCE(error, '')
		 FROM posts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []Post
	for rows.Next() {
		var p Post
		var ms int64
		if err := rows.Scan(&p.Language, &p.Name, &p.Status, &p.Fallbacks, &ms, &p.Error); err != nil {
			return nil, fmt.Errorf("failed to read post: %w", err)
		}
		p.Duration = time.Duration(ms) * time.Millisecond
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (j *Journal) timestamp() string {
	return j.now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
