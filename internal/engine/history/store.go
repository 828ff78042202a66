// Package history keeps a SQLite log of comment download attempts.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytdlp/internal/engine"
	_ "modernc.org/sqlite"
)

// Status is the outcome of a download attempt.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Entry is one recorded download attempt.
type Entry struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	VideoID      string `json:"video_id,omitempty"`
	CommentCount int    `json:"comment_count"`
	Status       Status `json:"status"`
	Error        string `json:"error,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
	CreatedAt    string `json:"created_at"`
}

// Query filters List. Zero values mean "default".
type Query struct {
	Status string
	Limit  int
}

// ListResult is the output of List.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Store is a handle on the history database.
type Store struct {
	db *sql.DB
}

// DefaultPath is $HOME/.go_ytdlp/history.db.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_ytdlp", "history.db")
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("history: mkdir %s: %w", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS downloads (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		url           TEXT NOT NULL,
		video_id      TEXT,
		comment_count INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL,
		error         TEXT,
		duration_ms   INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL
	)`)
	return err
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func validStatus(s string) bool {
	switch Status(s) {
	case StatusOK, StatusError:
		return true
	}
	return false
}

// Record inserts e and returns its id. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.URL == "" {
		return 0, errors.New("history: url is required")
	}
	if !validStatus(string(e.Status)) {
		return 0, fmt.Errorf("history: invalid status %q (valid: ok, error)", e.Status)
	}
	if e.CreatedAt == "" {
		e.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	e.Error = engine.TruncateRunes(e.Error, engine.MaxErrorRunes, "…")

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO downloads (url, video_id, comment_count, status, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.URL, e.VideoID, e.CommentCount, string(e.Status), e.Error, e.DurationMs, e.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	engine.IncrHistoryWrites()

	id, _ := res.LastInsertId()
	return id, nil
}

// List returns recent attempts, newest first.
func (s *Store) List(ctx context.Context, q Query) (*ListResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	where := ""
	var args []any
	if q.Status != "" {
		status := strings.ToLower(q.Status)
		if !validStatus(status) {
			return nil, fmt.Errorf("history: invalid status %q", q.Status)
		}
		where = " WHERE status = ?"
		args = append(args, status)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, video_id, comment_count, status, error, duration_ms, created_at
		 FROM downloads`+where+` ORDER BY id DESC LIMIT ?`,
		append(args, limit)...,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var videoID, errText sql.NullString
		if err := rows.Scan(&e.ID, &e.URL, &videoID, &e.CommentCount, &e.Status,
			&errText, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.VideoID = videoID.String
		e.Error = errText.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM downloads`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("history: count: %w", err)
	}

	return &ListResult{Entries: entries, Total: total}, nil
}
