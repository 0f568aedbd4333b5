// Package history keeps a local record of download outcomes in SQLite,
// so batch runs can skip recordings that already completed.
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

	_ "modernc.org/sqlite"
)

// Status of one recorded download attempt.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Entry is one download outcome.
type Entry struct {
	ID           int64
	BaseFilename string
	URL          string
	Status       Status
	Files        []string
	Error        string
	CreatedAt    string
}

type DB struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
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
	return &DB{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS downloads (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		base_filename TEXT NOT NULL,
		url           TEXT NOT NULL,
		status        TEXT NOT NULL,
		files         TEXT,
		error         TEXT,
		created_at    TEXT NOT NULL
	)`)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Record stores one outcome.
func (d *DB) Record(ctx context.Context, e Entry) error {
	if e.BaseFilename == "" || e.URL == "" {
		return errors.New("history: base_filename and url are required")
	}
	if e.Status != StatusOK && e.Status != StatusFailed {
		return fmt.Errorf("history: invalid status %q (valid: ok, failed)", e.Status)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO downloads (base_filename, url, status, files, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.BaseFilename, e.URL, string(e.Status), strings.Join(e.Files, ";"), e.Error, now)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}
	return nil
}

// List returns entries, newest first. status "" means all; limit <= 0
// defaults to 50.
func (d *DB) List(ctx context.Context, status Status, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, base_filename, url, status, files, error, created_at
	          FROM downloads`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var files string
		if err := rows.Scan(&e.ID, &e.BaseFilename, &e.URL, &e.Status, &files, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if files != "" {
			e.Files = strings.Split(files, ";")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// WasDownloaded reports whether an ok outcome exists for this job.
func (d *DB) WasDownloaded(ctx context.Context, base, url string) (bool, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM downloads WHERE base_filename = ? AND url = ? AND status = 'ok'`,
		base, url).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("history: lookup: %w", err)
	}
	return n > 0, nil
}
