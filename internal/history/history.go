// Package history journals completed conversion jobs to a small SQLite
// database so past runs stay auditable after the interactive session is
// gone. It is bookkeeping only: the pipeline and classifier never read
// it, conversion state is always re-derived from the filesystem.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one journaled conversion job.
type Entry struct {
	ID             int64
	JobID          string
	Source         string
	Output         string
	MetadataPolicy string
	Status         string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the history database location under the user's
// data directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "dovimux", "history.db"), nil
}

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Record appends one finished job to the journal.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversions (
            job_id, source, output, metadata_policy, status, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.JobID,
		entry.Source,
		entry.Output,
		entry.MetadataPolicy,
		entry.Status,
		entry.StartedAt.UTC().Format(time.RFC3339Nano),
		entry.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first. A non-positive
// limit defaults to 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, job_id, source, output, metadata_policy, status, started_at, finished_at
         FROM conversions ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var started, finished string
		if err := rows.Scan(
			&entry.ID, &entry.JobID, &entry.Source, &entry.Output,
			&entry.MetadataPolicy, &entry.Status, &started, &finished,
		); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		entry.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		entry.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS conversions (
            id              INTEGER PRIMARY KEY AUTOINCREMENT,
            job_id          TEXT NOT NULL,
            source          TEXT NOT NULL,
            output          TEXT NOT NULL,
            metadata_policy TEXT NOT NULL,
            status          TEXT NOT NULL,
            started_at      TEXT NOT NULL,
            finished_at     TEXT NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("apply history schema: %w", err)
	}
	return nil
}
