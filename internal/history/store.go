package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultListLimit = 50

// Store keeps history in a SQLite database
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path and ensures the schema
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS operations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			tool TEXT NOT NULL,
			input_count INTEGER NOT NULL,
			input_names TEXT NOT NULL,
			input_bytes INTEGER NOT NULL,
			output_name TEXT NOT NULL,
			output_bytes INTEGER NOT NULL,
			output_mime_type TEXT NOT NULL,
			file_count INTEGER NOT NULL DEFAULT 0,
			compression_ratio INTEGER NOT NULL DEFAULT 0,
			format TEXT NOT NULL DEFAULT '',
			rotation_description TEXT NOT NULL DEFAULT '',
			password_protected INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_started_at ON operations(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_session_id ON operations(session_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts an entry. The stored id is assigned by the database.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO operations (
			session_id, tool, input_count, input_names, input_bytes,
			output_name, output_bytes, output_mime_type, file_count,
			compression_ratio, format, rotation_description, password_protected,
			started_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Tool, e.InputCount, e.InputNames, e.InputBytes,
		e.OutputName, e.OutputBytes, e.OutputMimeType, e.FileCount,
		e.CompressionRatio, e.Format, e.RotationDescription, e.PasswordProtected,
		e.StartedAt.UTC().Format(time.RFC3339Nano), e.DurationMillis,
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. limit <= 0 uses the default.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.query(ctx, `SELECT id, session_id, tool, input_count, input_names, input_bytes,
			output_name, output_bytes, output_mime_type, file_count, compression_ratio,
			format, rotation_description, password_protected, started_at, duration_ms
		FROM operations ORDER BY id DESC LIMIT ?`, limit)
}

// All returns every entry, oldest first
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	return s.query(ctx, `SELECT id, session_id, tool, input_count, input_names, input_bytes,
			output_name, output_bytes, output_mime_type, file_count, compression_ratio,
			format, rotation_description, password_protected, started_at, duration_ms
		FROM operations ORDER BY id ASC`)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedAt string
		if err := rows.Scan(
			&e.ID, &e.SessionID, &e.Tool, &e.InputCount, &e.InputNames, &e.InputBytes,
			&e.OutputName, &e.OutputBytes, &e.OutputMimeType, &e.FileCount, &e.CompressionRatio,
			&e.Format, &e.RotationDescription, &e.PasswordProtected, &startedAt, &e.DurationMillis,
		); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at %q: %w", startedAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
