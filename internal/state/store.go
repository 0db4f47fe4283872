// Package state persists validation run history in a local SQLite
// database with embedded migrations.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver
)

// Run is one recorded validation: the statement, the verdict, and timing.
type Run struct {
	ID        string
	Source    string
	SQL       string
	Passed    bool
	Stage     string
	Message   string
	Duration  time.Duration
	CreatedAt time.Time
}

// Store is the SQLite-backed validation history store.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating if needed) the history database at path and runs
// pending migrations. Use ":memory:" for an in-memory store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts one validation run. A missing ID or CreatedAt is
// filled in.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if s.db == nil {
		return fmt.Errorf("state database not opened")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO validation_runs (id, source, sql_text, passed, stage, message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.SQL, run.Passed, run.Stage, run.Message,
		run.Duration.Milliseconds(), run.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record validation run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("state database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, sql_text, passed, stage, message, duration_ms, created_at
		FROM validation_runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			durationMS int64
			createdAt  string
		)
		if err := rows.Scan(&run.ID, &run.Source, &run.SQL, &run.Passed, &run.Stage, &run.Message, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan validation run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			run.CreatedAt = t
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validation runs: %w", err)
	}
	return runs, nil
}
