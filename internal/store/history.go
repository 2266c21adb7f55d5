// Package store keeps a queryable job-history mirror of the metrics ledger
// in SQLite. The CSV ledger stays the source of truth for other tooling;
// this store exists so `scribed history` can answer questions without
// re-parsing CSV. Writes are best-effort: a store failure never fails a
// processing cycle.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"scribed/internal/types"
)

// HistoryStore records one row per processing attempt.
type HistoryStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// HistoryEntry is one recorded attempt, newest-first in listings.
type HistoryEntry struct {
	JobID       string
	Identity    string
	Status      types.JobStatus
	DurationSec float64
	Error       string
	CreatedAt   time.Time
}

// NewHistoryStore creates or opens the job history database.
func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &HistoryStore{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *HistoryStore) Path() string {
	return s.dbPath
}

func (s *HistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		job_id TEXT PRIMARY KEY,
		identity TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_sec REAL NOT NULL,
		error TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts one attempt.
func (s *HistoryStore) Record(identity string, outcome types.JobOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO jobs (job_id, identity, status, duration_sec, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		outcome.JobID, identity, string(outcome.Status),
		outcome.Duration.Seconds(), outcome.Error, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record job %s: %w", outcome.JobID, err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (s *HistoryStore) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT job_id, identity, status, duration_sec, COALESCE(error, ''), created_at
		 FROM jobs ORDER BY created_at DESC, job_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var status string
		if err := rows.Scan(&e.JobID, &e.Identity, &status, &e.DurationSec, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Status = types.JobStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts returns completed and failed totals.
func (s *HistoryStore) Counts() (completed, failed int, err error) {
	row := s.db.QueryRow(
		`SELECT
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END)
		 FROM jobs`,
		string(types.StatusCompleted), string(types.StatusFailed))
	if err := row.Scan(&completed, &failed); err != nil {
		return 0, 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return completed, failed, nil
}
