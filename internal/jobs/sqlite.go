package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // driver registration

	"github.com/pulsecut/pulsecut/internal/types"
)

// SQLiteStore persists job records across process restarts.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	dbPath := dsn
	if idx := strings.Index(dsn, "?"); idx != -1 {
		dbPath = dsn[:idx]
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// Serialize writers rather than erroring out under concurrent jobs.
	if !strings.Contains(dsn, "_busy_timeout") {
		if strings.Contains(dsn, "?") {
			dsn += "&_busy_timeout=5000"
		} else {
			dsn += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	const schema = `
    CREATE TABLE IF NOT EXISTS jobs (
        id TEXT PRIMARY KEY,
        input TEXT NOT NULL,
        status TEXT NOT NULL,
        progress INTEGER NOT NULL DEFAULT 0,
        message TEXT NOT NULL DEFAULT '',
        manifest TEXT,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );
    `
	_, err := db.Exec(schema)
	return err
}

func (s *SQLiteStore) Create(ctx context.Context, job types.JobRecord) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, input, status, progress, message, created_at, updated_at)
         VALUES (?, ?, ?, 0, ?, ?, ?)`,
		job.ID, job.Input, types.JobQueued, job.Message, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, id string, status types.JobStatus, progress int, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, progress = ?, message = ?, updated_at = ? WHERE id = ?`,
		status, progress, message, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return requireRow(res, id)
}

func (s *SQLiteStore) Complete(ctx context.Context, id string, manifest types.Manifest) error {
	b, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, progress = 100, message = ?, manifest = ?, updated_at = ? WHERE id = ?`,
		types.JobCompleted, fmt.Sprintf("completed with %d clips", len(manifest.Clips)), string(b), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return requireRow(res, id)
}

func (s *SQLiteStore) Fail(ctx context.Context, id string, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, message = ?, updated_at = ? WHERE id = ?`,
		types.JobFailed, message, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return requireRow(res, id)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (types.JobRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input, status, progress, message, manifest, created_at, updated_at FROM jobs WHERE id = ?`, id)

	var (
		job      types.JobRecord
		manifest sql.NullString
	)
	err := row.Scan(&job.ID, &job.Input, &job.Status, &job.Progress, &job.Message, &manifest, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.JobRecord{}, fmt.Errorf("job %s not found", id)
	}
	if err != nil {
		return types.JobRecord{}, fmt.Errorf("scan job: %w", err)
	}
	if manifest.Valid && manifest.String != "" {
		var m types.Manifest
		if err := json.Unmarshal([]byte(manifest.String), &m); err != nil {
			return types.JobRecord{}, fmt.Errorf("unmarshal manifest: %w", err)
		}
		job.Manifest = &m
	}
	return job, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %s not found", id)
	}
	return nil
}
