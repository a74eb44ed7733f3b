package store

import (
	"context"
	"database/sql"
	"time"
)

// ImportRun audits a single CSV import.
type ImportRun struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	Source       string
	PayloadHash  sql.NullString
	RowsParsed   sql.NullInt64
	RowsStored   sql.NullInt64
	RowsFlagged  sql.NullInt64 // Rows stored with quality flags
	Success      bool
	ErrorMessage sql.NullString
}

// StartImportRun records the start of an import.
func (s *Store) StartImportRun(ctx context.Context, id, source string, startedAt time.Time) (*ImportRun, error) {
	run := &ImportRun{
		ID:        id,
		StartedAt: startedAt.UTC(),
		Source:    source,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (id, started_at, source, success)
		VALUES (?, ?, ?, FALSE)
	`, run.ID, run.StartedAt, run.Source)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteImportRun stores the outcome of run.
func (s *Store) CompleteImportRun(ctx context.Context, run *ImportRun, finishedAt time.Time) error {
	if run == nil {
		return nil
	}

	run.FinishedAt = sql.NullTime{Time: finishedAt.UTC(), Valid: true}

	_, err := s.db.ExecContext(ctx, `
		UPDATE import_runs SET
			finished_at = ?,
			payload_hash = ?,
			rows_parsed = ?,
			rows_stored = ?,
			rows_flagged = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.PayloadHash, run.RowsParsed, run.RowsStored,
		run.RowsFlagged, run.Success, run.ErrorMessage, run.ID)
	return err
}

// LatestImportRun returns the most recently started run, or nil if none exist.
func (s *Store) LatestImportRun(ctx context.Context) (*ImportRun, error) {
	var run ImportRun
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, source, payload_hash, rows_parsed, rows_stored, rows_flagged, success, error_message
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Source, &run.PayloadHash,
		&run.RowsParsed, &run.RowsStored, &run.RowsFlagged, &run.Success, &run.ErrorMessage)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
