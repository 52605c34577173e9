package database

import (
	"database/sql"
	"fmt"
	"time"
)

// RunStatusRepository handles database operations for per-date run outcomes
type RunStatusRepository struct {
	db *DB
}

// NewRunStatusRepository creates a new run status repository
func NewRunStatusRepository(db *DB) *RunStatusRepository {
	return &RunStatusRepository{db: db}
}

// RecordFailure upserts a FAIL row with no snapshot reference for the date.
// A later run for the same date overwrites the earlier status.
func (r *RunStatusRepository) RecordFailure(date time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO run_status (run_date, status, html_content_id)
		VALUES (?, ?, NULL)
		ON CONFLICT (run_date) DO UPDATE SET
			status = excluded.status,
			html_content_id = NULL
	`, formatDate(date), StatusFail)
	if err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	return nil
}

// Get returns whether the run for the date succeeded and the snapshot id that
// produced it. An absent row is reported identically to a recorded FAIL:
// callers cannot distinguish "never ran" from "ran and failed" here.
func (r *RunStatusRepository) Get(date time.Time) (bool, *int64, error) {
	var status string
	var snapshotID sql.NullInt64

	err := r.db.QueryRow(`
		SELECT status, html_content_id FROM run_status WHERE run_date = ?
	`, formatDate(date)).Scan(&status, &snapshotID)
	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("failed to query run status: %w", err)
	}

	if status != StatusSuccess {
		return false, nil, nil
	}
	if !snapshotID.Valid {
		return true, nil, nil
	}
	return true, &snapshotID.Int64, nil
}
