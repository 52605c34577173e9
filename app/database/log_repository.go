package database

import (
	"fmt"
	"time"
)

// LogRepository handles database operations for scraper log entries
type LogRepository struct {
	db *DB
}

// NewLogRepository creates a new log repository
func NewLogRepository(db *DB) *LogRepository {
	return &LogRepository{db: db}
}

// Append writes one log entry. snapshotID may be nil for entries logged
// before a snapshot exists.
func (r *LogRepository) Append(timestamp time.Time, level, message string, snapshotID *int64) error {
	_, err := r.db.Exec(`
		INSERT INTO scraper_logs (timestamp, level, message, html_content_id)
		VALUES (?, ?, ?, ?)
	`, formatTime(timestamp), level, message, snapshotID)
	if err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}
