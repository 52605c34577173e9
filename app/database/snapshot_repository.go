package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// SnapshotRepository handles database operations for page snapshots and the
// forecast rows that belong to them
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// HashContent returns the content-addressed digest used for deduplication
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Exists reports whether a snapshot with this content hash was fetched within
// the rolling dedup window: yesterday through tomorrow, relative to the clock.
// The window is a fixed policy constant; it is not derived from the issued-on
// timestamp of the page.
func (r *SnapshotRepository) Exists(contentHash string) (bool, error) {
	now := time.Now().UTC()
	lower := formatDate(now.AddDate(0, 0, -1))
	upper := formatDate(now.AddDate(0, 0, 1))

	var id int64
	err := r.db.QueryRow(`
		SELECT id FROM html_content
		WHERE content_hash = ? AND DATE(fetched_at) BETWEEN ? AND ?
		LIMIT 1
	`, contentHash, lower, upper).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check content hash: %w", err)
	}

	return true, nil
}

// Insert stores a snapshot, its forecast rows and the SUCCESS run status for
// today as one transaction. On any failure the whole unit rolls back and no
// partial rows remain.
func (r *SnapshotRepository) Insert(content string, issuedOn time.Time, forecasts []Forecast) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	res, err := tx.Exec(`
		INSERT INTO html_content (content_hash, content, fetched_at)
		VALUES (?, ?, ?)
	`, HashContent(content), content, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	snapshotID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot id: %w", err)
	}

	for _, f := range forecasts {
		_, err := tx.Exec(`
			INSERT INTO forecasts (
				html_content_id, issued_on, date, max_temp, min_temp,
				wind_speed, wind_direction, weather_state, description,
				wind, visibility, rainfall, comments
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, snapshotID, formatTime(issuedOn), formatDatePtr(f.Date),
			f.MaxTemp, f.MinTemp, f.WindSpeed, f.WindDirection,
			f.WeatherState, f.Description, f.Wind, f.Visibility,
			f.Rainfall, f.Comments)
		if err != nil {
			return 0, fmt.Errorf("failed to insert forecast: %w", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO run_status (run_date, status, html_content_id)
		VALUES (?, ?, ?)
		ON CONFLICT (run_date) DO UPDATE SET
			status = excluded.status,
			html_content_id = excluded.html_content_id
	`, formatDate(now), StatusSuccess, snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert run status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return snapshotID, nil
}

// Latest returns the most recently fetched snapshot without its raw content,
// or nil when none exist.
func (r *SnapshotRepository) Latest() (*Snapshot, error) {
	var s Snapshot
	var fetchedAt string

	err := r.db.QueryRow(`
		SELECT id, content_hash, fetched_at FROM html_content
		ORDER BY fetched_at DESC
		LIMIT 1
	`).Scan(&s.ID, &s.ContentHash, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	if s.FetchedAt, err = parseTime(fetchedAt); err != nil {
		return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
	}

	return &s, nil
}

// Count returns the number of stored snapshots
func (r *SnapshotRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM html_content`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// GetForecastsByDate returns the persisted forecast rows for a calendar date
func (r *SnapshotRepository) GetForecastsByDate(date time.Time) ([]Forecast, error) {
	rows, err := r.db.Query(`
		SELECT id, html_content_id, issued_on, date, max_temp, min_temp,
		       wind_speed, wind_direction, weather_state, description,
		       wind, visibility, rainfall, comments
		FROM forecasts
		WHERE date = ?
		ORDER BY id
	`, formatDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []Forecast
	for rows.Next() {
		var f Forecast
		var issuedOn string
		var forecastDate sql.NullString

		err := rows.Scan(&f.ID, &f.HTMLContentID, &issuedOn, &forecastDate,
			&f.MaxTemp, &f.MinTemp, &f.WindSpeed, &f.WindDirection,
			&f.WeatherState, &f.Description, &f.Wind, &f.Visibility,
			&f.Rainfall, &f.Comments)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forecast: %w", err)
		}

		if f.IssuedOn, err = parseTime(issuedOn); err != nil {
			return nil, fmt.Errorf("failed to parse issued_on: %w", err)
		}
		if forecastDate.Valid {
			d, err := parseDate(forecastDate.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse forecast date: %w", err)
			}
			f.Date = &d
		}

		forecasts = append(forecasts, f)
	}

	return forecasts, rows.Err()
}
