package database

import (
	"time"
)

// Run status outcomes recorded in the run_status table.
const (
	StatusSuccess = "SUCCESS"
	StatusFail    = "FAIL"
)

// Log levels recorded in the scraper_logs table.
const (
	LevelInfo  = "INFO"
	LevelError = "ERROR"
)

// Snapshot represents one fetched copy of the forecast page
type Snapshot struct {
	ID          int64
	ContentHash string
	Content     string
	FetchedAt   time.Time
}

// Forecast represents one day's forecast row. Every extracted field is
// individually optional: nil means the source markup did not carry it.
type Forecast struct {
	ID            int64
	HTMLContentID int64
	IssuedOn      time.Time
	Date          *time.Time
	MaxTemp       *string
	MinTemp       *string
	WindSpeed     *string
	WindDirection *string
	WeatherState  *string
	Description   *string
	Wind          *string
	Visibility    *string
	Rainfall      *string
	Comments      *string
}

// LogEntry represents one scraper_logs row. HTMLContentID is nil for entries
// written before a snapshot exists (startup logging, fetch failures).
type LogEntry struct {
	ID            int64
	Timestamp     time.Time
	Level         string
	Message       string
	HTMLContentID *int64
}

// RunStatus represents the recorded outcome for one calendar run date
type RunStatus struct {
	ID            int64
	RunDate       time.Time
	Status        string
	HTMLContentID *int64
}
