package runlog

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/o4f6bgpac3/iom-weather-scraper/app/database"
)

// Store is the database sink for log entries.
type Store interface {
	Append(timestamp time.Time, level, message string, snapshotID *int64) error
}

// Logger writes leveled run log entries to the scraper_logs table, tagged
// with the current snapshot id once one exists. If the database write itself
// fails the entry goes to the fallback file sink instead; logging never
// returns an error to the pipeline.
type Logger struct {
	store      Store
	fallback   *slog.Logger
	snapshotID *int64
}

// New creates a run logger over the given store and fallback sink
func New(store Store, fallback *slog.Logger) *Logger {
	return &Logger{store: store, fallback: fallback}
}

// SetSnapshotID associates subsequent entries with a stored snapshot
func (l *Logger) SetSnapshotID(id int64) {
	l.snapshotID = &id
}

// Info appends an INFO entry
func (l *Logger) Info(message string) {
	l.log(database.LevelInfo, message)
}

// Error appends an ERROR entry
func (l *Logger) Error(message string) {
	l.log(database.LevelError, message)
}

func (l *Logger) log(level, message string) {
	err := l.store.Append(time.Now().UTC(), level, message, l.snapshotID)
	if err == nil {
		return
	}

	l.fallback.Error(fmt.Sprintf("failed to log to database: %v", err))
	switch level {
	case database.LevelError:
		l.fallback.Error(message)
	default:
		l.fallback.Info(message)
	}
}

// NewFileFallback opens an append-only text slog logger on the given file.
// If the file cannot be opened the fallback logs to stderr instead, so a
// fallback sink always exists.
func NewFileFallback(path string) *slog.Logger {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		logger.Error(fmt.Sprintf("failed to open log file %s: %v", path, err))
		return logger
	}
	return slog.New(slog.NewTextHandler(file, nil))
}
