package tasks

import (
	"time"

	"github.com/o4f6bgpac3/iom-weather-scraper/app/database"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/scraper"
)

// SnapshotStore is the content store the scrape task persists through.
type SnapshotStore interface {
	Exists(contentHash string) (bool, error)
	Insert(content string, issuedOn time.Time, forecasts []database.Forecast) (int64, error)
}

// RunStatusStore records per-date run outcomes.
type RunStatusStore interface {
	RecordFailure(date time.Time) error
}

// Logger is the run-scoped logger used throughout the pipeline.
type Logger interface {
	Info(message string)
	Error(message string)
	SetSnapshotID(id int64)
}

// ExtractorInterface turns raw page markup into dated forecast records.
type ExtractorInterface interface {
	Run(data []byte) (*time.Time, []scraper.Forecast)
}

var _ ExtractorInterface = (*scraper.Extractor)(nil)
