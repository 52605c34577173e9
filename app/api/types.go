package api

import (
	"time"

	"github.com/o4f6bgpac3/iom-weather-scraper/app/database"
)

// RunStatusReader answers run status queries.
type RunStatusReader interface {
	Get(date time.Time) (bool, *int64, error)
}

// SnapshotReader reads persisted snapshots and forecasts.
type SnapshotReader interface {
	Count() (int, error)
	Latest() (*database.Snapshot, error)
	GetForecastsByDate(date time.Time) ([]database.Forecast, error)
}

var (
	_ RunStatusReader = (*database.RunStatusRepository)(nil)
	_ SnapshotReader  = (*database.SnapshotRepository)(nil)
)

// Handler serves the read-only status API
type Handler struct {
	snapshots SnapshotReader
	runStatus RunStatusReader
}

// StatusResponse is the JSON body for run status queries
type StatusResponse struct {
	Date       string `json:"date"`
	Succeeded  bool   `json:"succeeded"`
	SnapshotID *int64 `json:"snapshot_id"`
}

// ForecastResponse is the JSON body for one persisted forecast row
type ForecastResponse struct {
	ID            int64   `json:"id"`
	SnapshotID    int64   `json:"snapshot_id"`
	IssuedOn      string  `json:"issued_on"`
	Date          *string `json:"date"`
	MaxTemp       *string `json:"max_temp"`
	MinTemp       *string `json:"min_temp"`
	WindSpeed     *string `json:"wind_speed"`
	WindDirection *string `json:"wind_direction"`
	WeatherState  *string `json:"weather_state"`
	Description   *string `json:"description"`
	Wind          *string `json:"wind"`
	Visibility    *string `json:"visibility"`
	Rainfall      *string `json:"rainfall"`
	Comments      *string `json:"comments"`
}
