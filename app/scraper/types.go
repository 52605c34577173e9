package scraper

import "time"

// Forecast holds one day's extracted fields. Every field other than the
// resolved date comes from an independent selector lookup; nil means the
// markup did not carry it.
type Forecast struct {
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

// Logger is the run-scoped logger the extractor reports recoverable lookup
// failures to.
type Logger interface {
	Info(message string)
	Error(message string)
}
