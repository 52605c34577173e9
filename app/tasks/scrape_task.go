package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/o4f6bgpac3/iom-weather-scraper/app/database"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/scraper"
)

// Outcome describes how a completed scrape run ended.
type Outcome string

const (
	// OutcomeInserted means a new snapshot and its forecasts were stored.
	OutcomeInserted Outcome = "inserted"
	// OutcomeAlreadyProcessed means identical content was fetched within the
	// dedup window and nothing was stored. The run status row is deliberately
	// left untouched on this path: an earlier success for this content stands.
	OutcomeAlreadyProcessed Outcome = "already_processed"
)

// Result summarizes a successful scrape run
type Result struct {
	Outcome     Outcome
	SnapshotID  int64
	RecordCount int
}

// ScrapeTask runs one scrape: fetch, dedup check, extraction, atomic
// persistence and run status update.
//
// At most one task may run against a given database at a time; two
// simultaneous invocations race on the run_status upsert (last writer wins)
// and may insert distinct snapshots. Callers needing concurrent safety must
// serialize invocations externally.
type ScrapeTask struct {
	url        string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	extractor  ExtractorInterface
	snapshots  SnapshotStore
	runStatus  RunStatusStore
	logger     Logger
	startedAt  time.Time
}

// NewScrapeTask creates a scrape task for the given source URL
func NewScrapeTask(url, userAgent string, timeout time.Duration, httpClient *http.Client,
	extractor ExtractorInterface, snapshots SnapshotStore, runStatus RunStatusStore,
	logger Logger) *ScrapeTask {
	return &ScrapeTask{
		url:        url,
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: httpClient,
		extractor:  extractor,
		snapshots:  snapshots,
		runStatus:  runStatus,
		logger:     logger,
	}
}

// Execute runs the pipeline once. The returned error is user-facing; a nil
// error with a Result means the run reached a successful terminal state.
func (t *ScrapeTask) Execute(ctx context.Context) (*Result, error) {
	t.startedAt = time.Now()
	t.logger.Info("weather scraper started")
	defer t.logger.Info("weather scraper finished")

	content, err := t.fetchPage(ctx)
	if err != nil {
		t.logger.Error(fmt.Sprintf("an error occurred while fetching the URL: %v", err))
		t.recordFailure()
		return nil, fmt.Errorf("failed to fetch the web page: %w", err)
	}

	contentHash := database.HashContent(content)
	processed, err := t.snapshots.Exists(contentHash)
	if err != nil {
		t.logger.Error(fmt.Sprintf("error checking for existing content: %v", err))
		t.recordFailure()
		return nil, fmt.Errorf("failed to check for existing content: %w", err)
	}
	if processed {
		t.logger.Info(fmt.Sprintf("content with hash %s has already been processed in the last 3 days, skipping", contentHash))
		return &Result{Outcome: OutcomeAlreadyProcessed}, nil
	}

	issuedOn, forecasts := t.extractor.Run([]byte(content))
	if issuedOn == nil || len(forecasts) == 0 {
		t.logger.Error("failed to scrape weather data")
		t.recordFailure()
		return nil, errors.New("failed to scrape weather data")
	}

	snapshotID, err := t.snapshots.Insert(content, *issuedOn, toRows(forecasts))
	if err != nil {
		t.logger.Error(fmt.Sprintf("error inserting data into database: %v", err))
		t.recordFailure()
		return nil, fmt.Errorf("failed to insert data into the database: %w", err)
	}

	t.logger.SetSnapshotID(snapshotID)
	t.logger.Info(fmt.Sprintf("successfully inserted %d forecasts into the database", len(forecasts)))

	return &Result{
		Outcome:     OutcomeInserted,
		SnapshotID:  snapshotID,
		RecordCount: len(forecasts),
	}, nil
}

// GetDuration returns how long the task has been running
func (t *ScrapeTask) GetDuration() time.Duration {
	if t.startedAt.IsZero() {
		return 0
	}
	return time.Since(t.startedAt)
}

func (t *ScrapeTask) fetchPage(ctx context.Context) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", t.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), nil
}

// recordFailure flips today's run status to FAIL. A failure while recording
// the failure is only logged; the run is already failing.
func (t *ScrapeTask) recordFailure() {
	if err := t.runStatus.RecordFailure(time.Now().UTC()); err != nil {
		t.logger.Error(fmt.Sprintf("error recording run failure: %v", err))
	}
}

func toRows(forecasts []scraper.Forecast) []database.Forecast {
	rows := make([]database.Forecast, 0, len(forecasts))
	for _, f := range forecasts {
		rows = append(rows, database.Forecast{
			Date:          f.Date,
			MaxTemp:       f.MaxTemp,
			MinTemp:       f.MinTemp,
			WindSpeed:     f.WindSpeed,
			WindDirection: f.WindDirection,
			WeatherState:  f.WeatherState,
			Description:   f.Description,
			Wind:          f.Wind,
			Visibility:    f.Visibility,
			Rainfall:      f.Rainfall,
			Comments:      f.Comments,
		})
	}
	return rows
}
