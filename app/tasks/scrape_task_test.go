package tasks

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/o4f6bgpac3/iom-weather-scraper/app/database"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/runlog"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/scraper"
)

const testPage = `<html><body>
<div class="weather-issued">Issued on Monday, 01 January 2024 at 09:00am by the Met Office</div>
<h2>Today</h2>
<div class="weather-detailed">
  <div class="weather-detail">
    <img class="weather-state" src="/images/sun.png" alt="Sunny">
    <div class="temperature-max">12°C</div>
    <div class="temperature-min">5°C</div>
    <span class="wind-speed" title="Wind direction: South West backing">15 mph</span>
    <div class="weather-value"><p>A dry and bright day.</p></div>
  </div>
  <div class="weather-detail"><div class="weather-value"><p>Light southwesterly breeze</p></div></div>
  <div class="weather-detail"><div class="weather-value"><p>Good</p></div></div>
  <div class="weather-detail"><div class="weather-value">Nil</div></div>
  <div class="weather-detail"><div class="weather-value"><p>Settled conditions</p></div></div>
</div>
<h2>Tomorrow</h2>
<div class="weather-detailed">
  <div class="weather-detail">
    <img class="weather-state" src="/images/cloud.png" alt="Cloudy">
    <div class="temperature-max">10°C</div>
    <div class="temperature-min">4°C</div>
    <span class="wind-speed" title="Wind direction: West backing">10 mph</span>
    <div class="weather-value"><p>Cloudy with bright spells.</p></div>
  </div>
  <div class="weather-detail"><div class="weather-value"><p>Moderate westerly</p></div></div>
  <div class="weather-detail"><div class="weather-value"><p>Very good</p></div></div>
  <div class="weather-detail"><div class="weather-value">Light showers</div></div>
  <div class="weather-detail"><div class="weather-value"><p>Unsettled later</p></div></div>
</div>
<h2>Forecast by</h2>
<p>Ronaldsway Met Office</p>
</body></html>`

type testEnv struct {
	db        *database.DB
	snapshots *database.SnapshotRepository
	statuses  *database.RunStatusRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &testEnv{
		db:        db,
		snapshots: database.NewSnapshotRepository(db),
		statuses:  database.NewRunStatusRepository(db),
	}
}

func (env *testEnv) newTask(t *testing.T, url string) *ScrapeTask {
	t.Helper()

	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	logger := runlog.New(database.NewLogRepository(env.db), fallback)

	return NewScrapeTask(url, "iom-weather-scraper-test/1.0", 5*time.Second,
		&http.Client{}, scraper.NewExtractor(logger), env.snapshots, env.statuses, logger)
}

func (env *testEnv) count(t *testing.T, table string) int {
	t.Helper()
	var count int
	if err := env.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("Failed to count %s rows: %v", table, err)
	}
	return count
}

func TestExecuteStoresSnapshotAndForecasts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer server.Close()

	env := newTestEnv(t)
	task := env.newTask(t, server.URL)

	result, err := task.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Outcome != OutcomeInserted {
		t.Errorf("Expected outcome %q, got %q", OutcomeInserted, result.Outcome)
	}
	if result.RecordCount != 2 {
		t.Errorf("Expected 2 records, got %d", result.RecordCount)
	}
	if result.SnapshotID <= 0 {
		t.Errorf("Expected a positive snapshot id, got %d", result.SnapshotID)
	}

	if got := env.count(t, "forecasts"); got != 2 {
		t.Errorf("Expected 2 forecast rows, got %d", got)
	}

	succeeded, snapshotID, err := env.statuses.Get(time.Now().UTC())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !succeeded || snapshotID == nil || *snapshotID != result.SnapshotID {
		t.Errorf("Expected SUCCESS referencing snapshot %d, got %v %v", result.SnapshotID, succeeded, snapshotID)
	}
}

func TestExecuteIsIdempotentWithinWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer server.Close()

	env := newTestEnv(t)

	if _, err := env.newTask(t, server.URL).Execute(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	result, err := env.newTask(t, server.URL).Execute(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if result.Outcome != OutcomeAlreadyProcessed {
		t.Errorf("Expected outcome %q, got %q", OutcomeAlreadyProcessed, result.Outcome)
	}

	if got := env.count(t, "html_content"); got != 1 {
		t.Errorf("Expected 1 snapshot after rerun, got %d", got)
	}
	if got := env.count(t, "forecasts"); got != 2 {
		t.Errorf("Expected forecast rows unchanged after rerun, got %d", got)
	}
}

func TestExecuteReinsertsOutsideWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer server.Close()

	env := newTestEnv(t)

	if _, err := env.newTask(t, server.URL).Execute(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	// Age the stored snapshot past the dedup window.
	aged := time.Now().UTC().AddDate(0, 0, -10).Format(time.RFC3339)
	if _, err := env.db.Exec("UPDATE html_content SET fetched_at = ?", aged); err != nil {
		t.Fatalf("Failed to age snapshot: %v", err)
	}

	result, err := env.newTask(t, server.URL).Execute(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if result.Outcome != OutcomeInserted {
		t.Errorf("Expected identical content outside the window to be reinserted, got %q", result.Outcome)
	}

	if got := env.count(t, "html_content"); got != 2 {
		t.Errorf("Expected 2 snapshots, got %d", got)
	}
}

func TestExecuteFetchFailureRecordsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	env := newTestEnv(t)

	if _, err := env.newTask(t, server.URL).Execute(context.Background()); err == nil {
		t.Fatal("Expected Execute to fail on a non-2xx response")
	}

	succeeded, snapshotID, err := env.statuses.Get(time.Now().UTC())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if succeeded || snapshotID != nil {
		t.Errorf("Expected FAIL with no snapshot, got %v %v", succeeded, snapshotID)
	}
	if got := env.count(t, "html_content"); got != 0 {
		t.Errorf("Expected no snapshot rows, got %d", got)
	}
}

func TestExecuteExtractionFailureRecordsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>maintenance page</p></body></html>"))
	}))
	defer server.Close()

	env := newTestEnv(t)

	if _, err := env.newTask(t, server.URL).Execute(context.Background()); err == nil {
		t.Fatal("Expected Execute to fail without an issued-on banner")
	}

	succeeded, snapshotID, err := env.statuses.Get(time.Now().UTC())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if succeeded || snapshotID != nil {
		t.Errorf("Expected FAIL with no snapshot, got %v %v", succeeded, snapshotID)
	}
}

func TestExecuteLogsCarrySnapshotID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer server.Close()

	env := newTestEnv(t)

	result, err := env.newTask(t, server.URL).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var tagged int
	err = env.db.QueryRow("SELECT COUNT(*) FROM scraper_logs WHERE html_content_id = ?",
		result.SnapshotID).Scan(&tagged)
	if err != nil {
		t.Fatalf("Failed to count tagged log rows: %v", err)
	}
	if tagged == 0 {
		t.Error("Expected post-insert log entries to be tagged with the snapshot id")
	}
}
