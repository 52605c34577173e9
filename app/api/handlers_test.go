package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/database"
)

func newTestServer(t *testing.T) (*gin.Engine, *database.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	handler := NewHandler(
		database.NewSnapshotRepository(db),
		database.NewRunStatusRepository(db),
	)
	return NewServer(handler), db
}

func get(t *testing.T, server *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	server.ServeHTTP(w, req)
	return w
}

func insertSnapshot(t *testing.T, db *database.DB, date time.Time) int64 {
	t.Helper()
	maxTemp := "12"
	description := "A dry and bright day."
	id, err := database.NewSnapshotRepository(db).Insert("<html>content</html>",
		time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
		[]database.Forecast{{Date: &date, MaxTemp: &maxTemp, Description: &description}})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	return id
}

func TestGetHealth(t *testing.T) {
	server, db := newTestServer(t)

	w := get(t, server, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if _, ok := body["snapshots"]; !ok {
		t.Error("Expected snapshot count in health response")
	}
	if _, ok := body["last_fetched_at"]; ok {
		t.Error("Expected no last_fetched_at for an empty store")
	}

	insertSnapshot(t, db, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))

	w = get(t, server, "/health")
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if _, ok := body["last_fetched_at"]; !ok {
		t.Error("Expected last_fetched_at after a snapshot insert")
	}
}

func TestGetStatusAbsentRow(t *testing.T) {
	server, _ := newTestServer(t)

	w := get(t, server, "/status/2024-03-15")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Succeeded {
		t.Error("Expected succeeded=false for an absent row")
	}
	if body.SnapshotID != nil {
		t.Errorf("Expected null snapshot id, got %v", body.SnapshotID)
	}
}

func TestGetStatusAfterSuccessfulRun(t *testing.T) {
	server, db := newTestServer(t)
	snapshotID := insertSnapshot(t, db, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))

	today := time.Now().UTC().Format("2006-01-02")
	w := get(t, server, "/status/"+today)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if !body.Succeeded {
		t.Error("Expected succeeded=true after a successful insert")
	}
	if body.SnapshotID == nil || *body.SnapshotID != snapshotID {
		t.Errorf("Expected snapshot id %d, got %v", snapshotID, body.SnapshotID)
	}
}

func TestGetStatusInvalidDate(t *testing.T) {
	server, _ := newTestServer(t)

	w := get(t, server, "/status/not-a-date")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
}

func TestGetForecasts(t *testing.T) {
	server, db := newTestServer(t)
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	snapshotID := insertSnapshot(t, db, date)

	w := get(t, server, "/forecasts/2024-01-01")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body []ForecastResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(body) != 1 {
		t.Fatalf("Expected 1 forecast, got %d", len(body))
	}
	if body[0].SnapshotID != snapshotID {
		t.Errorf("Expected snapshot id %d, got %d", snapshotID, body[0].SnapshotID)
	}
	if body[0].MaxTemp == nil || *body[0].MaxTemp != "12" {
		t.Errorf("Expected max temp '12', got %v", body[0].MaxTemp)
	}
	if body[0].Rainfall != nil {
		t.Errorf("Expected null rainfall, got %v", body[0].Rainfall)
	}
}

func TestGetForecastsEmptyDate(t *testing.T) {
	server, _ := newTestServer(t)

	w := get(t, server, "/forecasts/2030-01-01")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body []ForecastResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(body) != 0 {
		t.Errorf("Expected no forecasts, got %d", len(body))
	}
}
