package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/database"
)

const dateParamLayout = "2006-01-02"

// NewHandler creates the status API handler over the given repositories
func NewHandler(snapshots SnapshotReader, runStatus RunStatusReader) *Handler {
	return &Handler{
		snapshots: snapshots,
		runStatus: runStatus,
	}
}

// GetHealth reports service liveness and basic store counts
func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	count, err := h.snapshots.Count()
	if err != nil {
		slog.Error("Database error", "operation", "count_snapshots", "error", err)
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	health["snapshots"] = count

	latest, err := h.snapshots.Latest()
	if err != nil {
		slog.Error("Database error", "operation", "latest_snapshot", "error", err)
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	if latest != nil {
		health["last_fetched_at"] = latest.FetchedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

// GetStatus answers whether the scrape run for a date succeeded and which
// snapshot backs it. An absent run_status row reads the same as a FAIL.
func (h *Handler) GetStatus(c *gin.Context) {
	date, err := time.Parse(dateParamLayout, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}

	succeeded, snapshotID, err := h.runStatus.Get(date)
	if err != nil {
		slog.Error("Database error", "operation", "get_run_status", "date", c.Param("date"), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Date:       date.Format(dateParamLayout),
		Succeeded:  succeeded,
		SnapshotID: snapshotID,
	})
}

// GetForecasts returns the persisted forecast rows for a date
func (h *Handler) GetForecasts(c *gin.Context) {
	date, err := time.Parse(dateParamLayout, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}

	forecasts, err := h.snapshots.GetForecastsByDate(date)
	if err != nil {
		slog.Error("Database error", "operation", "get_forecasts", "date", c.Param("date"), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	responses := make([]ForecastResponse, 0, len(forecasts))
	for _, f := range forecasts {
		responses = append(responses, toForecastResponse(f))
	}

	c.JSON(http.StatusOK, responses)
}

func toForecastResponse(f database.Forecast) ForecastResponse {
	resp := ForecastResponse{
		ID:            f.ID,
		SnapshotID:    f.HTMLContentID,
		IssuedOn:      f.IssuedOn.Format(time.RFC3339),
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
	}
	if f.Date != nil {
		date := f.Date.Format(dateParamLayout)
		resp.Date = &date
	}
	return resp
}
