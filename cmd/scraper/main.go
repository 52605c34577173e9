package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/o4f6bgpac3/iom-weather-scraper/app/cfg"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/config"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/database"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/runlog"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/scraper"
	"github.com/o4f6bgpac3/iom-weather-scraper/app/tasks"
)

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if appCfg == nil {
		// Help was shown
		return 0
	}

	setupSlog(appCfg.Debug)
	fallback := runlog.NewFileFallback(appCfg.LogFile)

	source, err := config.NewLoader(appCfg.SourceConfig).Load()
	if err != nil {
		fmt.Printf("Failed to load source configuration: %v\n", err)
		return 1
	}

	timeout := time.Duration(appCfg.Timeout) * time.Second
	if source.Timeout > 0 {
		timeout = time.Duration(source.Timeout) * time.Second
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		fallback.Error(fmt.Sprintf("database error: %v", err))
		fmt.Println("Failed to establish database connection. Falling back to file logging.")
		return 1
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		fallback.Error(fmt.Sprintf("migration error: %v", err))
		fmt.Printf("Failed to migrate database: %v\n", err)
		return 1
	}
	slog.Debug("Database migrations applied", "version", version, "dirty", dirty)

	logger := runlog.New(database.NewLogRepository(db), fallback)

	task := tasks.NewScrapeTask(
		source.URL,
		appCfg.UserAgent,
		timeout,
		&http.Client{},
		scraper.NewExtractor(logger),
		database.NewSnapshotRepository(db),
		database.NewRunStatusRepository(db),
		logger,
	)

	slog.Info("Starting scrape run", "source", source.Name, "url", source.URL, "version", appCfg.Version)

	result, err := task.Execute(context.Background())
	if err != nil {
		fmt.Printf("Scrape failed: %v\n", err)
		return 1
	}

	switch result.Outcome {
	case tasks.OutcomeAlreadyProcessed:
		fmt.Println("This content has already been processed in the last 3 days. No new data to add.")
	default:
		fmt.Println("Weather forecast data has been successfully scraped and stored in the database.")
	}

	slog.Info("Scrape run finished",
		"outcome", string(result.Outcome),
		"records", result.RecordCount,
		"duration", task.GetDuration())

	return 0
}

func setupSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
