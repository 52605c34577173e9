package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		DBPath:       "data.db",
		SourceConfig: "source.yml",
		LogFile:      "weather_scraper.log",
		UserAgent:    "test-agent",
		Timeout:      30,
		Date:         "2024-01-01",
		Port:         "8080",
		Debug:        true,
		Version:      "test-version",
	}

	if cfg.DBPath != "data.db" {
		t.Errorf("Expected db path 'data.db', got '%s'", cfg.DBPath)
	}
	if cfg.LogFile != "weather_scraper.log" {
		t.Errorf("Expected log file 'weather_scraper.log', got '%s'", cfg.LogFile)
	}
	if cfg.Timeout != 30 {
		t.Errorf("Expected timeout 30, got %d", cfg.Timeout)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestGetPanicsBeforeLoad(t *testing.T) {
	if globalCfg != nil {
		t.Skip("configuration already loaded")
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected Get to panic before Load")
		}
	}()
	Get()
}
