package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"data.db" description:"Path to the sqlite database file"`

	// Scraper configuration
	SourceConfig string `long:"source-config" env:"SOURCE_CONFIG" description:"Optional YAML file describing the forecast source"`
	LogFile      string `long:"log-file" env:"LOG_FILE" default:"weather_scraper.log" description:"Fallback log file used when database logging fails"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"iom-weather-scraper/1.0" description:"User agent string for HTTP requests"`
	Timeout      int    `long:"timeout" env:"FETCH_TIMEOUT" default:"30" description:"Fetch timeout in seconds"`

	// Status query configuration
	Date string `short:"d" long:"date" env:"RUN_DATE" description:"Date to check in YYYY-MM-DD format (status query only, defaults to today)"`

	// HTTP API configuration
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP status API port"`

	// Application metadata
	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses configuration from command-line flags and environment
// variables. A nil, nil return means help was requested and shown.
func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:       raw.DBPath,
		SourceConfig: raw.SourceConfig,
		LogFile:      raw.LogFile,
		UserAgent:    raw.UserAgent,
		Timeout:      raw.Timeout,
		Date:         raw.Date,
		Port:         raw.Port,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
