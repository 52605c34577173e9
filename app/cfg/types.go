package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Scraper configuration
	SourceConfig string
	LogFile      string
	UserAgent    string
	Timeout      int

	// Status query configuration
	Date string

	// HTTP API configuration
	Port string

	// Application metadata
	Debug   bool
	Version string
}
