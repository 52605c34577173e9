package config

// SourceConfig is the root of an optional YAML source definition file
type SourceConfig struct {
	Source Source `yaml:"source"`
}

// Source describes the forecast page being scraped
type Source struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"` // seconds, 0 means use the process default
}
