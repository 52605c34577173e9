package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultURL is the published five-day forecast page this scraper targets.
const DefaultURL = "https://www.gov.im/weather/5-day-forecast/"

const defaultName = "gov-im-5-day-forecast"

// Loader handles loading and validation of the source definition
type Loader struct {
	path string
}

// NewLoader creates a loader for the given YAML file path. An empty path
// means no file was configured and the built-in default source is used.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load returns the source definition, falling back to the built-in default
// when no file is configured.
func (l *Loader) Load() (*Source, error) {
	source := &Source{
		Name: defaultName,
		URL:  DefaultURL,
	}
	if l.path == "" {
		return source, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source config: %w", err)
	}

	var config SourceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse source config: %w", err)
	}

	l.setDefaults(&config.Source)

	if err := l.validate(&config.Source); err != nil {
		return nil, fmt.Errorf("invalid source config %s: %w", l.path, err)
	}

	return &config.Source, nil
}

func (l *Loader) setDefaults(source *Source) {
	if source.Name == "" {
		source.Name = defaultName
	}
	if source.URL == "" {
		source.URL = DefaultURL
	}
}

func (l *Loader) validate(source *Source) error {
	if source.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %d", source.Timeout)
	}
	return nil
}
