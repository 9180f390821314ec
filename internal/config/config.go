package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the file-backed configuration for the timecore CLI. Values of
// the form ${VAR} are interpolated from the environment before parsing.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Tracker struct {
		DefaultSource  string `yaml:"default_source"`
		DefaultLogType string `yaml:"default_log_type"`
	} `yaml:"tracker"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.Tracker.DefaultSource = "WEB_TIMER"
	cfg.Tracker.DefaultLogType = "TRACKED"
	return &cfg
}

// Load reads and parses the YAML config at path. A missing file yields the
// defaults rather than an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Replace environment variables in the YAML content
	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
