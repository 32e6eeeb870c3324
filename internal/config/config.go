// Package config provides configuration management for the CLI. It handles
// loading and parsing the YAML configuration file and gives structured
// access to the data directory, debug flag, and log output settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// DataDir is the directory holding the persisted credential file.
	DataDir string `yaml:"data-dir"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug"`

	// LoggingToFile switches log output from stdout to a rotating file
	// under the data directory.
	LoggingToFile bool `yaml:"logging-to-file"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{DataDir: "data"}
}

// LoadConfig reads the YAML config at configFile. A missing file is not an
// error; defaults apply.
func LoadConfig(configFile string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	return cfg, nil
}
