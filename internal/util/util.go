// Package util provides small helpers shared across the CLI: log level
// switching and filesystem path normalization.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude-relay/crs-cli/internal/config"
	log "github.com/sirupsen/logrus"
)

// SetLogLevel configures the logrus log level based on the configuration.
// It sets the log level to DebugLevel if debug mode is enabled, otherwise to InfoLevel.
func SetLogLevel(cfg *config.Config) {
	currentLevel := log.GetLevel()
	var newLevel log.Level
	if cfg.Debug {
		newLevel = log.DebugLevel
	} else {
		newLevel = log.InfoLevel
	}

	if currentLevel != newLevel {
		log.SetLevel(newLevel)
		log.Debugf("log level changed from %s to %s (debug=%t)", currentLevel, newLevel, cfg.Debug)
	}
}

// ResolveDataDir normalizes the data directory path for consistent reuse.
// It expands a leading tilde (~) to the user's home directory and returns a
// cleaned path.
func ResolveDataDir(dataDir string) (string, error) {
	if dataDir == "" {
		return "", nil
	}
	if strings.HasPrefix(dataDir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve data dir: %w", err)
		}
		remainder := strings.TrimPrefix(dataDir, "~")
		remainder = strings.TrimLeft(remainder, "/\\")
		if remainder == "" {
			return filepath.Clean(home), nil
		}
		normalized := strings.ReplaceAll(remainder, "\\", "/")
		return filepath.Clean(filepath.Join(home, filepath.FromSlash(normalized))), nil
	}
	return filepath.Clean(dataDir), nil
}
