// Package main provides the entry point for the Claude Relay Service CLI,
// a tool that obtains and manages Claude OAuth credentials through a
// user-supplied forward proxy.
package main

import (
	"os"

	"github.com/claude-relay/crs-cli/internal/buildinfo"
	"github.com/claude-relay/crs-cli/internal/cmd"
	"github.com/claude-relay/crs-cli/internal/logging"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

func main() {
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
