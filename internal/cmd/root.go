// Package cmd wires the CLI command tree: OAuth authorization management
// under "auth" and the message-send stub under "chat".
package cmd

import (
	"fmt"

	"github.com/claude-relay/crs-cli/internal/buildinfo"
	"github.com/claude-relay/crs-cli/internal/config"
	"github.com/claude-relay/crs-cli/internal/logging"
	"github.com/claude-relay/crs-cli/internal/store"
	"github.com/claude-relay/crs-cli/internal/util"
	"github.com/spf13/cobra"
)

// app carries the resolved runtime dependencies shared by all commands.
type app struct {
	cfg   *config.Config
	store *store.Store
}

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	application := &app{}
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "crs-cli",
		Short:         "Claude Relay Service CLI",
		Long:          "OAuth 2.0 PKCE authorization and credential management for Claude accounts, routed through a user-supplied proxy.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			dataDir, err := util.ResolveDataDir(cfg.DataDir)
			if err != nil {
				return err
			}
			if err = logging.ConfigureLogOutput(cfg, dataDir); err != nil {
				return err
			}
			util.SetLogLevel(cfg)
			application.cfg = cfg
			application.store = store.New(dataDir)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "configuration file path")

	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "OAuth authorization management",
	}
	authCmd.AddCommand(
		newLoginCmd(application),
		newStatusCmd(application),
		newRefreshCmd(application),
		newLogoutCmd(application),
	)

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Message sending",
	}
	chatCmd.AddCommand(newSendCmd(application))

	rootCmd.AddCommand(authCmd, chatCmd)
	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
