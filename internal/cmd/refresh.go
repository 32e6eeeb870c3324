package cmd

import (
	"fmt"

	"github.com/claude-relay/crs-cli/internal/auth/claude"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newRefreshCmd builds the command exchanging the stored refresh token for a
// new token pair. Only the three token fields of the auth file change.
func newRefreshCmd(application *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.WithField("request_id", uuid.NewString()[:8])

			record := application.store.Load()
			if record == nil {
				return fmt.Errorf("no stored credentials, run \"crs-cli auth login\" first")
			}
			if record.RefreshToken == "" {
				return fmt.Errorf("stored credentials carry no refresh token")
			}

			client, err := claude.NewProxyClient(record.Proxy)
			if err != nil {
				return err
			}
			token, err := client.RefreshTokens(cmd.Context(), record.RefreshToken)
			if err != nil {
				return err
			}
			logger.Debug("token refresh succeeded")

			if !application.store.UpdateTokens(token.AccessToken, token.RefreshToken, token.ExpiresAt) {
				return fmt.Errorf("failed to update stored tokens")
			}
			fmt.Printf("Token refreshed, now valid until %s\n", formatExpiry(token.ExpiresAt))
			return nil
		},
	}
}
