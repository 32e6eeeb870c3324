package cmd

import (
	"fmt"
	"time"

	"github.com/claude-relay/crs-cli/internal/auth/claude"
	"github.com/claude-relay/crs-cli/internal/browser"
	"github.com/claude-relay/crs-cli/internal/proxy"
	"github.com/claude-relay/crs-cli/internal/store"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newLoginCmd builds the interactive OAuth login command. A proxy is
// mandatory: the authorize-URL exchange is only ever routed through a
// user-supplied forward proxy.
func newLoginCmd(application *app) *cobra.Command {
	var (
		noBrowser     bool
		proxyScheme   string
		proxyHost     string
		proxyPort     string
		proxyUsername string
		proxyPassword string
	)

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Run the OAuth 2.0 PKCE authorization flow",
		Long: "Runs the OAuth 2.0 PKCE authorization flow and saves the obtained " +
			"credentials to the local auth file. A proxy must be configured; " +
			"authorization traffic is never sent directly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.WithField("request_id", uuid.NewString()[:8])

			spec, err := collectProxySpec(proxyScheme, proxyHost, proxyPort, proxyUsername, proxyPassword)
			if err != nil {
				return err
			}
			fmt.Printf("Proxy configured: %s\n", spec.Redacted())

			params, err := claude.GenerateParams()
			if err != nil {
				return err
			}

			fmt.Println("\nOpen the following URL in your browser to authorize:")
			fmt.Printf("\n%s\n\n", params.AuthorizeURL)
			if !noBrowser && browser.IsAvailable() {
				if errOpen := browser.OpenURL(params.AuthorizeURL); errOpen != nil {
					logger.Warnf("failed to open browser automatically: %v", errOpen)
				}
			}

			input, err := promptLine("Paste the callback URL or authorization code: ")
			if err != nil {
				return err
			}
			code, err := claude.ExtractAuthorizationCode(input)
			if err != nil {
				return err
			}
			logger.Debugf("authorization code received, exchanging for tokens")

			client, err := claude.NewProxyClient(spec)
			if err != nil {
				return err
			}
			token, err := client.ExchangeCodeForTokens(cmd.Context(), code, params.CodeVerifier, params.State)
			if err != nil {
				return err
			}
			fmt.Println("Tokens obtained")

			profile, err := client.FetchProfile(cmd.Context(), token.AccessToken)
			if err != nil {
				logger.Warnf("could not fetch account profile: %v", err)
				profile = &claude.ProfileInfo{}
			}

			record := &store.CredentialRecord{
				AccessToken:  token.AccessToken,
				RefreshToken: token.RefreshToken,
				ExpiresAt:    token.ExpiresAt,
				Email:        profile.Email,
				CodeVerifier: params.CodeVerifier,
				Proxy:        spec,
				Scopes:       token.Scopes,
				AccountType:  profile.AccountType,
			}
			if !application.store.Save(record) {
				return fmt.Errorf("failed to save credentials to %s", application.store.Path())
			}

			fmt.Println("\nAuthorization complete")
			fmt.Printf("  Email:    %s\n", orUnknown(profile.Email))
			fmt.Printf("  Plan:     %s\n", orUnknown(profile.AccountType))
			fmt.Printf("  Expires:  %s\n", formatExpiry(token.ExpiresAt))
			fmt.Printf("  Proxy:    %s\n", spec.Redacted())
			fmt.Printf("\nCredentials saved to %s\n", application.store.Path())
			return nil
		},
	}

	loginCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "don't open the browser automatically")
	loginCmd.Flags().StringVar(&proxyScheme, "proxy-scheme", "", "proxy scheme: socks5, http, or https")
	loginCmd.Flags().StringVar(&proxyHost, "proxy-host", "", "proxy host")
	loginCmd.Flags().StringVar(&proxyPort, "proxy-port", "", "proxy port")
	loginCmd.Flags().StringVar(&proxyUsername, "proxy-username", "", "proxy username (optional)")
	loginCmd.Flags().StringVar(&proxyPassword, "proxy-password", "", "proxy password (optional)")
	return loginCmd
}

// collectProxySpec assembles a validated proxy spec from flags, prompting
// for any field not supplied on the command line.
func collectProxySpec(scheme, host, port, username, password string) (*proxy.Spec, error) {
	var err error
	if scheme == "" {
		if scheme, err = promptLineDefault("Proxy scheme (socks5/http/https)", proxy.SchemeSOCKS5); err != nil {
			return nil, err
		}
	}
	if host == "" {
		if host, err = promptLineDefault("Proxy host", "127.0.0.1"); err != nil {
			return nil, err
		}
	}
	if port == "" {
		fallback := "1080"
		if scheme != proxy.SchemeSOCKS5 {
			fallback = "8080"
		}
		if port, err = promptLineDefault("Proxy port", fallback); err != nil {
			return nil, err
		}
	}
	portNumber, ok := proxy.ParsePort(port)
	if !ok {
		return nil, fmt.Errorf("invalid proxy port %q: expected an integer in [1, 65535]", port)
	}

	spec := &proxy.Spec{
		Scheme:   scheme,
		Host:     host,
		Port:     portNumber,
		Username: username,
		Password: password,
	}
	if !spec.Validate() {
		return nil, fmt.Errorf("invalid proxy config: %s", spec.Redacted())
	}
	return spec, nil
}

func orUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

func formatExpiry(expiresAt int64) string {
	expiry := time.UnixMilli(expiresAt)
	remaining := time.Until(expiry).Round(time.Second)
	return fmt.Sprintf("%s (in %s)", expiry.Format("2006-01-02 15:04:05"), remaining)
}
