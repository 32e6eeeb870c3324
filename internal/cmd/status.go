package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// expiryWarningWindow is how close to expiry the status command starts
// suggesting a refresh.
const expiryWarningWindow = 5 * time.Minute

// newStatusCmd builds the command showing the stored authorization state:
// token validity, expiry arithmetic, account identity, and the redacted
// proxy.
func newStatusCmd(application *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current authorization status",
		RunE: func(cmd *cobra.Command, args []string) error {
			record := application.store.Load()
			if record == nil {
				fmt.Println("Not authorized yet. Run \"crs-cli auth login\" first.")
				return fmt.Errorf("no stored credentials")
			}
			if record.AccessToken == "" || record.ExpiresAt == 0 {
				return fmt.Errorf("stored credentials are incomplete, run \"crs-cli auth login\" again")
			}

			remaining := time.Until(time.UnixMilli(record.ExpiresAt)).Round(time.Second)
			if remaining > 0 {
				fmt.Println("Status:   valid")
			} else {
				fmt.Println("Status:   expired")
			}
			fmt.Printf("Email:    %s\n", orUnknown(record.Email))
			fmt.Printf("Plan:     %s\n", orUnknown(record.AccountType))
			fmt.Printf("Expires:  %s\n", time.UnixMilli(record.ExpiresAt).Format("2006-01-02 15:04:05"))
			if remaining > 0 {
				fmt.Printf("Remaining: %s\n", formatRemaining(remaining))
			} else {
				fmt.Printf("Expired:  %s ago\n", formatRemaining(-remaining))
			}
			fmt.Printf("Proxy:    %s\n", record.Proxy.Redacted())

			if remaining > 0 && remaining < expiryWarningWindow {
				fmt.Println("\nToken expires soon, consider running \"crs-cli auth refresh\".")
			}
			return nil
		},
	}
}

// formatRemaining renders a duration as hours/minutes/seconds the way a
// human reads a countdown.
func formatRemaining(d time.Duration) string {
	seconds := int64(d.Seconds())
	switch {
	case seconds >= 3600:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	case seconds >= 60:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
