package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLogoutCmd builds the command deleting the stored credentials.
func newLogoutCmd(application *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !application.store.Clear() {
				return fmt.Errorf("failed to clear credentials at %s", application.store.Path())
			}
			fmt.Println("Credentials cleared")
			return nil
		},
	}
}
