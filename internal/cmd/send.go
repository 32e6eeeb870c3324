package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Messages API defaults, reserved for when sending lands.
const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

// newSendCmd builds the message-send command. Sending is not implemented;
// the command exists so the intended call surface is already in place.
func newSendCmd(application *app) *cobra.Command {
	var (
		model     string
		maxTokens int
		file      string
	)

	sendCmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send a message to the Messages API (not implemented)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("chat send is not implemented yet.")
			fmt.Println("Planned: Messages API streaming with automatic token refresh.")
			if len(args) > 0 {
				fmt.Printf("Received message: %s\n", args[0])
			}
			if file != "" {
				fmt.Printf("Would read message from: %s\n", file)
			}
			return nil
		},
	}

	sendCmd.Flags().StringVarP(&model, "model", "m", defaultModel, "model to use")
	sendCmd.Flags().IntVar(&maxTokens, "max-tokens", defaultMaxTokens, "maximum output tokens")
	sendCmd.Flags().StringVarP(&file, "file", "f", "", "read the message from a file")
	return sendCmd
}
