package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send [recipient] [message...]",
		Short: "Seal a message to the recipient's key and post it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipient := args[0]
			message := strings.Join(args[1:], " ")

			if err := boardClient.Send(cmd.Context(), recipient, message); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Message posted.")
			return nil
		},
	}
}
