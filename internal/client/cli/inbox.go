package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func inboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inbox [username]",
		Short: "Fetch and decrypt the account's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			ringPass, err := getPassphrase(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			acc, err := ring.Load(cmd.Context(), username, ringPass)
			if err != nil {
				return err
			}

			messages, err := boardClient.Inbox(cmd.Context(), username, acc.PrivateKey)
			if err != nil {
				return err
			}

			if len(messages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No messages.")
				return nil
			}

			for i, m := range messages {
				fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i+1, m)
			}
			return nil
		},
	}
}
