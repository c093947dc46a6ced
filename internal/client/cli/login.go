package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/boardkeeper/internal/totp"
)

func loginCmd() *cobra.Command {
	var otpCode string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate against the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			password, err := getPassword(cmd.OutOrStdout(), "Account password")
			if err != nil {
				return err
			}

			// Without an explicit code, derive the current one from the
			// keyring secret.
			if otpCode == "" {
				ringPass, err := getPassphrase(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				acc, err := ring.Load(cmd.Context(), username, ringPass)
				if err != nil {
					return err
				}
				otpCode = totp.CurrentCode(acc.TotpSecret, time.Now())
			}

			if err := boardClient.Authenticate(cmd.Context(), username, password, otpCode); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Authentication successful.")
			return nil
		},
	}

	cmd.Flags().StringVar(&otpCode, "otp", "", "one-time code (default: derived from the keyring)")
	return cmd
}
