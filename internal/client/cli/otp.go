package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/boardkeeper/internal/totp"
)

func otpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "otp [username]",
		Short: "Print the current one-time code for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ringPass, err := getPassphrase(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			acc, err := ring.Load(cmd.Context(), args[0], ringPass)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), totp.CurrentCode(acc.TotpSecret, time.Now()))
			return nil
		},
	}
}
