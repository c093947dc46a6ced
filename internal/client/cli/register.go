package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/boardkeeper/internal/client/keyring"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [username]",
		Short: "Create an account and store its keys in the keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			password, err := getPassword(cmd.OutOrStdout(), "Account password")
			if err != nil {
				return err
			}

			ringPass, err := getPassphrase(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			reg, err := boardClient.Register(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			err = ring.Save(cmd.Context(), username, ringPass, &keyring.Account{
				PrivateKey: reg.PrivateKey,
				TotpSecret: reg.TotpSecret,
			})
			if err != nil {
				return fmt.Errorf("account created on the server but saving keys failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account %q created. Keys stored in the keyring.\n", username)
			return nil
		},
	}
}
