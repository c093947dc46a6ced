package cli

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/boardkeeper/internal/cryptox"
)

func pubkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey [username]",
		Short: "Fetch a user's registered public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := boardClient.PublicKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			der, err := cryptox.MarshalPublicKey(pub)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(der))
			return nil
		},
	}
}
