// Package cli implements the boardkeeper command-line client: account
// registration, authentication, sending sealed messages and reading the
// inbox, with key material held in the local keyring.
package cli

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/boardkeeper/internal/client/client"
	"github.com/dmitrijs2005/boardkeeper/internal/client/config"
	"github.com/dmitrijs2005/boardkeeper/internal/client/keyring"
)

var (
	configFile  string
	serverAddr  string
	keyringPath string
	caCertFile  string
	passphrase  string

	boardClient *client.Client
	ring        *keyring.Keyring
)

func Execute() error {
	root := &cobra.Command{
		Use:           "boardkeeper",
		Short:         "End-to-end encrypted bulletin board client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			if serverAddr != "" {
				cfg.ServerAddr = serverAddr
			}
			if keyringPath != "" {
				cfg.KeyringPath = keyringPath
			}
			if caCertFile != "" {
				cfg.CACertFile = caCertFile
			}

			if cfg.KeyringPath == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home := filepath.Join(dir, ".boardkeeper")
				if err := os.MkdirAll(home, 0o700); err != nil {
					return err
				}
				cfg.KeyringPath = filepath.Join(home, "keyring.db")
			}

			tlsConf, err := tlsConfig(cfg.CACertFile)
			if err != nil {
				return err
			}

			boardClient = client.NewClient(cfg.ServerAddr, tlsConf)

			ring, err = keyring.Open(cmd.Context(), cfg.KeyringPath)
			if err != nil {
				return err
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if ring != nil {
				return ring.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "JSON config file")
	root.PersistentFlags().StringVarP(&serverAddr, "server", "s", "", "server address (default localhost:5100)")
	root.PersistentFlags().StringVar(&keyringPath, "keyring", "", "keyring database path (default ~/.boardkeeper/keyring.db)")
	root.PersistentFlags().StringVar(&caCertFile, "cacert", "", "CA certificate for TLS connections")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the keyring")

	root.AddCommand(registerCmd(), loginCmd(), sendCmd(), inboxCmd(), pubkeyCmd(), otpCmd(), accountsCmd())
	return root.Execute()
}

// tlsConfig builds the client TLS configuration, or nil for plain TCP.
func tlsConfig(caCertFile string) (*tls.Config, error) {
	if caCertFile == "" {
		return nil, nil
	}

	pem, err := os.ReadFile(caCertFile)
	if err != nil {
		return nil, fmt.Errorf("reading CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", caCertFile)
	}

	return &tls.Config{RootCAs: pool}, nil
}
