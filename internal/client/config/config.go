// Package config handles configuration for the client component: defaults
// plus an optional JSON overlay. Command-line overrides are owned by the CLI
// layer.
package config

import (
	"encoding/json"
	"os"
)

// Config holds runtime settings for the boardkeeper client.
//
// Fields:
//   - ServerAddr: address of the bulletin-board server.
//   - KeyringPath: path of the local keyring database; empty means the
//     per-user default under the home directory.
//   - CACertFile: optional PEM file with the CA that signed the server's
//     certificate; when set the client connects over TLS.
type Config struct {
	ServerAddr  string `json:"server_addr"`
	KeyringPath string `json:"keyring_path"`
	CACertFile  string `json:"ca_cert_file"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "localhost:5100"
	c.KeyringPath = ""
	c.CACertFile = ""
}

// LoadConfig builds a Config from defaults plus an optional JSON file. An
// empty path skips the overlay; only fields present in the file override
// the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path == "" {
		return cfg, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	overlay := &Config{}
	if err := json.Unmarshal(file, overlay); err != nil {
		return nil, err
	}

	if overlay.ServerAddr != "" {
		cfg.ServerAddr = overlay.ServerAddr
	}
	if overlay.KeyringPath != "" {
		cfg.KeyringPath = overlay.KeyringPath
	}
	if overlay.CACertFile != "" {
		cfg.CACertFile = overlay.CACertFile
	}

	return cfg, nil
}
