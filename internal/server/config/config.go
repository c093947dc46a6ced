// Package config handles configuration for the server component, including
// defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the boardkeeper server.
//
// Fields:
//   - EndpointAddr: bind address for the bulletin-board endpoint.
//   - UsersFile / BoardFile: paths of the canonical JSON stores.
//   - DatabaseDSN: optional PostgreSQL DSN (pgx); when set, both stores
//     persist to the database instead of the files.
//   - TLSCertFile / TLSKeyFile: optional certificate pair; when both are
//     set the server listens over TLS, otherwise plain TCP.
type Config struct {
	EndpointAddr string
	UsersFile    string
	BoardFile    string
	DatabaseDSN  string
	TLSCertFile  string
	TLSKeyFile   string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":5100"
	c.UsersFile = "users.json"
	c.BoardFile = "board.json"
	c.DatabaseDSN = ""
	c.TLSCertFile = ""
	c.TLSKeyFile = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
