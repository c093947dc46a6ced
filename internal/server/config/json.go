package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/boardkeeper/internal/flagx"
)

// JsonConfig is the DTO for the optional JSON config file. Only fields
// present in the file override the defaults.
type JsonConfig struct {
	EndpointAddr string `json:"endpoint_addr"`
	UsersFile    string `json:"users_file"`
	BoardFile    string `json:"board_file"`
	DatabaseDSN  string `json:"database_dsn"`
	TLSCertFile  string `json:"tls_cert_file"`
	TLSKeyFile   string `json:"tls_key_file"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags, if any. An unreadable or invalid file is a startup
// failure and panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.UsersFile != "" {
		config.UsersFile = c.UsersFile
	}
	if c.BoardFile != "" {
		config.BoardFile = c.BoardFile
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.TLSCertFile != "" {
		config.TLSCertFile = c.TLSCertFile
	}
	if c.TLSKeyFile != "" {
		config.TLSKeyFile = c.TLSKeyFile
	}
}
