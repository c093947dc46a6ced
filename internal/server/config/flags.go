package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/boardkeeper/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   bind address (e.g., ":5100")
//	-u string   users file path
//	-b string   board file path
//	-d string   PostgreSQL DSN (empty = file stores)
//	-t string   TLS certificate file
//	-k string   TLS key file
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// components are ignored.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-b", "-d", "-t", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.UsersFile, "u", config.UsersFile, "users file path")
	fs.StringVar(&config.BoardFile, "b", config.BoardFile, "board file path")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TLSCertFile, "t", config.TLSCertFile, "TLS certificate file")
	fs.StringVar(&config.TLSKeyFile, "k", config.TLSKeyFile, "TLS key file")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
