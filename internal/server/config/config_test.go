package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":5100", c.EndpointAddr)
	assert.Equal(t, "users.json", c.UsersFile)
	assert.Equal(t, "board.json", c.BoardFile)
	assert.Empty(t, c.DatabaseDSN)
	assert.Empty(t, c.TLSCertFile)
	assert.Empty(t, c.TLSKeyFile)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")
	assert.Equal(t, ":5100", c.EndpointAddr)
	assert.Equal(t, "users.json", c.UsersFile)
	assert.Equal(t, "board.json", c.BoardFile)
}
