// Package migrations embeds the SQL migrations for the optional Postgres
// storage backend.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
