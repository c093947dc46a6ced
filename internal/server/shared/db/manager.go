// Package db selects and assembles the storage backend: the canonical
// JSON file stores, or Postgres when a DSN is configured.
package db

import (
	"github.com/dmitrijs2005/boardkeeper/internal/server/credstore"
	"github.com/dmitrijs2005/boardkeeper/internal/server/mailbox"
)

type RepositoryManager interface {
	Users() credstore.Repository
	Posts() mailbox.Repository
	Close() error
}
