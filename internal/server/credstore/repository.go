package credstore

import (
	"context"

	"github.com/dmitrijs2005/boardkeeper/internal/server/models"
)

// Repository persists the full credential set. The store is small and every
// mutation rewrites it wholesale, so the interface is deliberately coarse:
// load everything at startup, save everything on change.
type Repository interface {
	LoadAll(ctx context.Context) ([]*models.User, error)
	SaveAll(ctx context.Context, users []*models.User) error
}
