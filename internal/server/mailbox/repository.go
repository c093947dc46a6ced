package mailbox

import (
	"context"

	"github.com/dmitrijs2005/boardkeeper/internal/server/models"
)

// Repository persists the full post set in insertion order. Like the
// credential store, every mutation rewrites the whole thing.
type Repository interface {
	LoadAll(ctx context.Context) ([]*models.Post, error)
	SaveAll(ctx context.Context, posts []*models.Post) error
}
