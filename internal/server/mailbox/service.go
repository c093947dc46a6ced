// Package mailbox owns the append-only mapping from recipient to sealed
// posts. Posts are opaque blobs: the service stores and returns them without
// ever looking inside.
package mailbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/boardkeeper/internal/common"
	"github.com/dmitrijs2005/boardkeeper/internal/server/models"
)

type Service struct {
	mu     sync.RWMutex
	posts  []*models.Post            // global insertion order, what gets persisted
	byUser map[string][]*models.Post // per-recipient view, same order
	repo   Repository
}

// NewService loads the full post set from the repository into memory.
func NewService(ctx context.Context, repo Repository) (*Service, error) {
	posts, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading mailbox store: %w", err)
	}

	s := &Service{
		posts:  make([]*models.Post, 0, len(posts)),
		byUser: make(map[string][]*models.Post),
		repo:   repo,
	}
	for _, p := range posts {
		s.addLocked(p)
	}
	return s, nil
}

// Append adds a post to its recipient's mailbox and persists the store.
// Duplicates are permitted; the only failure mode is a durable-write error,
// reported as common.ErrorStorage with the in-memory state rolled back.
func (s *Service) Append(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addLocked(post)

	if err := s.repo.SaveAll(ctx, s.posts); err != nil {
		s.posts = s.posts[:len(s.posts)-1]
		list := s.byUser[post.Recipient]
		s.byUser[post.Recipient] = list[:len(list)-1]
		return fmt.Errorf("%w: persisting mailbox store: %v", common.ErrorStorage, err)
	}
	return nil
}

// List returns the recipient's posts in insertion order. A user with no
// posts gets an empty slice, never an error.
func (s *Service) List(username string) []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byUser[username]
	out := make([]*models.Post, len(list))
	copy(out, list)
	return out
}

func (s *Service) addLocked(post *models.Post) {
	s.posts = append(s.posts, post)
	s.byUser[post.Recipient] = append(s.byUser[post.Recipient], post)
}
