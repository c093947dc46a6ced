package db

import (
	"github.com/dmitrijs2005/boardkeeper/internal/server/credstore"
	"github.com/dmitrijs2005/boardkeeper/internal/server/mailbox"
)

type FileRepositoryManager struct {
	users credstore.Repository
	posts mailbox.Repository
}

func (m *FileRepositoryManager) Users() credstore.Repository {
	return m.users
}

func (m *FileRepositoryManager) Posts() mailbox.Repository {
	return m.posts
}

func (m *FileRepositoryManager) Close() error {
	return nil
}

func NewFileRepositoryManager(usersFile, boardFile string) RepositoryManager {
	return &FileRepositoryManager{
		users: credstore.NewFileRepository(usersFile),
		posts: mailbox.NewFileRepository(boardFile),
	}
}
