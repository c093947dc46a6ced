package mailbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/boardkeeper/internal/server/models"
)

// filePost matches the original board file format ({"posts": [...]}).
type filePost struct {
	User       string `json:"user"`
	Message    string `json:"message"`
	WrappedKey string `json:"wrappedkey"`
	IV         string `json:"iv"`
}

type fileBoard struct {
	Posts []filePost `json:"posts"`
}

// FileRepository keeps the post set in a single JSON file, rewritten
// wholesale on every save via a temp file and rename.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) LoadAll(ctx context.Context) ([]*models.Post, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := r.SaveAll(ctx, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}

	var board fileBoard
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.path, err)
	}

	posts := make([]*models.Post, 0, len(board.Posts))
	for i, p := range board.Posts {
		post, err := decodeFilePost(p)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: post %d: %w", r.path, i, err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *FileRepository) SaveAll(ctx context.Context, posts []*models.Post) error {
	board := fileBoard{Posts: make([]filePost, 0, len(posts))}
	for _, p := range posts {
		board.Posts = append(board.Posts, filePost{
			User:       p.Recipient,
			Message:    base64.StdEncoding.EncodeToString(p.Ciphertext),
			WrappedKey: base64.StdEncoding.EncodeToString(p.WrappedKey),
			IV:         base64.StdEncoding.EncodeToString(p.IV),
		})
	}

	data, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding mailbox store: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing %s: %w", r.path, err)
	}
	return nil
}

func decodeFilePost(p filePost) (*models.Post, error) {
	if p.User == "" {
		return nil, fmt.Errorf("missing user field")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(p.Message)
	if err != nil {
		return nil, fmt.Errorf("message: %w", err)
	}
	wrapped, err := base64.StdEncoding.DecodeString(p.WrappedKey)
	if err != nil {
		return nil, fmt.Errorf("wrappedkey: %w", err)
	}
	iv, err := base64.StdEncoding.DecodeString(p.IV)
	if err != nil {
		return nil, fmt.Errorf("iv: %w", err)
	}

	return &models.Post{
		Recipient:  p.User,
		Ciphertext: ciphertext,
		WrappedKey: wrapped,
		IV:         iv,
	}, nil
}
