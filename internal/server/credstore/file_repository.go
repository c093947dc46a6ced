package credstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/boardkeeper/internal/server/models"
)

// fileUser is the on-disk DTO. Field names match the original credential
// file format ({"entries": [...]}) so existing stores keep loading.
type fileUser struct {
	User    string `json:"user"`
	Pass    string `json:"pass"`
	Salt    string `json:"salt"`
	TotpKey string `json:"totp-key"`
	Pubkey  string `json:"pubkey"`
}

type fileStore struct {
	Entries []fileUser `json:"entries"`
}

// FileRepository keeps the credential set in a single JSON file, rewritten
// wholesale on every save via a temp file and rename.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) LoadAll(ctx context.Context) ([]*models.User, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		// First run: initialize an empty store file.
		if err := r.SaveAll(ctx, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}

	var store fileStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.path, err)
	}

	users := make([]*models.User, 0, len(store.Entries))
	for _, e := range store.Entries {
		u, err := decodeFileUser(e)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: entry %q: %w", r.path, e.User, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *FileRepository) SaveAll(ctx context.Context, users []*models.User) error {
	store := fileStore{Entries: make([]fileUser, 0, len(users))}
	for _, u := range users {
		store.Entries = append(store.Entries, fileUser{
			User:    u.Username,
			Pass:    base64.StdEncoding.EncodeToString(u.PasswordHash),
			Salt:    base64.StdEncoding.EncodeToString(u.Salt),
			TotpKey: base64.StdEncoding.EncodeToString(u.TotpSecret),
			Pubkey:  base64.StdEncoding.EncodeToString(u.PublicKey),
		})
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credential store: %w", err)
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

func decodeFileUser(e fileUser) (*models.User, error) {
	if e.User == "" {
		return nil, fmt.Errorf("missing user field")
	}

	pass, err := base64.StdEncoding.DecodeString(e.Pass)
	if err != nil {
		return nil, fmt.Errorf("pass: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(e.Salt)
	if err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	secret, err := base64.StdEncoding.DecodeString(e.TotpKey)
	if err != nil {
		return nil, fmt.Errorf("totp-key: %w", err)
	}
	pubkey, err := base64.StdEncoding.DecodeString(e.Pubkey)
	if err != nil {
		return nil, fmt.Errorf("pubkey: %w", err)
	}

	return &models.User{
		Username:     e.User,
		PasswordHash: pass,
		Salt:         salt,
		TotpSecret:   secret,
		PublicKey:    pubkey,
	}, nil
}
