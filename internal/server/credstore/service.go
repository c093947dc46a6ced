// Package credstore owns the durable set of user records: password hashes,
// TOTP secrets and registered public keys. All access goes through the
// Service; the backing repository is only ever written while the service's
// lock is held, so a reader can never observe in-memory state whose durable
// image has not been written yet.
package credstore

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/boardkeeper/internal/common"
	"github.com/dmitrijs2005/boardkeeper/internal/server/models"
	"github.com/dmitrijs2005/boardkeeper/internal/totp"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters are fixed by the protocol; changing them would break
// every stored hash.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32

	saltSize = 16 // 128-bit per-record salt
)

type Service struct {
	mu    sync.RWMutex
	users map[string]*models.User
	repo  Repository

	// now is a test seam for TOTP validation.
	now func() time.Time
}

// NewService loads the full record set from the repository into memory.
func NewService(ctx context.Context, repo Repository) (*Service, error) {
	users, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading credential store: %w", err)
	}

	index := make(map[string]*models.User, len(users))
	for _, u := range users {
		index[u.Username] = u
	}

	return &Service{users: index, repo: repo, now: time.Now}, nil
}

// Exists reports whether a username is taken.
func (s *Service) Exists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[username]
	return ok
}

// Create registers a new user and returns the raw TOTP secret exactly once.
// The secret is not retrievable again through this interface; the client is
// responsible for saving it. Fails with common.ErrorAlreadyExists if the
// username is taken, and with common.ErrorStorage if the durable write
// fails (in which case the in-memory state is rolled back).
func (s *Service) Create(ctx context.Context, username, password string, publicKey []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return nil, fmt.Errorf("user %q: %w", username, common.ErrorAlreadyExists)
	}

	salt := common.GenerateRandByteArray(saltSize)

	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("generating totp secret: %w", err)
	}

	hash, err := hashPassword(password, salt)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		TotpSecret:   secret,
		PublicKey:    append([]byte(nil), publicKey...),
	}

	s.users[username] = user

	if err := s.repo.SaveAll(ctx, s.snapshotLocked()); err != nil {
		delete(s.users, username)
		return nil, fmt.Errorf("%w: persisting credential store: %v", common.ErrorStorage, err)
	}

	return append([]byte(nil), secret...), nil
}

// ValidatePassword recomputes the scrypt hash of the attempt with the
// stored salt and compares in constant time. Unknown users are false, never
// an error.
func (s *Service) ValidatePassword(username, attempt string) bool {
	s.mu.RLock()
	user, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	hash, err := hashPassword(attempt, user.Salt)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(hash, user.PasswordHash) == 1
}

// ValidateTotp checks a submitted one-time code against the user's stored
// secret. Unknown users are false.
func (s *Service) ValidateTotp(username, code string) bool {
	s.mu.RLock()
	user, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	return totp.IsValid(user.TotpSecret, code, s.now())
}

// PublicKey returns the stored public key material for a user.
func (s *Service) PublicKey(username string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), user.PublicKey...), true
}

// snapshotLocked returns the record set as a slice. Caller holds s.mu.
func (s *Service) snapshotLocked() []*models.User {
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out
}

func hashPassword(password string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
}
