// Package keyring stores the client's per-account secrets - the private key
// and the TOTP secret handed out at registration - in a local SQLite
// database. Each account's material is sealed with a passphrase-derived key
// before it touches the database, so the file on disk is useless without the
// passphrase.
package keyring

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/dmitrijs2005/boardkeeper/internal/client/keyring/migrations"
	"github.com/dmitrijs2005/boardkeeper/internal/common"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Account is the secret material kept for one registered username.
type Account struct {
	PrivateKey []byte `json:"private_key"` // PKCS #8 DER
	TotpSecret []byte `json:"totp_secret"`
}

type Keyring struct {
	db *sql.DB
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if necessary) the keyring database at dsn and applies
// pending migrations.
func Open(ctx context.Context, dsn string) (*Keyring, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening keyring db: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrating keyring db: %w", err)
	}

	return &Keyring{db: db}, nil
}

func (k *Keyring) Close() error {
	return k.db.Close()
}

// Save seals the account material under the passphrase and upserts it.
// Registering the same username again replaces the previous entry.
func (k *Keyring) Save(ctx context.Context, username, passphrase string, acc *Account) error {
	raw, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("encoding account: %w", err)
	}

	blob, err := seal(passphrase, raw)
	if err != nil {
		return fmt.Errorf("sealing account: %w", err)
	}

	_, err = k.db.ExecContext(ctx, `
		INSERT INTO accounts (username, blob) VALUES (?, ?)
		ON CONFLICT(username) DO UPDATE SET blob = excluded.blob
	`, username, blob)
	if err != nil {
		return fmt.Errorf("failed to save account %q: %w", username, err)
	}
	return nil
}

// Load fetches and opens the account material for username. A missing entry
// is common.ErrorNotFound; a bad passphrase is ErrWrongPassphrase.
func (k *Keyring) Load(ctx context.Context, username, passphrase string) (*Account, error) {
	var blob []byte
	err := k.db.QueryRowContext(ctx,
		`SELECT blob FROM accounts WHERE username = ?`, username).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account %q: %w", username, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %q: %w", username, err)
	}

	raw, err := open(passphrase, blob)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(raw)

	acc := &Account{}
	if err := json.Unmarshal(raw, acc); err != nil {
		return nil, fmt.Errorf("decoding account: %w", err)
	}
	return acc, nil
}

// List returns the usernames present in the keyring.
func (k *Keyring) List(ctx context.Context) ([]string, error) {
	rows, err := k.db.QueryContext(ctx, `SELECT username FROM accounts ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}
	return names, nil
}
