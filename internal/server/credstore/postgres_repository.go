package credstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/boardkeeper/internal/server/models"
)

// PostgresRepository is the database-backed alternative to the canonical
// file store for deployments that already run Postgres. It preserves the
// wholesale-rewrite semantics: SaveAll replaces the whole table in one
// transaction.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) LoadAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT username, password_hash, salt, totp_secret, public_key FROM users`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.Salt, &u.TotpSecret, &u.PublicKey); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading user rows: %w", err)
	}

	return users, nil
}

func (r *PostgresRepository) SaveAll(ctx context.Context, users []*models.User) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("error clearing users: %w", err)
	}

	insert := `INSERT INTO users (username, password_hash, salt, totp_secret, public_key)
	           VALUES ($1, $2, $3, $4, $5)`

	for _, u := range users {
		if _, err = tx.ExecContext(ctx, insert,
			u.Username, u.PasswordHash, u.Salt, u.TotpSecret, u.PublicKey); err != nil {
			return fmt.Errorf("error inserting user %q: %w", u.Username, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing users: %w", err)
	}
	return nil
}
