package mailbox

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/boardkeeper/internal/server/models"
)

// PostgresRepository is the database-backed alternative to the file store.
// Insertion order is preserved through the serial id column; SaveAll
// replaces the whole table in one transaction, keeping the wholesale-rewrite
// semantics of the canonical store.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) LoadAll(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT recipient, ciphertext, wrapped_key, iv FROM posts ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p := &models.Post{}
		if err := rows.Scan(&p.Recipient, &p.Ciphertext, &p.WrappedKey, &p.IV); err != nil {
			return nil, fmt.Errorf("error scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading post rows: %w", err)
	}

	return posts, nil
}

func (r *PostgresRepository) SaveAll(ctx context.Context, posts []*models.Post) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return fmt.Errorf("error clearing posts: %w", err)
	}

	insert := `INSERT INTO posts (recipient, ciphertext, wrapped_key, iv)
	           VALUES ($1, $2, $3, $4)`

	for _, p := range posts {
		if _, err = tx.ExecContext(ctx, insert,
			p.Recipient, p.Ciphertext, p.WrappedKey, p.IV); err != nil {
			return fmt.Errorf("error inserting post for %q: %w", p.Recipient, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing posts: %w", err)
	}
	return nil
}
