package mailbox

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/boardkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_LoadAll_OrderedById(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"recipient", "ciphertext", "wrapped_key", "iv"}).
		AddRow("bob", []byte{1}, []byte{2}, []byte{3}).
		AddRow("bob", []byte{4}, []byte{5}, []byte{6})

	mock.ExpectQuery("SELECT recipient, ciphertext, wrapped_key, iv FROM posts ORDER BY id").
		WillReturnRows(rows)

	posts, err := NewPostgresRepository(db).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, []byte{1}, posts[0].Ciphertext)
	assert.Equal(t, []byte{4}, posts[1].Ciphertext)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM posts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO posts").
		WithArgs("bob", []byte{1}, []byte{2}, []byte{3}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	posts := []*models.Post{{
		Recipient:  "bob",
		Ciphertext: []byte{1},
		WrappedKey: []byte{2},
		IV:         []byte{3},
	}}

	err = NewPostgresRepository(db).SaveAll(context.Background(), posts)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveAll_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM posts").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = NewPostgresRepository(db).SaveAll(context.Background(), nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
