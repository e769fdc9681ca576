package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/eventwise/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

func insertChat(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO chats (id, created_at, updated_at) VALUES (?, 'now', 'now')`, id)
	return err
}

func chatExists(t *testing.T, uow *db.SQLiteUnitOfWork, id string) bool {
	t.Helper()
	var n int
	require.NoError(t, uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM chats WHERE id = ?`, id).Scan(&n)
	}))
	return n == 1
}

func TestWithinTx_Commits(t *testing.T) {
	uow := openUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertChat(ctx, tx, "c1")
	})
	require.NoError(t, err)
	assert.True(t, chatExists(t, uow, "c1"))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	uow := openUoW(t)
	boom := errors.New("archive write failed")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertChat(ctx, tx, "c2"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, chatExists(t, uow, "c2"))
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	uow := openUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertChat(ctx, tx, "c3")
			panic("boom")
		})
	})
	assert.False(t, chatExists(t, uow, "c3"))
}
