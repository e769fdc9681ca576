package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, obj := range []struct{ kind, name string }{
		{"table", "chats"},
		{"table", "messages"},
		{"table", "generated_items"},
		{"index", "idx_messages_chat"},
		{"index", "idx_generated_items_chat"},
	} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type=? AND name=?`, obj.kind, obj.name).Scan(&name)
		require.NoError(t, err, "%s %s should exist", obj.kind, obj.name)
		assert.Equal(t, obj.name, name)
	}
}

func TestMigrate_StageColumnAdded(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO chats (id, created_at, updated_at) VALUES ('c1', 'now', 'now')`)
	require.NoError(t, err)

	var stage string
	require.NoError(t, db.QueryRow(`SELECT stage FROM chats WHERE id='c1'`).Scan(&stage))
	assert.Equal(t, "greeting", stage)
}

func TestMigrate_RoleConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO chats (id, created_at, updated_at) VALUES ('c1', 'now', 'now')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO messages (id, chat_id, seq, role, content, created_at) VALUES ('m1', 'c1', 1, 'system', 'x', 'now')`)
	assert.Error(t, err)
}

func TestMigrate_CascadeDelete(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO chats (id, created_at, updated_at) VALUES ('c1', 'now', 'now')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO messages (id, chat_id, seq, role, content, created_at) VALUES ('m1', 'c1', 1, 'user', 'hi', 'now')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM chats WHERE id='c1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n))
	assert.Equal(t, 0, n)
}
