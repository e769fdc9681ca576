package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/eventwise/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory archive that lives for the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err, "opening in-memory archive")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestUoW wraps database in the production unit of work.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
