package testutil

import (
	"context"
	"database/sql"
	"strings"

	"github.com/alexanderramin/eventwise/internal/db"
)

// ArchiveFault is a UnitOfWork that fails the first write into Table during
// a transaction and rolls the whole transaction back. Archive tests use it to
// break a turn's writes halfway (say, after the chat row but before its
// messages) and check that nothing was kept.
type ArchiveFault struct {
	DB    *sql.DB
	Table string
	Err   error

	// Hits counts the writes that were failed.
	Hits int
}

func (f *ArchiveFault) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(f.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &faultyTx{DBTX: tx, fault: f})
	})
}

type faultyTx struct {
	db.DBTX
	fault *ArchiveFault
}

func (t *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if writesTable(query, t.fault.Table) {
		t.fault.Hits++
		return nil, t.fault.Err
	}
	return t.DBTX.ExecContext(ctx, query, args...)
}

// writesTable reports whether query inserts into, updates or deletes from table.
func writesTable(query, table string) bool {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	table = strings.ToLower(table)
	for _, verb := range []string{"insert into ", "update ", "delete from "} {
		if strings.HasPrefix(q, verb+table+" ") || q == verb+table {
			return true
		}
	}
	return false
}
