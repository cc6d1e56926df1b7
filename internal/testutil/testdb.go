package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/skiff/internal/db"
)

// NewTestDB opens an in-memory task database with the full schema in place:
// the tasks table, sync metadata, and pending deletions. It is closed when
// the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory task database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW wraps the test database in a UnitOfWork for exercising the
// facade's transactional graph mutations.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
