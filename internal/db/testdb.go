package db

import (
	"database/sql"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })

	return db
}

// NewTestBadger opens an in-memory Badger database closed at test end.
func NewTestBadger(t *testing.T) *badger.DB {
	t.Helper()

	bdb, err := OpenBadger(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("opening test badger: %v", err)
	}

	t.Cleanup(func() { bdb.Close() })

	return bdb
}
