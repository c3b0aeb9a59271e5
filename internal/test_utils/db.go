package test_utils

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/bachat/bachat/internal/database"
)

// NewInMemoryDB creates an isolated in-memory SQLite database for a test.
func NewInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// SetupTestDB creates an in-memory SQLite database with all migrations
// applied. The migrations directory is discovered by walking up from the
// package directory the test runs in.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db := NewInMemoryDB(t)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
	return db
}
