package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory workspace database for testing.
//
// The database has foreign keys enabled and the full schema created.
// Cleanup is registered with t.Cleanup().
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    db := storage.NewTestDB(t)
//	    w := storage.NewSnapshotWriterWithDB(db)
//	    // ...
//	}
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Each new connection to :memory: is a new database
	db.SetMaxOpenConns(1)

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	require.NoError(t, CreateSchema(db))
	return db
}

// NewTestDBFile creates a file-based workspace in t.TempDir() through
// OpenWorkspace. It returns the connection and the database path.
func NewTestDBFile(t testing.TB) (*sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "workspace", "pivot.db")
	db, err := OpenWorkspace(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, dbPath
}
