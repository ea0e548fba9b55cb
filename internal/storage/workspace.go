package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// OpenWorkspace opens (creating if needed) the SQLite workspace at dbPath,
// enables foreign keys and ensures the schema exists.
func OpenWorkspace(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create workspace directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare workspace schema: %w", err)
	}
	return db, nil
}

// OpenWorkspaceReadOnly opens an existing workspace without write access.
func OpenWorkspaceReadOnly(dbPath string) (*sql.DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("workspace not found at %s (run 'pivot import' first): %w", dbPath, err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version != SchemaVersion {
		db.Close()
		return nil, fmt.Errorf("unsupported workspace schema version %q (want %s)", version, SchemaVersion)
	}
	return db, nil
}
