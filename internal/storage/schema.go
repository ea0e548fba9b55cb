package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the version written by CreateSchema.
const SchemaVersion = "1"

// CreateSchema creates all workspace tables and indexes in one transaction.
//
// Schema:
//   - collections, link_types: the workspace schema, attributes as JSON
//   - documents, link_instances: records with their data as JSON
//   - workspace_metadata: schema version and dataset revision
//
// Every record table keeps a position column so reads return import order,
// which decides first-seen key order during aggregation.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"collections", createCollectionsTable},
		{"link_types", createLinkTypesTable},
		{"documents", createDocumentsTable},
		{"link_instances", createLinkInstancesTable},
		{"workspace_metadata", createWorkspaceMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT INTO workspace_metadata (key, value, updated_at) VALUES
			('schema_version', ?, ?),
			('revision', '', ?),
			('imported_at', '', ?)
	`
	if _, err := tx.Exec(bootstrapSQL, SchemaVersion, now, now, now); err != nil {
		return fmt.Errorf("failed to bootstrap workspace_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion retrieves the schema version from workspace_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='workspace_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check workspace_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	version, err := getMetadata(db, "schema_version")
	if err != nil {
		return "", err
	}
	return version, nil
}

// EnsureSchema creates the schema on a new database and rejects databases
// written by an unknown schema version.
func EnsureSchema(db *sql.DB) error {
	version, err := GetSchemaVersion(db)
	if err != nil {
		return err
	}
	switch version {
	case "0":
		return CreateSchema(db)
	case SchemaVersion:
		return nil
	}
	return fmt.Errorf("unsupported workspace schema version %q (want %s)", version, SchemaVersion)
}

func getMetadata(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM workspace_metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%s key not found in workspace_metadata", key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query %s: %w", key, err)
	}
	return value, nil
}

func setMetadata(tx *sql.Tx, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO workspace_metadata (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := tx.Exec(query, key, value, now); err != nil {
		return fmt.Errorf("failed to update %s: %w", key, err)
	}
	return nil
}

// Table DDL constants

const createCollectionsTable = `
CREATE TABLE collections (
    collection_id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '',
    icon TEXT NOT NULL DEFAULT '',
    attributes TEXT NOT NULL DEFAULT '[]',       -- JSON array of attributes
    position INTEGER NOT NULL
)
`

const createLinkTypesTable = `
CREATE TABLE link_types (
    link_type_id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    collection_a TEXT NOT NULL,                  -- collectionIds[0]
    collection_b TEXT NOT NULL,                  -- collectionIds[1]
    attributes TEXT NOT NULL DEFAULT '[]',
    position INTEGER NOT NULL
)
`

const createDocumentsTable = `
CREATE TABLE documents (
    document_id TEXT PRIMARY KEY,
    collection_id TEXT NOT NULL,
    data TEXT NOT NULL DEFAULT '{}',             -- JSON object: attribute id -> value
    position INTEGER NOT NULL,
    FOREIGN KEY (collection_id) REFERENCES collections(collection_id) ON DELETE CASCADE
)
`

// Endpoints are not foreign keys: links may point at documents that were
// filtered out, the graph builder drops those.
const createLinkInstancesTable = `
CREATE TABLE link_instances (
    link_id TEXT PRIMARY KEY,
    link_type_id TEXT NOT NULL,
    document_a TEXT NOT NULL,                    -- documentIds[0]
    document_b TEXT NOT NULL,                    -- documentIds[1]
    data TEXT NOT NULL DEFAULT '{}',
    position INTEGER NOT NULL,
    FOREIGN KEY (link_type_id) REFERENCES link_types(link_type_id) ON DELETE CASCADE
)
`

const createWorkspaceMetadataTable = `
CREATE TABLE workspace_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_collections_position ON collections(position)",
		"CREATE INDEX idx_link_types_position ON link_types(position)",
		"CREATE INDEX idx_documents_collection ON documents(collection_id, position)",
		"CREATE INDEX idx_link_instances_type ON link_instances(link_type_id, position)",
	}
}
