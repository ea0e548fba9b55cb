package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/project-pivot/internal/model"
)

// SnapshotWriter replaces the workspace contents with a snapshot.
type SnapshotWriter struct {
	db       *sql.DB
	reporter ProgressReporter
}

// NewSnapshotWriterWithDB creates a SnapshotWriter on a shared connection.
// The caller owns the connection and its schema.
func NewSnapshotWriterWithDB(db *sql.DB) *SnapshotWriter {
	return &SnapshotWriter{db: db, reporter: NoOpProgressReporter{}}
}

// WithProgress sets the reporter notified while records are written.
func (w *SnapshotWriter) WithProgress(r ProgressReporter) *SnapshotWriter {
	if r == nil {
		r = NoOpProgressReporter{}
	}
	w.reporter = r
	return w
}

// WriteSnapshot clears the workspace and writes snap in one transaction.
// It returns the new workspace revision.
//
// Records keep their slice order through the position column. Documents of
// unknown collections and links of unknown link types are skipped.
func (w *SnapshotWriter) WriteSnapshot(snap *model.Snapshot) (string, error) {
	if snap == nil {
		return "", fmt.Errorf("snapshot cannot be nil")
	}

	tx, err := w.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Children first to satisfy foreign keys
	for _, table := range []string{"link_instances", "documents", "link_types", "collections"} {
		if _, err := sq.Delete(table).RunWith(tx).Exec(); err != nil {
			return "", fmt.Errorf("failed to clear existing data (%s): %w", table, err)
		}
	}

	w.reporter.OnImportStart(len(snap.Collections) + len(snap.LinkTypes) + len(snap.Documents) + len(snap.LinkInstances))

	collections := make(map[string]bool, len(snap.Collections))
	for i, c := range snap.Collections {
		attrs, err := encodeAttributes(c.Attributes)
		if err != nil {
			return "", err
		}
		_, err = sq.Insert("collections").
			Columns("collection_id", "name", "color", "icon", "attributes", "position").
			Values(c.ID, c.Name, c.Color, c.Icon, attrs, i).
			RunWith(tx).
			Exec()
		if err != nil {
			return "", fmt.Errorf("failed to insert collection %s: %w", c.ID, err)
		}
		collections[c.ID] = true
	}
	w.reporter.OnRecordsWritten("collections", len(snap.Collections))

	linkTypes := make(map[string]bool, len(snap.LinkTypes))
	for i, lt := range snap.LinkTypes {
		attrs, err := encodeAttributes(lt.Attributes)
		if err != nil {
			return "", err
		}
		_, err = sq.Insert("link_types").
			Columns("link_type_id", "name", "collection_a", "collection_b", "attributes", "position").
			Values(lt.ID, lt.Name, lt.CollectionIDs[0], lt.CollectionIDs[1], attrs, i).
			RunWith(tx).
			Exec()
		if err != nil {
			return "", fmt.Errorf("failed to insert link type %s: %w", lt.ID, err)
		}
		linkTypes[lt.ID] = true
	}
	w.reporter.OnRecordsWritten("link types", len(snap.LinkTypes))

	if err := writeDocuments(tx, snap.Documents, collections, w.reporter); err != nil {
		return "", err
	}
	if err := writeLinkInstances(tx, snap.LinkInstances, linkTypes, w.reporter); err != nil {
		return "", err
	}

	revision := uuid.NewString()
	if err := setMetadata(tx, "revision", revision); err != nil {
		return "", err
	}
	if err := setMetadata(tx, "imported_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	w.reporter.OnImportComplete()
	return revision, nil
}

// writeDocuments inserts documents through one prepared statement.
func writeDocuments(tx *sql.Tx, docs []model.Document, collections map[string]bool, reporter ProgressReporter) error {
	if len(docs) == 0 {
		return nil
	}

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO documents (document_id, collection_id, data, position) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare document insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range docs {
		if !collections[d.CollectionID] {
			reporter.OnRecordsWritten("documents", 1)
			continue
		}
		if _, err := stmt.Exec(d.ID, d.CollectionID, encodeData(d.Data), i); err != nil {
			return fmt.Errorf("failed to insert document %s: %w", d.ID, err)
		}
		reporter.OnRecordsWritten("documents", 1)
	}
	return nil
}

func writeLinkInstances(tx *sql.Tx, links []model.LinkInstance, linkTypes map[string]bool, reporter ProgressReporter) error {
	if len(links) == 0 {
		return nil
	}

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO link_instances (link_id, link_type_id, document_a, document_b, data, position) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range links {
		if !linkTypes[l.LinkTypeID] {
			reporter.OnRecordsWritten("links", 1)
			continue
		}
		if _, err := stmt.Exec(l.ID, l.LinkTypeID, l.DocumentIDs[0], l.DocumentIDs[1], encodeData(l.Data), i); err != nil {
			return fmt.Errorf("failed to insert link instance %s: %w", l.ID, err)
		}
		reporter.OnRecordsWritten("links", 1)
	}
	return nil
}
