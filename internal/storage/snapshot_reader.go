package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/project-pivot/internal/chain"
	"github.com/mvp-joe/project-pivot/internal/model"
)

// SnapshotReader loads immutable snapshots from the workspace.
type SnapshotReader struct {
	db *sql.DB
}

// NewSnapshotReaderWithDB creates a SnapshotReader on a shared connection.
func NewSnapshotReaderWithDB(db *sql.DB) *SnapshotReader {
	return &SnapshotReader{db: db}
}

// Counts summarizes the workspace contents.
type Counts struct {
	Collections   int `json:"collections"`
	LinkTypes     int `json:"linkTypes"`
	Documents     int `json:"documents"`
	LinkInstances int `json:"linkInstances"`
}

// Revision returns the revision written by the last import, or "" for an
// empty workspace.
func (r *SnapshotReader) Revision() (string, error) {
	return getMetadata(r.db, "revision")
}

// ImportedAt returns the RFC 3339 time of the last import, or "" for an
// empty workspace.
func (r *SnapshotReader) ImportedAt() (string, error) {
	return getMetadata(r.db, "imported_at")
}

// ReadSchema loads all collections and link types in import order.
func (r *SnapshotReader) ReadSchema() ([]model.Collection, []model.LinkType, error) {
	collections, err := r.readCollections()
	if err != nil {
		return nil, nil, err
	}
	linkTypes, err := r.readLinkTypes()
	if err != nil {
		return nil, nil, err
	}
	return collections, linkTypes, nil
}

// ReadSnapshot loads the whole workspace.
func (r *SnapshotReader) ReadSnapshot() (*model.Snapshot, error) {
	collections, linkTypes, err := r.ReadSchema()
	if err != nil {
		return nil, err
	}
	docs, err := r.readDocuments(nil)
	if err != nil {
		return nil, err
	}
	links, err := r.readLinkInstances(nil)
	if err != nil {
		return nil, err
	}
	return &model.Snapshot{Collections: collections, LinkTypes: linkTypes, Documents: docs, LinkInstances: links}, nil
}

// ReadForStem loads the full schema but only the documents and links the
// stem's chain can reach.
func (r *SnapshotReader) ReadForStem(stem model.QueryStem) (*model.Snapshot, error) {
	collections, linkTypes, err := r.ReadSchema()
	if err != nil {
		return nil, err
	}

	c := chain.Resolve(stem, collections, linkTypes)
	docs, links, err := r.ReadData(c.CollectionIDs(), c.LinkTypeIDs())
	if err != nil {
		return nil, err
	}
	return &model.Snapshot{Collections: collections, LinkTypes: linkTypes, Documents: docs, LinkInstances: links}, nil
}

// ReadData loads the documents of the given collections and the link
// instances of the given link types. Empty id lists load nothing.
func (r *SnapshotReader) ReadData(collectionIDs, linkTypeIDs []string) ([]model.Document, []model.LinkInstance, error) {
	docs := []model.Document{}
	links := []model.LinkInstance{}
	var err error

	if len(collectionIDs) > 0 {
		docs, err = r.readDocuments(sq.Eq{"collection_id": collectionIDs})
		if err != nil {
			return nil, nil, err
		}
	}
	if len(linkTypeIDs) > 0 {
		links, err = r.readLinkInstances(sq.Eq{"link_type_id": linkTypeIDs})
		if err != nil {
			return nil, nil, err
		}
	}
	return docs, links, nil
}

// Counts returns the number of rows per record table.
func (r *SnapshotReader) Counts() (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"collections", &c.Collections},
		{"link_types", &c.LinkTypes},
		{"documents", &c.Documents},
		{"link_instances", &c.LinkInstances},
	}
	for _, t := range targets {
		err := sq.Select("COUNT(*)").From(t.table).RunWith(r.db).QueryRow().Scan(t.dst)
		if err != nil {
			return Counts{}, fmt.Errorf("failed to count %s: %w", t.table, err)
		}
	}
	return c, nil
}

func (r *SnapshotReader) readCollections() ([]model.Collection, error) {
	rows, err := sq.Select("collection_id", "name", "color", "icon", "attributes").
		From("collections").
		OrderBy("position").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	collections := []model.Collection{}
	for rows.Next() {
		var c model.Collection
		var attrs string
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		if c.Attributes, err = decodeAttributes(attrs); err != nil {
			return nil, fmt.Errorf("collection %s: %w", c.ID, err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (r *SnapshotReader) readLinkTypes() ([]model.LinkType, error) {
	rows, err := sq.Select("link_type_id", "name", "collection_a", "collection_b", "attributes").
		From("link_types").
		OrderBy("position").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query link types: %w", err)
	}
	defer rows.Close()

	linkTypes := []model.LinkType{}
	for rows.Next() {
		var lt model.LinkType
		var attrs string
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.CollectionIDs[0], &lt.CollectionIDs[1], &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan link type: %w", err)
		}
		if lt.Attributes, err = decodeAttributes(attrs); err != nil {
			return nil, fmt.Errorf("link type %s: %w", lt.ID, err)
		}
		linkTypes = append(linkTypes, lt)
	}
	return linkTypes, rows.Err()
}

func (r *SnapshotReader) readDocuments(where sq.Sqlizer) ([]model.Document, error) {
	q := sq.Select("document_id", "collection_id", "data").
		From("documents").
		OrderBy("position").
		PlaceholderFormat(sq.Question)
	if where != nil {
		q = q.Where(where)
	}

	rows, err := q.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var d model.Document
		var data string
		if err := rows.Scan(&d.ID, &d.CollectionID, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if d.Data, err = decodeData(data); err != nil {
			return nil, fmt.Errorf("document %s: %w", d.ID, err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *SnapshotReader) readLinkInstances(where sq.Sqlizer) ([]model.LinkInstance, error) {
	q := sq.Select("link_id", "link_type_id", "document_a", "document_b", "data").
		From("link_instances").
		OrderBy("position").
		PlaceholderFormat(sq.Question)
	if where != nil {
		q = q.Where(where)
	}

	rows, err := q.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query link instances: %w", err)
	}
	defer rows.Close()

	links := []model.LinkInstance{}
	for rows.Next() {
		var l model.LinkInstance
		var data string
		if err := rows.Scan(&l.ID, &l.LinkTypeID, &l.DocumentIDs[0], &l.DocumentIDs[1], &data); err != nil {
			return nil, fmt.Errorf("failed to scan link instance: %w", err)
		}
		if l.Data, err = decodeData(data); err != nil {
			return nil, fmt.Errorf("link instance %s: %w", l.ID, err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
