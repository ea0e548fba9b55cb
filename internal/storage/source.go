package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/mvp-joe/project-pivot/internal/model"
)

// Source supplies snapshots to hosts. Revision identifies the snapshot
// content; "" means unknown and disables result caching.
type Source interface {
	// Schema loads collections and link types.
	Schema(ctx context.Context) ([]model.Collection, []model.LinkType, error)

	// Snapshot loads at least everything the stem's chain can reach.
	Snapshot(ctx context.Context, stem model.QueryStem) (*model.Snapshot, string, error)
}

// DatasetSource reads a JSON dataset file on every call.
type DatasetSource struct {
	Path string
}

// NewDatasetSource creates a source for the dataset at path.
func NewDatasetSource(path string) *DatasetSource {
	return &DatasetSource{Path: path}
}

// Schema implements Source.
func (s *DatasetSource) Schema(ctx context.Context) ([]model.Collection, []model.LinkType, error) {
	snap, _, err := s.Snapshot(ctx, model.QueryStem{})
	if err != nil {
		return nil, nil, err
	}
	return snap.Collections, snap.LinkTypes, nil
}

// Snapshot implements Source. The revision is derived from the file's
// modification time and size.
func (s *DatasetSource) Snapshot(ctx context.Context, _ model.QueryStem) (*model.Snapshot, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat dataset: %w", err)
	}
	snap, err := LoadDataset(s.Path)
	if err != nil {
		return nil, "", err
	}
	return snap, fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size()), nil
}

// WorkspaceSource reads from a SQLite workspace.
type WorkspaceSource struct {
	reader *SnapshotReader
}

// NewWorkspaceSource creates a source on an open workspace.
func NewWorkspaceSource(db *sql.DB) *WorkspaceSource {
	return &WorkspaceSource{reader: NewSnapshotReaderWithDB(db)}
}

// Schema implements Source.
func (s *WorkspaceSource) Schema(ctx context.Context) ([]model.Collection, []model.LinkType, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return s.reader.ReadSchema()
}

// Snapshot implements Source using the workspace revision and loading only
// the records the stem reaches.
func (s *WorkspaceSource) Snapshot(ctx context.Context, stem model.QueryStem) (*model.Snapshot, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	revision, err := s.reader.Revision()
	if err != nil {
		return nil, "", err
	}
	snap, err := s.reader.ReadForStem(stem)
	if err != nil {
		return nil, "", err
	}
	return snap, revision, nil
}
