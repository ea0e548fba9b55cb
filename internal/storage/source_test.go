package storage

// Test Plan for Source implementations:
// - DatasetSource loads the file and derives a stable revision
// - DatasetSource reports a missing file
// - WorkspaceSource returns the import revision and the stem's records
// - Both honour a cancelled context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-pivot/internal/model"
)

func TestDatasetSource(t *testing.T) {
	t.Parallel()

	src := NewDatasetSource(sampleDataset)
	ctx := context.Background()

	snap, rev, err := src.Snapshot(ctx, model.QueryStem{CollectionID: "people"})
	require.NoError(t, err)
	assert.Len(t, snap.Documents, 9)
	assert.NotEmpty(t, rev)

	_, again, err := src.Snapshot(ctx, model.QueryStem{})
	require.NoError(t, err)
	assert.Equal(t, rev, again, "unchanged file keeps its revision")

	collections, linkTypes, err := src.Schema(ctx)
	require.NoError(t, err)
	assert.Len(t, collections, 3)
	assert.Len(t, linkTypes, 2)

	_, _, err = NewDatasetSource("missing.json").Snapshot(ctx, model.QueryStem{})
	assert.Error(t, err)
}

func TestWorkspaceSource(t *testing.T) {
	t.Parallel()

	db := NewTestDB(t)
	revision, err := NewSnapshotWriterWithDB(db).WriteSnapshot(sampleSnapshot())
	require.NoError(t, err)

	src := NewWorkspaceSource(db)
	snap, rev, err := src.Snapshot(context.Background(), model.QueryStem{CollectionID: "c3"})
	require.NoError(t, err)
	assert.Equal(t, revision, rev)
	require.Len(t, snap.Documents, 1)
	assert.Equal(t, "d3", snap.Documents[0].ID)
	assert.Empty(t, snap.LinkInstances)

	collections, linkTypes, err := src.Schema(context.Background())
	require.NoError(t, err)
	assert.Len(t, collections, 3)
	assert.Len(t, linkTypes, 2)
}

func TestSource_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewDatasetSource(sampleDataset).Snapshot(ctx, model.QueryStem{})
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = NewWorkspaceSource(NewTestDB(t)).Schema(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
