package chain

// Test Plan for SchemaGraph:
// - Path returns the stem with the fewest link types
// - Path for the same collection returns an empty stem
// - Path result resolves into a full chain
// - Path fails with ErrNoPath for unknown or unreachable collections
// - Parallel link types keep the first one as the graph edge
// - LinkTypesOf lists every link type touching a collection, sorted

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-pivot/internal/model"
)

func TestSchemaGraph_Path(t *testing.T) {
	t.Parallel()

	collections := []model.Collection{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	linkTypes := []model.LinkType{
		{ID: "ab", CollectionIDs: [2]string{"a", "b"}},
		{ID: "bc", CollectionIDs: [2]string{"c", "b"}},
		{ID: "cd", CollectionIDs: [2]string{"c", "d"}},
	}
	s := NewSchemaGraph(collections, linkTypes)
	assert.Equal(t, 4, s.Order())

	stem, err := s.Path("a", "d")
	require.NoError(t, err)
	assert.Equal(t, "a", stem.CollectionID)
	assert.Equal(t, []string{"ab", "bc", "cd"}, stem.LinkTypeIDs)

	c := Resolve(stem, collections, linkTypes)
	assert.Equal(t, []string{"a", "b", "c", "d"}, c.CollectionIDs())

	stem, err = s.Path("d", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"cd", "bc"}, stem.LinkTypeIDs)
}

func TestSchemaGraph_PathToSelf(t *testing.T) {
	t.Parallel()

	s := NewSchemaGraph([]model.Collection{{ID: "a"}}, nil)
	stem, err := s.Path("a", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", stem.CollectionID)
	assert.Empty(t, stem.LinkTypeIDs)
}

func TestSchemaGraph_NoPath(t *testing.T) {
	t.Parallel()

	collections := []model.Collection{{ID: "a"}, {ID: "b"}, {ID: "island"}}
	linkTypes := []model.LinkType{{ID: "ab", CollectionIDs: [2]string{"a", "b"}}}
	s := NewSchemaGraph(collections, linkTypes)

	_, err := s.Path("a", "island")
	assert.ErrorIs(t, err, ErrNoPath)

	_, err = s.Path("a", "unknown")
	assert.ErrorIs(t, err, ErrNoPath)

	_, err = s.Path("unknown", "a")
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestSchemaGraph_ShortestWins(t *testing.T) {
	t.Parallel()

	collections := []model.Collection{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	linkTypes := []model.LinkType{
		{ID: "ab", CollectionIDs: [2]string{"a", "b"}},
		{ID: "bc", CollectionIDs: [2]string{"b", "c"}},
		{ID: "ac", CollectionIDs: [2]string{"a", "c"}},
	}
	s := NewSchemaGraph(collections, linkTypes)

	stem, err := s.Path("a", "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"ac"}, stem.LinkTypeIDs)
}

func TestSchemaGraph_ParallelLinkTypes(t *testing.T) {
	t.Parallel()

	collections := []model.Collection{{ID: "a"}, {ID: "b"}}
	linkTypes := []model.LinkType{
		{ID: "first", CollectionIDs: [2]string{"a", "b"}},
		{ID: "second", CollectionIDs: [2]string{"b", "a"}},
		{ID: "self", CollectionIDs: [2]string{"a", "a"}},
		{ID: "dangling", CollectionIDs: [2]string{"a", "zzz"}},
	}
	s := NewSchemaGraph(collections, linkTypes)

	stem, err := s.Path("a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, stem.LinkTypeIDs)

	assert.Equal(t, []string{"first", "second", "self"}, s.LinkTypesOf("a"))
	assert.Equal(t, []string{"first", "second"}, s.LinkTypesOf("b"))
	assert.Empty(t, s.LinkTypesOf("zzz"))
}
