package chain

// Test Plan for Collection Chain Resolver:
// - OtherCollectionID resolves both endpoints and rejects unrelated collections
// - CollectionIDs returns 1 + len(linkTypeIds) ids when everything resolves
// - CollectionIDs truncates at an unknown link type
// - CollectionIDs truncates at a link type that does not touch the frontier
// - CollectionIDs walks link types regardless of their stored endpoint order
// - Resolve interleaves collections and link types with indexes
// - Resolve annotates link type steps with neighboring collections
// - Resolve returns an empty chain for an unknown base collection
// - Resolve truncates when a collection object is missing
// - Consecutive steps share exactly one collection endpoint
// - Chain helpers (CollectionIDs, LinkTypeIDs, LinkTypes, Step, IsCollection)

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-pivot/internal/model"
)

func testSchema() ([]model.Collection, []model.LinkType) {
	collections := []model.Collection{
		{ID: "c1", Name: "Projects"},
		{ID: "c2", Name: "Tasks"},
		{ID: "c3", Name: "People"},
	}
	linkTypes := []model.LinkType{
		{ID: "lt1", CollectionIDs: [2]string{"c1", "c2"}},
		// stored "backwards" relative to a c1 -> c2 -> c3 stem
		{ID: "lt2", CollectionIDs: [2]string{"c3", "c2"}},
		{ID: "lt3", CollectionIDs: [2]string{"c1", "c3"}},
	}
	return collections, linkTypes
}

func TestOtherCollectionID(t *testing.T) {
	t.Parallel()

	lt := model.LinkType{ID: "lt", CollectionIDs: [2]string{"a", "b"}}

	other, ok := OtherCollectionID(lt, "a")
	require.True(t, ok)
	assert.Equal(t, "b", other)

	other, ok = OtherCollectionID(lt, "b")
	require.True(t, ok)
	assert.Equal(t, "a", other)

	_, ok = OtherCollectionID(lt, "c")
	assert.False(t, ok)

	self := model.LinkType{ID: "self", CollectionIDs: [2]string{"a", "a"}}
	other, ok = OtherCollectionID(self, "a")
	require.True(t, ok)
	assert.Equal(t, "a", other)
}

func TestCollectionIDs_FullyResolved(t *testing.T) {
	t.Parallel()

	_, linkTypes := testSchema()
	stem := model.QueryStem{CollectionID: "c1", LinkTypeIDs: []string{"lt1", "lt2"}}

	ids := CollectionIDs(stem, linkTypes)
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids)
	assert.Len(t, ids, 1+len(stem.LinkTypeIDs))
}

func TestCollectionIDs_Truncation(t *testing.T) {
	t.Parallel()

	_, linkTypes := testSchema()

	tests := []struct {
		name string
		stem model.QueryStem
		want []string
	}{
		{
			name: "unknown link type",
			stem: model.QueryStem{CollectionID: "c1", LinkTypeIDs: []string{"lt1", "deleted", "lt2"}},
			want: []string{"c1", "c2"},
		},
		{
			name: "link type not touching frontier",
			stem: model.QueryStem{CollectionID: "c1", LinkTypeIDs: []string{"lt2"}},
			want: []string{"c1"},
		},
		{
			name: "empty stem",
			stem: model.QueryStem{CollectionID: "c1"},
			want: []string{"c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollectionIDs(tt.stem, linkTypes))
		})
	}
}

func TestResolve_Interleaves(t *testing.T) {
	t.Parallel()

	collections, linkTypes := testSchema()
	stem := model.QueryStem{CollectionID: "c1", LinkTypeIDs: []string{"lt1", "lt2"}}

	c := Resolve(stem, collections, linkTypes)
	require.Equal(t, 5, c.Len())

	wantKinds := []Kind{KindCollection, KindLinkType, KindCollection, KindLinkType, KindCollection}
	wantIDs := []string{"c1", "lt1", "c2", "lt2", "c3"}
	for i, step := range c {
		assert.Equal(t, i, step.Index)
		assert.Equal(t, wantKinds[i], step.Kind)
		assert.Equal(t, wantIDs[i], step.ResourceID)
	}

	require.NotNil(t, c[1].LinkType)
	assert.Equal(t, "c1", c[1].Neighbors[0].ID)
	assert.Equal(t, "c2", c[1].Neighbors[1].ID)
	assert.Equal(t, "c2", c[3].Neighbors[0].ID)
	assert.Equal(t, "c3", c[3].Neighbors[1].ID)
	assert.Equal(t, "Tasks", c[2].Collection.Name)

	assert.Equal(t, []string{"c1", "c2", "c3"}, c.CollectionIDs())
	assert.Equal(t, []string{"lt1", "lt2"}, c.LinkTypeIDs())
	assert.Len(t, c.LinkTypes(), 2)
	assert.Equal(t, "c1", c.BaseCollectionID())
	assert.Equal(t, CollectionIDs(stem, linkTypes), c.CollectionIDs())
}

func TestResolve_ConsecutiveStepsShareOneEndpoint(t *testing.T) {
	t.Parallel()

	collections, linkTypes := testSchema()
	stem := model.QueryStem{CollectionID: "c2", LinkTypeIDs: []string{"lt2", "lt3", "lt1"}}

	c := Resolve(stem, collections, linkTypes)
	require.Equal(t, 7, c.Len())

	for i := 1; i < c.Len(); i += 2 {
		lt := c[i].LinkType
		prev, next := c[i-1].ResourceID, c[i+1].ResourceID
		shared := 0
		for _, id := range lt.CollectionIDs {
			if id == prev {
				shared++
			}
		}
		assert.Equal(t, 1, shared, "link type %s must touch %s once", lt.ID, prev)
		other, ok := OtherCollectionID(*lt, prev)
		require.True(t, ok)
		assert.Equal(t, next, other)
	}
}

func TestResolve_UnknownBaseCollection(t *testing.T) {
	t.Parallel()

	collections, linkTypes := testSchema()
	c := Resolve(model.QueryStem{CollectionID: "gone", LinkTypeIDs: []string{"lt1"}}, collections, linkTypes)

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "", c.BaseCollectionID())
	assert.Empty(t, c.CollectionIDs())
}

func TestResolve_MissingCollectionTruncates(t *testing.T) {
	t.Parallel()

	collections, linkTypes := testSchema()
	collections = collections[:2] // c3 deleted

	c := Resolve(model.QueryStem{CollectionID: "c1", LinkTypeIDs: []string{"lt1", "lt2"}}, collections, linkTypes)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"c1", "c2"}, c.CollectionIDs())
}

func TestChain_StepAndIsCollection(t *testing.T) {
	t.Parallel()

	collections, linkTypes := testSchema()
	c := Resolve(model.QueryStem{CollectionID: "c1", LinkTypeIDs: []string{"lt1"}}, collections, linkTypes)

	step, ok := c.Step(1)
	require.True(t, ok)
	assert.Equal(t, "lt1", step.ResourceID)

	_, ok = c.Step(3)
	assert.False(t, ok)
	_, ok = c.Step(-1)
	assert.False(t, ok)

	assert.True(t, c.IsCollection(0))
	assert.False(t, c.IsCollection(1))
	assert.True(t, c.IsCollection(2))
	assert.False(t, c.IsCollection(3))
}
