package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-pivot/internal/chain"
	"github.com/mvp-joe/project-pivot/internal/graph"
	"github.com/mvp-joe/project-pivot/internal/model"
)

// fixture is a small people -> projects dataset:
//
//	p1{a1:A, tags:[x,y]} -- t1{a1:10}, t2{a1:20}
//	p2{a1:B, tags:y}     -- t2, t3{a1:30}
//	p3{a1:C}             -- t4{a1:40}, t1
type fixture struct {
	collections []model.Collection
	linkTypes   []model.LinkType
	documents   []model.Document
	links       []model.LinkInstance
}

func newFixture() *fixture {
	return &fixture{
		collections: []model.Collection{
			{ID: "c1", Name: "People", Color: "#336699"},
			{ID: "c2", Name: "Projects"},
		},
		linkTypes: []model.LinkType{
			{ID: "lt1", Name: "works on", CollectionIDs: [2]string{"c1", "c2"}},
		},
		documents: []model.Document{
			{ID: "p1", CollectionID: "c1", Data: map[string]any{"a1": "A", "tags": []any{"x", "y"}}},
			{ID: "p2", CollectionID: "c1", Data: map[string]any{"a1": "B", "tags": "y"}},
			{ID: "p3", CollectionID: "c1", Data: map[string]any{"a1": "C"}},
			{ID: "t1", CollectionID: "c2", Data: map[string]any{"a1": 10.0}},
			{ID: "t2", CollectionID: "c2", Data: map[string]any{"a1": 20.0}},
			{ID: "t3", CollectionID: "c2", Data: map[string]any{"a1": 30.0}},
			{ID: "t4", CollectionID: "c2", Data: map[string]any{"a1": 40.0}},
		},
		links: []model.LinkInstance{
			{ID: "l1", LinkTypeID: "lt1", DocumentIDs: [2]string{"p1", "t1"}, Data: map[string]any{"role": "lead"}},
			{ID: "l2", LinkTypeID: "lt1", DocumentIDs: [2]string{"p1", "t2"}, Data: map[string]any{"role": "dev"}},
			{ID: "l3", LinkTypeID: "lt1", DocumentIDs: [2]string{"t2", "p2"}, Data: map[string]any{"role": "lead"}},
			{ID: "l4", LinkTypeID: "lt1", DocumentIDs: [2]string{"p2", "t3"}, Data: map[string]any{"role": "qa"}},
			{ID: "l5", LinkTypeID: "lt1", DocumentIDs: [2]string{"p3", "t4"}, Data: map[string]any{"role": "dev"}},
			{ID: "l6", LinkTypeID: "lt1", DocumentIDs: [2]string{"p3", "t1"}, Data: map[string]any{"role": ""}},
		},
	}
}

func (f *fixture) aggregator(t *testing.T, stem model.QueryStem) *Aggregator {
	t.Helper()
	c := chain.Resolve(stem, f.collections, f.linkTypes)
	require.NotEmpty(t, c)
	g := graph.Build(c.CollectionIDs(), f.documents, c.LinkTypes(), f.links)
	return New(c, g)
}

var peopleToProjects = model.QueryStem{CollectionID: "c1", LinkTypeIDs: []string{"lt1"}}

func attr(id string, index int) model.AggregationAttribute {
	return model.AggregationAttribute{AttributeID: id, ResourceIndex: index}
}

func attrs(a ...model.AggregationAttribute) []model.AggregationAttribute { return a }

func leaf(t *testing.T, tree *Tree, keys ...string) []any {
	t.Helper()
	node := walkKeys(t, tree, keys...)
	require.True(t, node.IsLeaf(), "node at %v is not a leaf", keys)
	return node.Leaf
}

func walkKeys(t *testing.T, tree *Tree, keys ...string) *Node {
	t.Helper()
	require.NotEmpty(t, keys)
	var node *Node
	for i, k := range keys {
		var ok bool
		node, ok = tree.Get(k)
		require.True(t, ok, "missing key %q at level %d, have %v", k, i, tree.Keys())
		tree = node.Children
	}
	return node
}
