package chain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/mvp-joe/project-pivot/internal/model"
)

// ErrNoPath indicates that no chain of link types connects two collections.
var ErrNoPath = errors.New("no link path between collections")

const linkTypeAttr = "link_type"

// SchemaGraph is the undirected graph of collections (vertices) and the link
// types that connect them (edges). Used to build stems between collections.
type SchemaGraph struct {
	g graph.Graph[string, string]

	// linkTypesByCollection keeps every link type touching a collection,
	// including the ones the graph collapses (parallel edges, self links).
	linkTypesByCollection map[string][]string
}

// NewSchemaGraph builds the schema graph. When several link types connect the
// same pair of collections, the first one becomes the graph edge. Link types
// referencing unknown collections are ignored.
func NewSchemaGraph(collections []model.Collection, linkTypes []model.LinkType) *SchemaGraph {
	s := &SchemaGraph{
		g:                     graph.New(graph.StringHash),
		linkTypesByCollection: make(map[string][]string),
	}

	for _, c := range collections {
		_ = s.g.AddVertex(c.ID) // duplicates are harmless
	}

	for _, lt := range linkTypes {
		a, b := lt.CollectionIDs[0], lt.CollectionIDs[1]
		if _, err := s.g.Vertex(a); err != nil {
			continue
		}
		if _, err := s.g.Vertex(b); err != nil {
			continue
		}

		s.linkTypesByCollection[a] = append(s.linkTypesByCollection[a], lt.ID)
		if a == b {
			continue // self links never shorten a path
		}
		s.linkTypesByCollection[b] = append(s.linkTypesByCollection[b], lt.ID)

		// ErrEdgeAlreadyExists: an earlier link type already connects the pair.
		_ = s.g.AddEdge(a, b, graph.EdgeAttribute(linkTypeAttr, lt.ID))
	}

	for id := range s.linkTypesByCollection {
		sort.Strings(s.linkTypesByCollection[id])
	}

	return s
}

// Path returns the stem with the fewest link types leading from one
// collection to another.
func (s *SchemaGraph) Path(from, to string) (model.QueryStem, error) {
	if _, err := s.g.Vertex(from); err != nil {
		return model.QueryStem{}, fmt.Errorf("%w: unknown collection %s", ErrNoPath, from)
	}
	if _, err := s.g.Vertex(to); err != nil {
		return model.QueryStem{}, fmt.Errorf("%w: unknown collection %s", ErrNoPath, to)
	}

	stem := model.QueryStem{CollectionID: from, LinkTypeIDs: []string{}}
	if from == to {
		return stem, nil
	}

	hops, err := graph.ShortestPath(s.g, from, to)
	if err != nil {
		return model.QueryStem{}, fmt.Errorf("%w: %s -> %s: %v", ErrNoPath, from, to, err)
	}

	for i := 0; i+1 < len(hops); i++ {
		edge, err := s.g.Edge(hops[i], hops[i+1])
		if err != nil {
			return model.QueryStem{}, fmt.Errorf("failed to read edge %s -> %s: %w", hops[i], hops[i+1], err)
		}
		stem.LinkTypeIDs = append(stem.LinkTypeIDs, edge.Properties.Attributes[linkTypeAttr])
	}
	return stem, nil
}

// LinkTypesOf lists the link types that can extend a stem ending at collectionID.
func (s *SchemaGraph) LinkTypesOf(collectionID string) []string {
	ids := s.linkTypesByCollection[collectionID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Order returns the number of collections in the graph.
func (s *SchemaGraph) Order() int {
	n, err := s.g.Order()
	if err != nil {
		return 0
	}
	return n
}
