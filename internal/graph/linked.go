package graph

import "github.com/mvp-joe/project-pivot/internal/model"

// Graph is the linked document graph of one aggregation run.
// It is built once from immutable inputs and never modified afterwards.
type Graph struct {
	collectionIDs []string
	chainIndex    map[string]int // collection id -> first chain position
	collections   map[string]*collectionIndex
	byID          map[string]*Node
	nodes         []*Node
	linkTypes     map[string]*model.LinkType
	links         []*model.LinkInstance // attached links, indexed by ref
}

// Build indexes documents and attaches the link instances of the relevant
// link types.
//
// collectionIDs is the chain's collection order; it decides direction: the
// endpoint whose collection comes first records the link under LinksTo, the
// other under LinksFrom. Link instances with a missing endpoint document, or
// with endpoints outside the chain or the link type's collections, are
// dropped.
func Build(collectionIDs []string, documents []model.Document, linkTypes []model.LinkType, links []model.LinkInstance) *Graph {
	g := &Graph{
		collectionIDs: append([]string(nil), collectionIDs...),
		chainIndex:    make(map[string]int, len(collectionIDs)),
		collections:   make(map[string]*collectionIndex),
		byID:          make(map[string]*Node, len(documents)),
		nodes:         make([]*Node, 0, len(documents)),
		linkTypes:     make(map[string]*model.LinkType, len(linkTypes)),
	}

	for i, id := range collectionIDs {
		if _, seen := g.chainIndex[id]; !seen {
			g.chainIndex[id] = i
		}
	}

	// Pass 1: documents
	for i := range documents {
		doc := documents[i]
		if _, dup := g.byID[doc.ID]; dup {
			continue
		}

		node := &Node{Document: doc, ref: uint32(len(g.nodes))}
		g.nodes = append(g.nodes, node)
		g.byID[doc.ID] = node

		idx, ok := g.collections[doc.CollectionID]
		if !ok {
			idx = &collectionIndex{byID: make(map[string]*Node)}
			g.collections[doc.CollectionID] = idx
		}
		idx.order = append(idx.order, node)
		idx.byID[doc.ID] = node
	}

	for i := range linkTypes {
		if _, dup := g.linkTypes[linkTypes[i].ID]; !dup {
			g.linkTypes[linkTypes[i].ID] = &linkTypes[i]
		}
	}

	// Pass 2: links
	for i := range links {
		link := &links[i]
		lt, ok := g.linkTypes[link.LinkTypeID]
		if !ok {
			continue
		}

		a, okA := g.byID[link.DocumentIDs[0]]
		b, okB := g.byID[link.DocumentIDs[1]]
		if !okA || !okB {
			continue
		}
		if !connects(lt, a.CollectionID, b.CollectionID) {
			continue
		}

		posA, okA := g.chainIndex[a.CollectionID]
		posB, okB := g.chainIndex[b.CollectionID]
		if !okA || !okB {
			continue
		}

		earlier, later := a, b
		if posB < posA {
			earlier, later = b, a
		}

		ref := uint32(len(g.links))
		g.links = append(g.links, link)
		earlier.LinksTo = append(earlier.LinksTo, Edge{Link: link, Document: later, ref: ref})
		later.LinksFrom = append(later.LinksFrom, Edge{Link: link, Document: earlier, ref: ref})
	}

	return g
}

func connects(lt *model.LinkType, a, b string) bool {
	return (lt.CollectionIDs[0] == a && lt.CollectionIDs[1] == b) ||
		(lt.CollectionIDs[0] == b && lt.CollectionIDs[1] == a)
}

// Documents returns the documents of a collection in input order.
func (g *Graph) Documents(collectionID string) []*Node {
	idx, ok := g.collections[collectionID]
	if !ok {
		return nil
	}
	return idx.order
}

// Document returns a document of a collection by id.
func (g *Graph) Document(collectionID, documentID string) (*Node, bool) {
	idx, ok := g.collections[collectionID]
	if !ok {
		return nil, false
	}
	n, ok := idx.byID[documentID]
	return n, ok
}

// Node returns a document by id regardless of its collection.
func (g *Graph) Node(documentID string) (*Node, bool) {
	n, ok := g.byID[documentID]
	return n, ok
}

// CollectionIDs returns the chain's collection order the graph was built with.
func (g *Graph) CollectionIDs() []string {
	return g.collectionIDs
}

// ChainIndex returns the first position of a collection in the chain's
// collection order, or -1.
func (g *Graph) ChainIndex(collectionID string) int {
	if i, ok := g.chainIndex[collectionID]; ok {
		return i
	}
	return -1
}

// Len returns the number of documents in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// LinkCount returns the number of link instances that were attached.
func (g *Graph) LinkCount() int { return len(g.links) }

// EdgeCount returns the total length of all LinksTo and LinksFrom lists.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, n := range g.nodes {
		total += len(n.LinksTo) + len(n.LinksFrom)
	}
	return total
}

// Neighbors returns the edges of n that follow linkTypeID into collection toward.
//
// For ordinary link types both lists are searched, so walks stay correct on
// chains that visit a collection twice. Self link types connect a collection
// with itself; there the walk direction picks LinksTo (forward) or LinksFrom.
func (g *Graph) Neighbors(n *Node, linkTypeID, toward string, forward bool) []Edge {
	lt, ok := g.linkTypes[linkTypeID]
	if !ok {
		return nil
	}

	if lt.CollectionIDs[0] == lt.CollectionIDs[1] {
		list := n.LinksFrom
		if forward {
			list = n.LinksTo
		}
		return filterEdges(nil, list, linkTypeID, toward)
	}

	out := filterEdges(nil, n.LinksTo, linkTypeID, toward)
	return filterEdges(out, n.LinksFrom, linkTypeID, toward)
}

func filterEdges(out, edges []Edge, linkTypeID, toward string) []Edge {
	for _, e := range edges {
		if e.Link.LinkTypeID == linkTypeID && e.Document.CollectionID == toward {
			out = append(out, e)
		}
	}
	return out
}
