package graph

import "github.com/mvp-joe/project-pivot/internal/model"

// Edge is one side of a link instance: the link and the document on the other end.
type Edge struct {
	Link     *model.LinkInstance
	Document *Node

	ref uint32
}

// Ref returns the dense id of the link instance. Both sides of a link share it.
func (e Edge) Ref() uint32 { return e.ref }

// Node is a document annotated with its links along the chain.
// LinksTo points at documents in later chain positions, LinksFrom at earlier ones.
type Node struct {
	model.Document

	LinksTo   []Edge
	LinksFrom []Edge

	ref uint32
}

// Ref returns the dense id of the node, usable as a bitmap member.
func (n *Node) Ref() uint32 { return n.ref }

// collectionIndex keeps the documents of one collection in input order.
type collectionIndex struct {
	order []*Node
	byID  map[string]*Node
}
