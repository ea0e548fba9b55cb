package aggregate

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/mvp-joe/project-pivot/internal/chain"
	"github.com/mvp-joe/project-pivot/internal/graph"
	"github.com/mvp-joe/project-pivot/internal/model"
)

// ErrResourceIndexOutOfRange indicates an attribute pinned outside the resolved chain.
var ErrResourceIndexOutOfRange = errors.New("resource index out of range")

// Result is the output of one aggregation call.
type Result struct {
	Tree         *Tree    `json:"tree"`
	RowLevels    int      `json:"rowLevels"`
	ColumnLevels int      `json:"columnLevels"`
	ValueKeys    []string `json:"valueKeys,omitempty"`
}

// Aggregator groups the documents of a linked graph along a resolved chain.
type Aggregator struct {
	chain chain.Chain
	graph *graph.Graph
}

// New creates an Aggregator. The graph must be built from the chain's collection order.
func New(c chain.Chain, g *graph.Graph) *Aggregator {
	return &Aggregator{chain: c, graph: g}
}

// Aggregate groups by rows, then columns, and collects raw values of the value
// attributes at the leaves. Keys keep first-seen order; nothing is sorted.
// With no attributes at all the result is an empty tree with zero levels.
func (a *Aggregator) Aggregate(rows, columns, values []model.AggregationAttribute) (*Result, error) {
	for _, axis := range []struct {
		name  string
		attrs []model.AggregationAttribute
	}{{"row", rows}, {"column", columns}, {"value", values}} {
		for _, attr := range axis.attrs {
			if attr.ResourceIndex < 0 || attr.ResourceIndex >= a.chain.Len() {
				return nil, fmt.Errorf("%w: %s attribute %s at index %d, chain length %d",
					ErrResourceIndexOutOfRange, axis.name, attr.AttributeID, attr.ResourceIndex, a.chain.Len())
			}
		}
	}

	res := &Result{
		Tree:         NewTree(),
		RowLevels:    len(rows),
		ColumnLevels: len(columns),
		ValueKeys:    valueKeys(values),
	}

	groups := make([]model.AggregationAttribute, 0, len(rows)+len(columns))
	groups = append(groups, rows...)
	groups = append(groups, columns...)

	if len(groups) == 0 && len(values) == 0 {
		return res, nil
	}

	start := firstIndex(groups, values)
	r := &run{chain: a.chain, graph: a.graph, groups: groups, values: values}
	items := r.scope(start)

	if len(groups) > 0 {
		res.Tree = r.group(items, start, 0)
	} else {
		res.Tree = r.collect(items, start)
	}
	return res, nil
}

func firstIndex(groups, values []model.AggregationAttribute) int {
	if len(groups) > 0 {
		return groups[0].ResourceIndex
	}
	return values[0].ResourceIndex
}

func valueKeys(values []model.AggregationAttribute) []string {
	var keys []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if k := v.Key(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// item is one object in scope at a chain position: a document at collection
// steps, a link instance (with both endpoint documents) at link type steps.
type item struct {
	doc   *graph.Node
	link  *model.LinkInstance
	lower *graph.Node // endpoint at position-1
	upper *graph.Node // endpoint at position+1
	ref   uint32
}

func (it item) data() map[string]any {
	if it.link != nil {
		return it.link.Data
	}
	return it.doc.Data
}

// run holds the configuration of one Aggregate call. The current chain
// position is passed explicitly through every call, never stored.
type run struct {
	chain  chain.Chain
	graph  *graph.Graph
	groups []model.AggregationAttribute
	values []model.AggregationAttribute
}

// scope returns every object at a chain position, in base document order.
func (r *run) scope(pos int) []item {
	if r.chain.IsCollection(pos) {
		docs := r.graph.Documents(r.chain[pos].ResourceID)
		items := make([]item, len(docs))
		for i, d := range docs {
			items[i] = item{doc: d, ref: d.Ref()}
		}
		return items
	}

	lower := r.chain[pos-1].ResourceID
	var docs []item
	for _, d := range r.graph.Documents(lower) {
		docs = append(docs, item{doc: d, ref: d.Ref()})
	}
	return r.forward(docs, pos-1)
}

// walk carries a scoped set from one chain position to another, one step at a time.
func (r *run) walk(items []item, from, to int) []item {
	for from < to {
		items = r.forward(items, from)
		from++
	}
	for from > to {
		items = r.backward(items, from)
		from--
	}
	return items
}

func (r *run) forward(items []item, pos int) []item {
	seen := roaring.New()
	var out []item

	if r.chain.IsCollection(pos) {
		linkTypeID := r.chain[pos+1].ResourceID
		next := r.chain[pos+2].ResourceID
		for _, it := range items {
			for _, e := range r.graph.Neighbors(it.doc, linkTypeID, next, true) {
				if seen.CheckedAdd(e.Ref()) {
					out = append(out, item{link: e.Link, lower: it.doc, upper: e.Document, ref: e.Ref()})
				}
			}
		}
		return out
	}

	for _, it := range items {
		if seen.CheckedAdd(it.upper.Ref()) {
			out = append(out, item{doc: it.upper, ref: it.upper.Ref()})
		}
	}
	return out
}

func (r *run) backward(items []item, pos int) []item {
	seen := roaring.New()
	var out []item

	if r.chain.IsCollection(pos) {
		linkTypeID := r.chain[pos-1].ResourceID
		prev := r.chain[pos-2].ResourceID
		for _, it := range items {
			for _, e := range r.graph.Neighbors(it.doc, linkTypeID, prev, false) {
				if seen.CheckedAdd(e.Ref()) {
					out = append(out, item{link: e.Link, lower: e.Document, upper: it.doc, ref: e.Ref()})
				}
			}
		}
		return out
	}

	for _, it := range items {
		if seen.CheckedAdd(it.lower.Ref()) {
			out = append(out, item{doc: it.lower, ref: it.lower.Ref()})
		}
	}
	return out
}

type bucket struct {
	value model.Value
	items []item
	seen  *roaring.Bitmap
}

// group builds one grouping level and recurses into the next one.
func (r *run) group(items []item, pos, level int) *Tree {
	attr := r.groups[level]
	scoped := r.walk(items, pos, attr.ResourceIndex)

	buckets := make(map[string]*bucket)
	var order []string
	for _, it := range scoped {
		for _, v := range model.Expand(model.Lookup(it.data(), attr.AttributeID)) {
			key := v.Key()
			b, ok := buckets[key]
			if !ok {
				b = &bucket{value: v, seen: roaring.New()}
				buckets[key] = b
				order = append(order, key)
			}
			if b.seen.CheckedAdd(it.ref) {
				b.items = append(b.items, it)
			}
		}
	}

	tree := NewTree()
	for _, key := range order {
		b := buckets[key]
		node := &Node{Value: b.value}
		switch {
		case level+1 < len(r.groups):
			node.Children = r.group(b.items, attr.ResourceIndex, level+1)
		case len(r.values) > 0:
			node.Children = r.collect(b.items, attr.ResourceIndex)
		default:
			node.Leaf = []any{}
		}
		tree.put(key, node)
	}
	return tree
}

// collect builds the value level: one leaf of raw values per value attribute.
func (r *run) collect(items []item, pos int) *Tree {
	tree := NewTree()
	for _, attr := range r.values {
		key := attr.Key()
		if _, done := tree.Get(key); done {
			continue
		}

		leaf := []any{}
		for _, it := range r.walk(items, pos, attr.ResourceIndex) {
			leaf = appendRaw(leaf, model.Lookup(it.data(), attr.AttributeID))
		}
		tree.put(key, &Node{Value: model.NewValue(key), Leaf: leaf})
	}
	return tree
}

// appendRaw appends the raw non-empty values of an attribute, flattening
// lists of any element type.
func appendRaw(leaf []any, raw any) []any {
	if list, ok := model.Elements(raw); ok {
		for _, el := range list {
			leaf = appendRaw(leaf, el)
		}
		return leaf
	}
	if raw == nil || raw == "" {
		return leaf
	}
	return append(leaf, raw)
}
