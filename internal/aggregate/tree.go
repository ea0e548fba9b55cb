package aggregate

import (
	"bytes"
	"encoding/json"

	"github.com/mvp-joe/project-pivot/internal/model"
)

// Node is one key of an aggregated tree level.
// Grouping nodes carry Children; terminal nodes carry Leaf, which is empty
// (never nil) when the node only records that the group exists.
type Node struct {
	Value    model.Value
	Children *Tree
	Leaf     []any
}

// IsLeaf reports whether the node terminates the tree.
func (n *Node) IsLeaf() bool { return n.Children == nil }

// Tree is an insertion-ordered map from canonical value keys to nodes.
type Tree struct {
	keys  []string
	nodes map[string]*Node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*Node)}
}

// Len returns the number of keys at this level.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the canonical keys in first-seen order.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Get returns the node stored under a canonical key.
func (t *Tree) Get(key string) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	n, ok := t.nodes[key]
	return n, ok
}

// Nodes returns the nodes in first-seen order.
func (t *Tree) Nodes() []*Node {
	if t == nil {
		return nil
	}
	out := make([]*Node, len(t.keys))
	for i, k := range t.keys {
		out[i] = t.nodes[k]
	}
	return out
}

// Values returns the typed values of the keys in first-seen order.
func (t *Tree) Values() []model.Value {
	if t == nil {
		return nil
	}
	out := make([]model.Value, len(t.keys))
	for i, k := range t.keys {
		out[i] = t.nodes[k].Value
	}
	return out
}

func (t *Tree) put(key string, n *Node) {
	if _, exists := t.nodes[key]; !exists {
		t.keys = append(t.keys, key)
	}
	t.nodes[key] = n
}

// MarshalJSON writes the tree as a JSON object keyed by display values, in
// insertion order. Display collisions (1 vs "1") fall back to canonical keys.
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}

	seen := make(map[string]bool, len(t.keys))
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		n := t.nodes[k]
		name := n.Value.String()
		if seen[name] {
			name = k
		}
		seen[name] = true

		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		var body []byte
		if n.Children != nil {
			body, err = n.Children.MarshalJSON()
		} else {
			body, err = json.Marshal(n.Leaf)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
