package record

import "github.com/nao1215/tallyfetch/internal/model"

// Node is either a *Leaf or a *Branch.
type Node interface {
	isNode()
}

// Leaf is a node holding an atomic value.
type Leaf struct {
	Value model.Value
}

// Field is one keyed child of a Branch.
type Field struct {
	Key  string
	Node Node
}

// Branch is a mapping node. Fields keep insertion order.
type Branch struct {
	fields []Field
	index  map[string]int
}

func (*Leaf) isNode()   {}
func (*Branch) isNode() {}

// NewLeaf returns a leaf holding v.
func NewLeaf(v model.Value) *Leaf {
	return &Leaf{Value: v}
}

// NewBranch returns a branch holding the given fields in order.
// A repeated key replaces the earlier node and keeps its position.
func NewBranch(fields ...Field) *Branch {
	b := &Branch{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		b.Set(f.Key, f.Node)
	}
	return b
}

// Set adds key to the branch, or replaces its node in place if the key
// already exists.
func (b *Branch) Set(key string, n Node) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[key]; ok {
		b.fields[i].Node = n
		return
	}
	b.index[key] = len(b.fields)
	b.fields = append(b.fields, Field{Key: key, Node: n})
}

// Get returns the node stored under key.
func (b *Branch) Get(key string) (Node, bool) {
	i, ok := b.index[key]
	if !ok {
		return nil, false
	}
	return b.fields[i].Node, true
}

// Fields returns the fields in insertion order.
func (b *Branch) Fields() []Field {
	return b.fields
}

// Len returns the number of fields.
func (b *Branch) Len() int {
	return len(b.fields)
}
