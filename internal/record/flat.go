package record

import "github.com/nao1215/tallyfetch/internal/model"

// FlatField is one entry of a flat record.
type FlatField struct {
	Key   string
	Value model.Value
}

// FlatRecord maps dotted paths to leaf values, keeping insertion order.
type FlatRecord struct {
	fields []FlatField
	index  map[string]int
}

// NewFlatRecord returns an empty flat record.
func NewFlatRecord() *FlatRecord {
	return &FlatRecord{index: make(map[string]int)}
}

// Set stores v under key. An existing key keeps its position and takes
// the new value.
func (r *FlatRecord) Set(key string, v model.Value) {
	if i, ok := r.index[key]; ok {
		r.fields[i].Value = v
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, FlatField{Key: key, Value: v})
}

// Get returns the value stored under key.
func (r *FlatRecord) Get(key string) (model.Value, bool) {
	i, ok := r.index[key]
	if !ok {
		return model.Value{}, false
	}
	return r.fields[i].Value, true
}

// Len returns the number of entries.
func (r *FlatRecord) Len() int {
	return len(r.fields)
}

// Fields returns the entries in insertion order.
func (r *FlatRecord) Fields() []FlatField {
	return r.fields
}

// Keys returns the dotted paths in insertion order.
func (r *FlatRecord) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Values returns the leaf values in insertion order.
func (r *FlatRecord) Values() []model.Value {
	values := make([]model.Value, len(r.fields))
	for i, f := range r.fields {
		values[i] = f.Value
	}
	return values
}

// Branch wraps the flat record as a depth-1 hierarchical record.
func (r *FlatRecord) Branch() *Branch {
	b := NewBranch()
	for _, f := range r.fields {
		b.Set(f.Key, NewLeaf(f.Value))
	}
	return b
}
