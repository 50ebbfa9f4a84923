package record

import (
	"errors"
	"fmt"

	"github.com/nao1215/tallyfetch/internal/model"
)

// Separator joins path segments.
const Separator = "."

// MaxDepth bounds the nesting the flattener and the decoder accept.
// Records built in memory may contain cycles; they hit this bound
// instead of recursing forever.
const MaxDepth = 512

var (
	// ErrNotMapping is returned when the root of a record is not a Branch.
	ErrNotMapping = errors.New("root is not a mapping")

	// ErrNilNode is returned when a nil node is found in a record.
	ErrNilNode = errors.New("nil node")

	// ErrTooDeep is returned when a record is nested deeper than MaxDepth.
	ErrTooDeep = fmt.Errorf("record nested deeper than %d levels", MaxDepth)
)

// Flatten reduces a hierarchical record to a flat record. It descends into
// branches only; every leaf is stored under the dotted path of its keys.
// Root keys have no prefix.
//
// Flatten fails with a structural StageError when root is not a *Branch,
// when a nil node is found or when the record is nested deeper than
// MaxDepth.
func Flatten(root Node) (*FlatRecord, error) {
	b, ok := root.(*Branch)
	if !ok || b == nil {
		return nil, model.NewStructuralError("flatten", "", ErrNotMapping)
	}

	flat := NewFlatRecord()
	if err := flattenInto(flat, b, "", 1); err != nil {
		return nil, err
	}
	return flat, nil
}

func flattenInto(flat *FlatRecord, b *Branch, prefix string, depth int) error {
	if depth > MaxDepth {
		return model.NewStructuralError("flatten", prefix, ErrTooDeep)
	}

	for _, f := range b.fields {
		key := f.Key
		if prefix != "" {
			key = prefix + Separator + f.Key
		}

		switch n := f.Node.(type) {
		case *Branch:
			if n == nil {
				return model.NewStructuralError("flatten", key, ErrNilNode)
			}
			if err := flattenInto(flat, n, key, depth+1); err != nil {
				return err
			}
		case *Leaf:
			if n == nil {
				return model.NewStructuralError("flatten", key, ErrNilNode)
			}
			flat.Set(key, n.Value)
		default:
			return model.NewStructuralError("flatten", key, ErrNilNode)
		}
	}
	return nil
}
