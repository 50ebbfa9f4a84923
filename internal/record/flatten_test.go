package record

import (
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/tallyfetch/internal/model"
)

func num(s string) *Leaf { return NewLeaf(model.NumberValue(s)) }
func str(s string) *Leaf { return NewLeaf(model.StringValue(s)) }

// TestFlatten tests flattening of nested branches.
func TestFlatten(t *testing.T) {
	t.Parallel()

	t.Run("nested mapping becomes dotted paths", func(t *testing.T) {
		t.Parallel()

		root := NewBranch(
			Field{Key: "a", Node: NewBranch(Field{Key: "b", Node: num("1")})},
			Field{Key: "c", Node: num("1")},
		)

		flat, err := Flatten(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		keys := flat.Keys()
		if len(keys) != 2 || keys[0] != "a.b" || keys[1] != "c" {
			t.Errorf("unexpected keys %v", keys)
		}
		v, ok := flat.Get("a.b")
		if !ok || v != model.NumberValue("1") {
			t.Errorf("unexpected value for a.b: %v, %v", v, ok)
		}
	})

	t.Run("leaf count equals number of leaves", func(t *testing.T) {
		t.Parallel()

		root := NewBranch(
			Field{Key: "x", Node: NewBranch(
				Field{Key: "y", Node: NewBranch(
					Field{Key: "z", Node: str("deep")},
					Field{Key: "w", Node: str("deep2")},
				)},
				Field{Key: "v", Node: NewLeaf(model.BoolValue(true))},
			)},
			Field{Key: "list", Node: NewLeaf(model.ListValue(`[1,2]`))},
			Field{Key: "n", Node: NewLeaf(model.NullValue())},
		)

		flat, err := Flatten(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if flat.Len() != 5 {
			t.Errorf("expected 5 leaves, got %d", flat.Len())
		}

		want := []string{"x.y.z", "x.y.w", "x.v", "list", "n"}
		for i, k := range flat.Keys() {
			if k != want[i] {
				t.Errorf("key %d: got %q, want %q", i, k, want[i])
			}
		}
	})

	t.Run("every key is reachable by traversal", func(t *testing.T) {
		t.Parallel()

		root := NewBranch(
			Field{Key: "a", Node: NewBranch(
				Field{Key: "b", Node: NewBranch(Field{Key: "c", Node: str("1")})},
				Field{Key: "d", Node: str("2")},
			)},
		)

		flat, err := Flatten(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, f := range flat.Fields() {
			var node Node = root
			for _, seg := range strings.Split(f.Key, Separator) {
				b, ok := node.(*Branch)
				if !ok {
					t.Fatalf("path %q crosses a leaf", f.Key)
				}
				node, ok = b.Get(seg)
				if !ok {
					t.Fatalf("path %q not reachable at %q", f.Key, seg)
				}
			}
			leaf, ok := node.(*Leaf)
			if !ok || leaf.Value != f.Value {
				t.Errorf("path %q does not end at its value", f.Key)
			}
		}
	})

	t.Run("lists are leaves", func(t *testing.T) {
		t.Parallel()

		root := NewBranch(Field{Key: "people", Node: NewLeaf(model.ListValue(`[{"name":"a"}]`))})
		flat, err := Flatten(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if flat.Len() != 1 {
			t.Errorf("expected the list to stay a single leaf, got %d entries", flat.Len())
		}
	})

	t.Run("empty branch yields empty record", func(t *testing.T) {
		t.Parallel()

		flat, err := Flatten(NewBranch())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if flat.Len() != 0 {
			t.Errorf("expected empty record, got %d entries", flat.Len())
		}
	})

	t.Run("colliding paths keep first position and last value", func(t *testing.T) {
		t.Parallel()

		root := NewBranch(
			Field{Key: "a.b", Node: num("1")},
			Field{Key: "a", Node: NewBranch(Field{Key: "b", Node: num("2")})},
		)
		flat, err := Flatten(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if flat.Len() != 1 {
			t.Fatalf("expected 1 entry, got %d", flat.Len())
		}
		if v, _ := flat.Get("a.b"); v != model.NumberValue("2") {
			t.Errorf("expected last value 2, got %v", v)
		}
	})
}

// TestFlattenIdempotent tests that flattening a depth-1 record is a no-op.
func TestFlattenIdempotent(t *testing.T) {
	t.Parallel()

	root := NewBranch(
		Field{Key: "a", Node: NewBranch(Field{Key: "b", Node: num("1")})},
		Field{Key: "c", Node: str("x")},
	)

	first, err := Flatten(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Flatten(first.Branch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Len() != second.Len() {
		t.Fatalf("length changed: %d -> %d", first.Len(), second.Len())
	}
	for i, f := range first.Fields() {
		g := second.Fields()[i]
		if f != g {
			t.Errorf("entry %d changed: %+v -> %+v", i, f, g)
		}
	}
}

// TestFlattenStructuralErrors tests inputs the flattener rejects.
func TestFlattenStructuralErrors(t *testing.T) {
	t.Parallel()

	t.Run("leaf root", func(t *testing.T) {
		t.Parallel()

		_, err := Flatten(str("x"))
		if model.KindOf(err) != model.ErrorKindStructural {
			t.Fatalf("expected structural error, got %v", err)
		}
		if !errors.Is(err, ErrNotMapping) {
			t.Errorf("expected ErrNotMapping, got %v", err)
		}
	})

	t.Run("nil root", func(t *testing.T) {
		t.Parallel()

		if _, err := Flatten(nil); model.KindOf(err) != model.ErrorKindStructural {
			t.Errorf("expected structural error, got %v", err)
		}
	})

	t.Run("nil child", func(t *testing.T) {
		t.Parallel()

		root := NewBranch(Field{Key: "a", Node: nil})
		_, err := Flatten(root)
		if !errors.Is(err, ErrNilNode) {
			t.Errorf("expected ErrNilNode, got %v", err)
		}
	})

	t.Run("cyclic record fails instead of looping", func(t *testing.T) {
		t.Parallel()

		root := NewBranch()
		root.Set("self", root)

		_, err := Flatten(root)
		if model.KindOf(err) != model.ErrorKindStructural {
			t.Fatalf("expected structural error, got %v", err)
		}
		if !errors.Is(err, ErrTooDeep) {
			t.Errorf("expected ErrTooDeep, got %v", err)
		}
	})
}

// TestBranchSet tests insertion order and replacement.
func TestBranchSet(t *testing.T) {
	t.Parallel()

	b := NewBranch()
	b.Set("z", str("1"))
	b.Set("a", str("2"))
	b.Set("z", str("3"))

	if b.Len() != 2 {
		t.Fatalf("expected 2 fields, got %d", b.Len())
	}
	fields := b.Fields()
	if fields[0].Key != "z" || fields[1].Key != "a" {
		t.Errorf("unexpected order: %q, %q", fields[0].Key, fields[1].Key)
	}
	n, _ := b.Get("z")
	if n.(*Leaf).Value != model.StringValue("3") {
		t.Error("expected replaced value")
	}
	if _, ok := b.Get("missing"); ok {
		t.Error("expected missing key")
	}
}
