package frequency

import "github.com/nao1215/tallyfetch/internal/model"

// ChangeType classifies how a value's count moved between two tables.
type ChangeType string

const (
	// ChangeAdded marks a value absent from the old table.
	ChangeAdded ChangeType = "added"

	// ChangeRemoved marks a value absent from the new table.
	ChangeRemoved ChangeType = "removed"

	// ChangeIncreased marks a value whose count grew.
	ChangeIncreased ChangeType = "increased"

	// ChangeDecreased marks a value whose count shrank.
	ChangeDecreased ChangeType = "decreased"
)

// Change is the difference for one value.
type Change struct {
	Value    model.Value
	Type     ChangeType
	OldCount int
	NewCount int
}

// Delta returns NewCount - OldCount.
func (c Change) Delta() int {
	return c.NewCount - c.OldCount
}

// Diff compares two frequency tables. Values of the new table come first,
// in its order, followed by values that disappeared, in the old table's
// order. Unchanged values are omitted.
func Diff(old, current model.FrequencyTable) []Change {
	oldCounts := make(map[model.Value]int, len(old))
	for _, e := range old {
		oldCounts[e.Value] = e.Count
	}

	changes := make([]Change, 0)
	seen := make(map[model.Value]bool, len(current))
	for _, e := range current {
		seen[e.Value] = true
		prev, ok := oldCounts[e.Value]
		switch {
		case !ok:
			changes = append(changes, Change{Value: e.Value, Type: ChangeAdded, NewCount: e.Count})
		case e.Count > prev:
			changes = append(changes, Change{Value: e.Value, Type: ChangeIncreased, OldCount: prev, NewCount: e.Count})
		case e.Count < prev:
			changes = append(changes, Change{Value: e.Value, Type: ChangeDecreased, OldCount: prev, NewCount: e.Count})
		}
	}

	for _, e := range old {
		if !seen[e.Value] {
			changes = append(changes, Change{Value: e.Value, Type: ChangeRemoved, OldCount: e.Count})
		}
	}
	return changes
}
