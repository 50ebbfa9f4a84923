package model

import "sort"

// Entry is one row of a frequency table.
type Entry struct {
	Value Value
	Count int
}

// FrequencyTable holds value counts in first-occurrence order.
type FrequencyTable []Entry

// Total returns the sum of all counts, which equals the length of the
// sequence the table was built from.
func (t FrequencyTable) Total() int {
	total := 0
	for _, e := range t {
		total += e.Count
	}
	return total
}

// Lookup returns the count for v.
func (t FrequencyTable) Lookup(v Value) (int, bool) {
	for _, e := range t {
		if e.Value == v {
			return e.Count, true
		}
	}
	return 0, false
}

// Top returns the n most frequent entries, highest count first.
// Ties keep first-occurrence order. A non-positive n returns every entry.
func (t FrequencyTable) Top(n int) []Entry {
	sorted := make([]Entry, len(t))
	copy(sorted, t)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
