// Package frequency counts occurrences of atomic values.
package frequency

import "github.com/nao1215/tallyfetch/internal/model"

// Count returns the frequency table of values in a single pass. Entries
// appear in the order their value first occurs in values; equal values
// accumulate into one entry. An empty input yields an empty table.
func Count(values []model.Value) model.FrequencyTable {
	table := make(model.FrequencyTable, 0)
	index := make(map[model.Value]int)

	for _, v := range values {
		if i, ok := index[v]; ok {
			table[i].Count++
			continue
		}
		index[v] = len(table)
		table = append(table, model.Entry{Value: v, Count: 1})
	}
	return table
}
