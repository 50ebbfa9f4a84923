package report

import (
	"os"
	"strconv"
	"strings"

	"github.com/nao1215/tallyfetch/internal/model"
)

// Format renders a frequency table as one "value: count" line per entry,
// in table order, joined by newlines with no trailing newline. Values are
// written as-is, without quoting or escaping. An empty table renders as
// the empty string.
func Format(table model.FrequencyTable) string {
	var sb strings.Builder
	for i, e := range table {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Value.String())
		sb.WriteString(": ")
		sb.WriteString(strconv.Itoa(e.Count))
	}
	return sb.String()
}

// WriteTable writes the formatted table to path, replacing any existing
// file. Failures are returned as filesystem errors.
func WriteTable(path string, table model.FrequencyTable) error {
	if err := os.WriteFile(path, []byte(Format(table)), 0600); err != nil {
		return model.NewFilesystemError("write", path, err)
	}
	return nil
}
