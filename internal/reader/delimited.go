package reader

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/nao1215/tallyfetch/internal/model"
)

// DelimitedReader reads a delimited table. The first row is discarded
// without validation; every remaining cell is returned row-major, left to
// right. Rows may have different lengths.
//
// A file with no row after the header fails with a format error wrapping
// model.ErrEmptyInput rather than producing an empty table.
type DelimitedReader struct {
	// Comma is the field delimiter.
	Comma rune
}

// NewDelimitedReader returns a comma separated reader.
func NewDelimitedReader() *DelimitedReader {
	return &DelimitedReader{Comma: ','}
}

// Read implements Reader.
func (r *DelimitedReader) Read(path string) ([]model.Value, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the source configuration
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = r.Comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, model.NewFormatError("parse", path, err)
	}

	switch len(rows) {
	case 0:
		return nil, model.NewFormatError("read", path, fmt.Errorf("%w: no rows", model.ErrEmptyInput))
	case 1:
		return nil, model.NewFormatError("read", path, fmt.Errorf("%w: header row only", model.ErrEmptyInput))
	}

	values := make([]model.Value, 0)
	for _, row := range rows[1:] {
		for _, cell := range row {
			values = append(values, model.StringValue(cell))
		}
	}
	return values, nil
}
