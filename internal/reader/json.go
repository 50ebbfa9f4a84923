package reader

import (
	"os"

	"github.com/nao1215/tallyfetch/internal/model"
	"github.com/nao1215/tallyfetch/internal/record"
)

// JSONReader parses a JSON document, flattens it and returns the leaf
// values in flatten order. Keys are not counted.
type JSONReader struct{}

// NewJSONReader returns a JSONReader.
func NewJSONReader() *JSONReader {
	return &JSONReader{}
}

// Read implements Reader.
func (r *JSONReader) Read(path string) ([]model.Value, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the source configuration
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	root, err := record.Decode(f)
	if err != nil {
		if model.KindOf(err) == model.ErrorKindStructural {
			return nil, err
		}
		return nil, model.NewFormatError("parse", path, err)
	}

	flat, err := record.Flatten(root)
	if err != nil {
		return nil, err
	}
	return flat.Values(), nil
}
