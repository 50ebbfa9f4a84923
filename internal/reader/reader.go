package reader

import (
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/tallyfetch/internal/model"
)

// Reader extracts the atomic values of a dataset file.
type Reader interface {
	// Read returns the values of the file at path in reading order.
	Read(path string) ([]model.Value, error)
}

// ForFormat returns the reader for f.
func ForFormat(f model.Format) (Reader, error) {
	switch f {
	case model.FormatText:
		return NewTextReader(), nil
	case model.FormatCSV:
		return NewDelimitedReader(), nil
	case model.FormatSpreadsheet:
		return NewSpreadsheetReader(), nil
	case model.FormatJSON:
		return NewJSONReader(), nil
	default:
		return nil, fmt.Errorf("no reader for format %q", f)
	}
}

// openError converts a file open failure into a format error.
func openError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return model.NewFormatError("open", path, fmt.Errorf("file does not exist: %w", err))
	}
	return model.NewFormatError("open", path, err)
}
