package reader

import (
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/tallyfetch/internal/model"
)

// ErrInvalidUTF8 is returned when a text file is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("file is not valid UTF-8")

// TextReader reads a whole file as UTF-8 and returns one string value per
// character. Line endings are read as "\n": "\r\n" and a lone "\r" are
// both translated.
type TextReader struct{}

// NewTextReader returns a TextReader.
func NewTextReader() *TextReader {
	return &TextReader{}
}

// Read implements Reader.
func (r *TextReader) Read(path string) ([]model.Value, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the source configuration
	if err != nil {
		return nil, openError(path, err)
	}
	if !utf8.Valid(data) {
		return nil, model.NewFormatError("read", path, ErrInvalidUTF8)
	}

	text := normalizeNewlines(string(data))

	values := make([]model.Value, 0, utf8.RuneCountInString(text))
	for _, c := range text {
		values = append(values, model.StringValue(string(c)))
	}
	return values, nil
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
