package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/tallyfetch/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTopN is the number of most frequent values listed per format in
// run summaries.
const DefaultTopN = 10

// Writer writes a run summary.
type Writer interface {
	// Write outputs the summary of batch.
	// Returns the number of bytes written and any error encountered.
	Write(batch *model.Batch) (int, error)
}

// MultiWriter writes to several Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(batch *model.Batch) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(batch)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for summary writers.
type baseWriter struct {
	output io.Writer
	topN   int
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output, topN: DefaultTopN}
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// formatTitle returns the display title of a format, e.g. "Text", "CSV".
func formatTitle(f model.Format) string {
	return titleCaser.String(f.Noun())
}

// statusText describes an outcome in a few words.
func statusText(o *model.Outcome) string {
	switch {
	case o == nil:
		return "not run"
	case o.Succeeded():
		return "ok"
	default:
		return "failed (" + model.KindOf(o.Err).String() + ")"
	}
}

// displayValue renders a value on a single line. Whitespace characters
// are quoted so they stay visible in summaries.
func displayValue(v model.Value) string {
	s := v.String()
	if s == "" || strings.TrimSpace(s) != s || strings.ContainsAny(s, "\n\r\t") {
		return strconv.Quote(s)
	}
	return s
}
