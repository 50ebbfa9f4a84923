package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/tallyfetch/internal/model"
)

// JSONWriter outputs run summaries in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithJSONTopN sets how many values are included per format.
func WithJSONTopN(n int) JSONWriterOption {
	return func(w *JSONWriter) {
		w.topN = n
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// BatchJSON is the JSON document written for a batch.
type BatchJSON struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Failures   int          `json:"failures"`
	Formats    []FormatJSON `json:"formats"`
}

// FormatJSON describes one format's pipeline.
type FormatJSON struct {
	Format   string       `json:"format"`
	URL      string       `json:"url"`
	Artifact string       `json:"artifact"`
	Report   string       `json:"report"`
	Fetch    *OutcomeJSON `json:"fetch,omitempty"`
	Process  *OutcomeJSON `json:"process,omitempty"`
	Top      []EntryJSON  `json:"top,omitempty"`
}

// OutcomeJSON describes one operation.
type OutcomeJSON struct {
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Bytes      int64  `json:"bytes,omitempty"`
	Digest     string `json:"digest,omitempty"`
	Values     int    `json:"values,omitempty"`
	Distinct   int    `json:"distinct,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// EntryJSON is one frequency table entry.
type EntryJSON struct {
	Value string `json:"value"`
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// NewBatchJSON converts a batch to its JSON document, keeping the topN most
// frequent values per format.
func NewBatchJSON(batch *model.Batch, topN int) *BatchJSON {
	doc := &BatchJSON{
		ID:         batch.ID,
		StartedAt:  batch.StartedAt,
		FinishedAt: batch.FinishedAt,
		Failures:   batch.Failures(),
		Formats:    make([]FormatJSON, 0, len(batch.Runs)),
	}

	for _, run := range batch.Runs {
		f := FormatJSON{
			Format:   string(run.Source.Format),
			URL:      run.Source.URL,
			Artifact: run.Source.ArtifactPath(),
			Report:   run.Source.ReportPath(),
			Fetch:    newOutcomeJSON(run.Fetch),
			Process:  newOutcomeJSON(run.Process),
		}
		for _, e := range run.Table.Top(topN) {
			f.Top = append(f.Top, EntryJSON{Value: e.Value.String(), Kind: e.Value.Kind().String(), Count: e.Count})
		}
		doc.Formats = append(doc.Formats, f)
	}
	return doc
}

func newOutcomeJSON(o *model.Outcome) *OutcomeJSON {
	if o == nil {
		return nil
	}
	out := &OutcomeJSON{
		OK:         o.Succeeded(),
		Bytes:      o.Bytes,
		Digest:     o.Digest,
		Values:     o.Values,
		Distinct:   o.Distinct,
		DurationMS: o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		out.Error = o.Err.Error()
		out.ErrorKind = model.KindOf(o.Err).String()
	}
	return out
}

// Write outputs the batch summary in JSON format.
func (w *JSONWriter) Write(batch *model.Batch) (int, error) {
	return w.writeJSON(NewBatchJSON(batch, w.topN))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// trailing newline for terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
