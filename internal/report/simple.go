package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/tallyfetch/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
type SimpleWriter struct {
	baseWriter

	// verbose adds durations, digests and error details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithSimpleTopN sets how many values are listed per format.
func WithSimpleTopN(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.topN = n
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the batch summary in human-readable format.
func (w *SimpleWriter) Write(batch *model.Batch) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, batch)
	for _, run := range batch.Runs {
		w.writeRun(&sb, run)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, batch *model.Batch) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        TALLYFETCH SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run ID:     %s\n", batch.ID))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", batch.StartedAt.Format("2006-01-02 15:04:05 MST")))
	if w.verbose {
		sb.WriteString(fmt.Sprintf("Elapsed:    %s\n", batch.Elapsed()))
	}
	sb.WriteString(fmt.Sprintf("Failures:   %d\n", batch.Failures()))
	sb.WriteString("\n")
}

// writeRun writes the section of one format.
func (w *SimpleWriter) writeRun(sb *strings.Builder, run *model.Run) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.ToUpper(formatTitle(run.Source.Format)))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Source:   %s\n", run.Source.URL))
	sb.WriteString(fmt.Sprintf("  Fetch:    %s\n", statusText(run.Fetch)))
	sb.WriteString(fmt.Sprintf("  Process:  %s\n", statusText(run.Process)))

	if w.verbose {
		for _, o := range run.Outcomes() {
			if o.Err != nil {
				sb.WriteString(fmt.Sprintf("  %s error: %v\n", o.Operation, o.Err))
			}
		}
		if run.Fetch != nil && run.Fetch.Succeeded() {
			sb.WriteString(fmt.Sprintf("  Bytes:    %d\n", run.Fetch.Bytes))
			sb.WriteString(fmt.Sprintf("  BLAKE2b:  %s\n", run.Fetch.Digest))
		}
	}

	if run.Process != nil && run.Process.Succeeded() {
		sb.WriteString(fmt.Sprintf("  Values:   %d (%d distinct)\n", run.Process.Values, run.Process.Distinct))
		sb.WriteString(fmt.Sprintf("  Report:   %s\n", run.Process.Path))

		top := run.Table.Top(w.topN)
		if len(top) > 0 {
			sb.WriteString("\n  Most frequent values:\n")
			for _, e := range top {
				sb.WriteString(fmt.Sprintf("    %-30s %d\n", displayValue(e.Value), e.Count))
			}
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the summary footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Summary generated by tallyfetch\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
