package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/tallyfetch/internal/model"
)

// MarkdownWriter outputs run summaries in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownTopN sets how many values are listed and charted per format.
func WithMarkdownTopN(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.topN = n
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the batch summary in Markdown format.
func (w *MarkdownWriter) Write(batch *model.Batch) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, batch)
	w.writeOverview(md, batch)
	for _, run := range batch.Runs {
		w.writeRun(md, run)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, batch *model.Batch) {
	md.H1("tallyfetch Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + batch.ID + "`"},
			{"Started", batch.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", batch.Elapsed().String()},
			{"Failed operations", strconv.Itoa(batch.Failures())},
		},
	})
	md.PlainText("")

	if failures := batch.Failures(); failures > 0 {
		md.Warningf("%d operation(s) failed. Their formats have no new report.", failures)
	} else {
		md.Tip("All datasets were fetched and processed.")
	}
	md.PlainText("")
}

// writeOverview writes one row per format.
func (w *MarkdownWriter) writeOverview(md *markdown.Markdown, batch *model.Batch) {
	md.H2("Overview")
	md.PlainText("")

	rows := make([][]string, 0, len(batch.Runs))
	for _, run := range batch.Runs {
		values, distinct := "-", "-"
		if run.Process != nil && run.Process.Succeeded() {
			values = strconv.Itoa(run.Process.Values)
			distinct = strconv.Itoa(run.Process.Distinct)
		}
		rows = append(rows, []string{
			formatTitle(run.Source.Format),
			statusText(run.Fetch),
			statusText(run.Process),
			values,
			distinct,
			"`" + run.Source.ReportPath() + "`",
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Format", "Fetch", "Process", "Values", "Distinct", "Report"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRun writes the detail section of one format.
func (w *MarkdownWriter) writeRun(md *markdown.Markdown, run *model.Run) {
	md.H2(formatTitle(run.Source.Format))
	md.PlainText("")
	md.PlainTextf("Source: <%s>", run.Source.URL)
	md.PlainText("")

	for _, o := range run.Outcomes() {
		if o.Err != nil {
			md.Cautionf("%s failed: %s", o.Operation, escapeCell(o.Err.Error()))
			md.PlainText("")
		}
	}

	if run.Process == nil || !run.Process.Succeeded() || len(run.Table) == 0 {
		md.PlainText("No values counted.")
		md.PlainText("")
		return
	}

	top := run.Table.Top(w.topN)
	rows := make([][]string, len(top))
	for i, e := range top {
		rows[i] = []string{"`" + escapeCell(displayValue(e.Value)) + "`", e.Value.Kind().String(), strconv.Itoa(e.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Value", "Kind", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, run.Source.Format, top)
}

// writePieChart writes a mermaid pie chart of the most frequent values.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, f model.Format, top []model.Entry) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Most frequent "+f.Noun()+" values"),
		piechart.WithShowData(true),
	)
	for _, e := range top {
		chart.LabelAndIntValue(chartLabel(e.Value), uint64(e.Count))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Summary generated by tallyfetch*")
}

// escapeCell keeps a value inside a single table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "`", "'")
	return strings.ReplaceAll(s, "\n", " ")
}

// chartLabel makes a value safe for a mermaid label.
func chartLabel(v model.Value) string {
	label := strings.ReplaceAll(displayValue(v), `"`, "'")
	return truncateString(label, 40)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
