package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/tallyfetch/internal/frequency"
	"github.com/nao1215/tallyfetch/internal/model"
)

// RunRef identifies one side of a comparison.
type RunRef struct {
	ID        string
	StartedAt time.Time
}

// Comparison is the difference between the frequency tables of one format
// in two runs.
type Comparison struct {
	Format   model.Format
	Previous RunRef
	Current  RunRef

	// PreviousTotal and CurrentTotal are the summed counts of each table.
	PreviousTotal int
	CurrentTotal  int

	Changes []frequency.Change
}

// NewComparison diffs the tables of previous and current.
func NewComparison(f model.Format, previous, current RunRef, previousTable, currentTable model.FrequencyTable) *Comparison {
	return &Comparison{
		Format:        f,
		Previous:      previous,
		Current:       current,
		PreviousTotal: previousTable.Total(),
		CurrentTotal:  currentTable.Total(),
		Changes:       frequency.Diff(previousTable, currentTable),
	}
}

// Count returns the number of changes of type t.
func (c *Comparison) Count(t frequency.ChangeType) int {
	n := 0
	for _, ch := range c.Changes {
		if ch.Type == t {
			n++
		}
	}
	return n
}

// WriteComparisonText writes c in a human-readable layout.
func WriteComparisonText(w io.Writer, c *Comparison) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s comparison\n", formatTitle(c.Format))
	fmt.Fprintf(&sb, "  Previous: %s  %s  (%d values)\n", shortID(c.Previous.ID), c.Previous.StartedAt.Format("2006-01-02 15:04:05"), c.PreviousTotal)
	fmt.Fprintf(&sb, "  Current:  %s  %s  (%d values)\n\n", shortID(c.Current.ID), c.Current.StartedAt.Format("2006-01-02 15:04:05"), c.CurrentTotal)

	if len(c.Changes) == 0 {
		sb.WriteString("No changes.\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	fmt.Fprintf(&sb, "  %d added, %d removed, %d increased, %d decreased\n\n",
		c.Count(frequency.ChangeAdded), c.Count(frequency.ChangeRemoved),
		c.Count(frequency.ChangeIncreased), c.Count(frequency.ChangeDecreased))

	for _, ch := range c.Changes {
		fmt.Fprintf(&sb, "  %s %-30s %6d -> %-6d (%s)\n",
			changeSymbol(ch.Type), displayValue(ch.Value), ch.OldCount, ch.NewCount, formatDelta(ch.Delta()))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteComparisonMarkdown writes c in GitHub Flavored Markdown.
func WriteComparisonMarkdown(w io.Writer, c *Comparison) error {
	md := markdown.NewMarkdown(w)

	md.H1(formatTitle(c.Format) + " Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Run", "`" + shortID(c.Previous.ID) + "`", "`" + shortID(c.Current.ID) + "`", "-"},
			{"Date", c.Previous.StartedAt.Format("2006-01-02 15:04"), c.Current.StartedAt.Format("2006-01-02 15:04"), "-"},
			{"Values", strconv.Itoa(c.PreviousTotal), strconv.Itoa(c.CurrentTotal), formatDelta(c.CurrentTotal - c.PreviousTotal)},
		},
	})
	md.PlainText("")

	if len(c.Changes) == 0 {
		md.Note("No changes between the two runs.")
		return md.Build()
	}

	sections := []struct {
		title string
		types []frequency.ChangeType
	}{
		{"New Values", []frequency.ChangeType{frequency.ChangeAdded}},
		{"Vanished Values", []frequency.ChangeType{frequency.ChangeRemoved}},
		{"Count Changes", []frequency.ChangeType{frequency.ChangeIncreased, frequency.ChangeDecreased}},
	}
	for _, s := range sections {
		rows := make([][]string, 0)
		for _, ch := range c.Changes {
			if !slices.Contains(s.types, ch.Type) {
				continue
			}
			rows = append(rows, []string{
				"`" + escapeCell(displayValue(ch.Value)) + "`",
				strconv.Itoa(ch.OldCount),
				strconv.Itoa(ch.NewCount),
				formatDelta(ch.Delta()),
			})
		}
		if len(rows) == 0 {
			continue
		}
		md.H2(fmt.Sprintf("%s (%d)", s.title, len(rows)))
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Value", "Previous", "Current", "Change"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return md.Build()
}

func changeSymbol(t frequency.ChangeType) string {
	switch t {
	case frequency.ChangeAdded:
		return "+"
	case frequency.ChangeRemoved:
		return "-"
	default:
		return "~"
	}
}

func formatDelta(d int) string {
	if d > 0 {
		return "+" + strconv.Itoa(d)
	}
	return strconv.Itoa(d)
}

// shortID abbreviates a run identifier for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
