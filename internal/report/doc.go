// Package report renders frequency tables and run summaries.
//
// Format renders one frequency table as the plain "value: count" report
// written next to each dataset. The summary writers render a whole batch:
//   - SimpleWriter: human-readable text for terminal display
//   - MarkdownWriter: GitHub Flavored Markdown with tables and pie charts
//   - JSONWriter: structured JSON for tool integration
//
// Summary writers implement the Writer interface and can be combined with
// MultiWriter.
package report
