package model

import (
	"fmt"
	"strings"
)

// Format identifies one of the four dataset formats.
type Format string

const (
	// FormatText is an HTML page persisted as stripped plain text.
	FormatText Format = "text"

	// FormatCSV is a delimited table with a header row.
	FormatCSV Format = "csv"

	// FormatSpreadsheet is an Excel workbook.
	FormatSpreadsheet Format = "spreadsheet"

	// FormatJSON is a hierarchical JSON document.
	FormatJSON Format = "json"
)

// Formats returns all formats in pipeline order.
func Formats() []Format {
	return []Format{FormatText, FormatCSV, FormatSpreadsheet, FormatJSON}
}

// ParseFormat parses a format name. Common aliases such as "txt", "xls"
// and "excel" are accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "spreadsheet", "excel", "xls", "xlsx":
		return FormatSpreadsheet, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text, csv, spreadsheet or json)", s)
	}
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	switch f {
	case FormatText, FormatCSV, FormatSpreadsheet, FormatJSON:
		return true
	default:
		return false
	}
}

// Noun returns the word used for the format in status messages,
// e.g. "text" in "Error processing text file".
func (f Format) Noun() string {
	switch f {
	case FormatText:
		return "text"
	case FormatCSV:
		return "CSV"
	case FormatSpreadsheet:
		return "Excel"
	case FormatJSON:
		return "JSON"
	default:
		return string(f)
	}
}
