package config

import (
	"path/filepath"
	"strings"
)

// SummaryFormat is the output format of the run summary.
type SummaryFormat string

const (
	// SummaryText is the human-readable text summary.
	SummaryText SummaryFormat = "text"

	// SummaryMarkdown is the GitHub Flavored Markdown summary.
	SummaryMarkdown SummaryFormat = "markdown"

	// SummaryJSON is the JSON summary.
	SummaryJSON SummaryFormat = "json"
)

// ParseSummaryFormat converts a name into a SummaryFormat.
// "md" is accepted for markdown and "txt" for text.
func ParseSummaryFormat(s string) (SummaryFormat, error) {
	switch strings.ToLower(s) {
	case "text", "txt":
		return SummaryText, nil
	case "markdown", "md":
		return SummaryMarkdown, nil
	case "json":
		return SummaryJSON, nil
	default:
		return "", wrapf(ErrInvalidSummaryFormat, "%q", s)
	}
}

// EffectiveSummaryFormat returns the configured summary format, or the one
// implied by the summary file extension (.md, .markdown, .json), or text.
func (c *Config) EffectiveSummaryFormat() SummaryFormat {
	if c.SummaryFormat != "" {
		if f, err := ParseSummaryFormat(c.SummaryFormat); err == nil {
			return f
		}
	}

	switch strings.ToLower(filepath.Ext(c.SummaryFile)) {
	case ".md", ".markdown":
		return SummaryMarkdown
	case ".json":
		return SummaryJSON
	default:
		return SummaryText
	}
}
