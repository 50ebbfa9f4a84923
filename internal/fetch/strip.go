package fetch

import (
	"errors"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// StripStrategy selects how markup is removed from text sources.
type StripStrategy string

const (
	// StripRegex removes every match of <[^<]+?> and keeps everything else,
	// including entities and script bodies. Malformed markup may leave
	// fragments behind.
	StripRegex StripStrategy = "regex"

	// StripTokenizer keeps only the text tokens of an HTML tokenizer.
	// Entities are decoded.
	StripTokenizer StripStrategy = "tokenizer"
)

// ErrUnknownStripStrategy is returned for an unsupported StripStrategy.
var ErrUnknownStripStrategy = errors.New("unknown html strip strategy")

var tagPattern = regexp.MustCompile(`<[^<]+?>`)

// ParseStripStrategy converts a name into a StripStrategy.
func ParseStripStrategy(s string) (StripStrategy, error) {
	switch StripStrategy(s) {
	case StripRegex, StripTokenizer:
		return StripStrategy(s), nil
	default:
		return "", ErrUnknownStripStrategy
	}
}

// Strip removes markup from s using the strategy.
func (s StripStrategy) Strip(text string) (string, error) {
	switch s {
	case StripRegex, "":
		return tagPattern.ReplaceAllString(text, ""), nil
	case StripTokenizer:
		return stripTokens(text)
	default:
		return "", ErrUnknownStripStrategy
	}
}

func stripTokens(text string) (string, error) {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return sb.String(), nil
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}
