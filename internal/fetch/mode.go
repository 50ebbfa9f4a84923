package fetch

import "github.com/nao1215/tallyfetch/internal/model"

// Mode selects how a response body is transformed before it is written.
type Mode string

const (
	// ModeTextStripped decodes the body to UTF-8 and strips markup tags.
	ModeTextStripped Mode = "text-stripped"

	// ModeRawBinaryCSV writes the body verbatim.
	ModeRawBinaryCSV Mode = "raw-binary-csv"

	// ModeRawBinarySpreadsheet writes the body verbatim.
	ModeRawBinarySpreadsheet Mode = "raw-binary-spreadsheet"

	// ModeParsedJSONPretty validates the body as JSON and re-indents it
	// with four spaces, preserving key order.
	ModeParsedJSONPretty Mode = "parsed-json-pretty"
)

// ModeFor returns the mode used for a dataset format.
func ModeFor(f model.Format) (Mode, error) {
	switch f {
	case model.FormatText:
		return ModeTextStripped, nil
	case model.FormatCSV:
		return ModeRawBinaryCSV, nil
	case model.FormatSpreadsheet:
		return ModeRawBinarySpreadsheet, nil
	case model.FormatJSON:
		return ModeParsedJSONPretty, nil
	default:
		return "", ErrUnknownMode
	}
}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}
