package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors.
// These errors are returned by Config.Validate(), possibly wrapped with
// details, and can be matched with errors.Is().
var (
	// ErrNoSources is returned when no dataset source is configured.
	ErrNoSources = errors.New("no sources configured")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidHTMLStrip is returned for an unknown markup strip strategy.
	ErrInvalidHTMLStrip = errors.New("invalid html strip strategy: must be regex or tokenizer")

	// ErrDuplicateFormat is returned when two sources share a format.
	ErrDuplicateFormat = errors.New("duplicate source format")

	// ErrInvalidSource is returned when a source has an unknown format or
	// a missing or unusable location.
	ErrInvalidSource = errors.New("invalid source")

	// ErrInvalidProxyAddress is returned when the proxy address is not
	// in "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidTopN is returned when the number of summary values is negative.
	ErrInvalidTopN = errors.New("invalid top values count: must be non-negative")

	// ErrInvalidSummaryFormat is returned for an unknown summary format.
	ErrInvalidSummaryFormat = errors.New("invalid summary format: must be text, markdown or json")

	// ErrInvalidEnv is returned when an environment override cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)

// wrapf wraps a sentinel error with a formatted detail.
func wrapf(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}
