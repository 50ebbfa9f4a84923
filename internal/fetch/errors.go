package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrBodyTooLarge is returned when a response body exceeds the
	// configured maximum size.
	ErrBodyTooLarge = errors.New("response body exceeds maximum size")

	// ErrInvalidJSON is returned when a JSON source does not hold exactly
	// one valid JSON document.
	ErrInvalidJSON = errors.New("invalid JSON document")

	// ErrTooManyRedirects is returned when a request exceeds the redirect limit.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrUnknownMode is returned for a Mode the fetcher does not handle.
	ErrUnknownMode = errors.New("unknown fetch mode")
)

// StatusError reports an HTTP response with a status outside 2xx.
type StatusError struct {
	Code int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
}
