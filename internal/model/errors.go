package model

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is wrapped by reader errors when a file holds fewer rows
// than the reader requires (for CSV: nothing after the header row).
var ErrEmptyInput = errors.New("empty input")

// ErrorKind classifies a pipeline failure.
type ErrorKind int

const (
	// ErrorKindUnknown is returned by KindOf for errors that are not
	// StageErrors.
	ErrorKindUnknown ErrorKind = iota

	// ErrorKindTransport covers connection failures and HTTP error statuses.
	ErrorKindTransport

	// ErrorKindFormat covers unreadable, malformed or too short inputs.
	ErrorKindFormat

	// ErrorKindStructural covers hierarchical records the flattener cannot
	// walk: a non-mapping root, a nil node or a depth overflow.
	ErrorKindStructural

	// ErrorKindFilesystem covers directory and file I/O failures.
	ErrorKindFilesystem
)

// String returns the error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindTransport:
		return "transport"
	case ErrorKindFormat:
		return "format"
	case ErrorKindStructural:
		return "structural"
	case ErrorKindFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// StageError is the typed error returned by every pipeline stage.
type StageError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Op is the operation that failed, e.g. "get", "read", "write".
	Op string

	// Path is the URL or file path the operation worked on. May be empty.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *StageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewTransportError returns a StageError of kind ErrorKindTransport.
func NewTransportError(op, path string, err error) *StageError {
	return &StageError{Kind: ErrorKindTransport, Op: op, Path: path, Err: err}
}

// NewFormatError returns a StageError of kind ErrorKindFormat.
func NewFormatError(op, path string, err error) *StageError {
	return &StageError{Kind: ErrorKindFormat, Op: op, Path: path, Err: err}
}

// NewStructuralError returns a StageError of kind ErrorKindStructural.
func NewStructuralError(op, path string, err error) *StageError {
	return &StageError{Kind: ErrorKindStructural, Op: op, Path: path, Err: err}
}

// NewFilesystemError returns a StageError of kind ErrorKindFilesystem.
func NewFilesystemError(op, path string, err error) *StageError {
	return &StageError{Kind: ErrorKindFilesystem, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of the first StageError in err's chain,
// or ErrorKindUnknown.
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrorKindUnknown
}
