package query

import "errors"

// Failure taxonomy for the execution core. Callers match with errors.Is;
// anything not wrapping one of these sentinels is an engine failure whose
// original message is preserved.
var (
	// ErrNotFound covers a missing database file or import source file.
	ErrNotFound = errors.New("file not found")

	// ErrOpenFailure covers a file that exists but cannot be opened as a
	// valid database container.
	ErrOpenFailure = errors.New("cannot open database")

	// ErrForbidden is returned when a statement matched the mutation
	// denylist and was never sent to the engine.
	ErrForbidden = errors.New("statement not allowed")

	// ErrTimeout is returned when execution exceeded the configured
	// deadline and the in-flight statement was interrupted.
	ErrTimeout = errors.New("query timeout")

	// ErrUnknownTable is returned when a referenced table is absent from
	// the catalog.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnsupportedFormat is returned for import formats other than csv
	// and json.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrInvalidIdentifier is returned when a caller-supplied table name
	// contains characters outside [A-Za-z0-9_].
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrClosed is returned for any operation after Close.
	ErrClosed = errors.New("connection is closed")
)
