package cecclient

import "errors"

var (
	// ErrBinaryNotFound is returned when cec-client is not installed.
	ErrBinaryNotFound = errors.New("cecclient: cec-client binary not found")

	// ErrNotOpen is returned when a bus query runs before Open.
	ErrNotOpen = errors.New("cecclient: adapter not open")

	// ErrTimeout is returned when cec-client does not exit in time.
	ErrTimeout = errors.New("cecclient: command timed out")

	// ErrUnexpectedOutput is returned when a reply cannot be parsed.
	ErrUnexpectedOutput = errors.New("cecclient: unexpected output")
)
