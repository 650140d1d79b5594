package cec

import "errors"

// Domain errors for the cec package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, cec.ErrNotFound) {
//	    // device was absent at the most recent scan
//	}
var (
	// ErrAdapterNotFound is returned by Init when the transport reports no adapters.
	ErrAdapterNotFound = errors.New("cec: no adapter found")

	// ErrNotFound is returned when a logical address was absent from the most recent scan.
	ErrNotFound = errors.New("cec: device not found")

	// ErrInvalidArgument is returned when a caller supplies an unusable address,
	// button, or argument combination.
	ErrInvalidArgument = errors.New("cec: invalid argument")

	// ErrInvalidFrame is returned when a raw frame string cannot be parsed.
	ErrInvalidFrame = errors.New("cec: invalid frame")
)
