package bridge

import "errors"

var (
	// ErrInvalidCommand is returned for unknown command names.
	ErrInvalidCommand = errors.New("bridge: invalid command")

	// ErrInvalidParameters is returned for missing or malformed parameters.
	ErrInvalidParameters = errors.New("bridge: invalid parameters")

	// ErrNotAcknowledged is returned when the bus did not acknowledge a frame.
	ErrNotAcknowledged = errors.New("bridge: not acknowledged by the bus")
)
