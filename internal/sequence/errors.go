package sequence

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

// Domain errors for the sequence package.
var (
	// ErrInvalidSyntax is returned for malformed sequence text. It matches
	// cec.ErrInvalidArgument via errors.Is.
	ErrInvalidSyntax = fmt.Errorf("sequence: invalid syntax: %w", cec.ErrInvalidArgument)

	// ErrUnknownAction is returned when a step names an action that is not
	// registered on the surface.
	ErrUnknownAction = errors.New("sequence: unknown action")

	// ErrArgumentCount is returned when a step has too few or too many
	// arguments. It matches cec.ErrInvalidArgument via errors.Is.
	ErrArgumentCount = fmt.Errorf("sequence: wrong number of arguments: %w", cec.ErrInvalidArgument)

	// ErrDuplicateAction is returned when registering a name twice.
	ErrDuplicateAction = errors.New("sequence: action already registered")
)
