package sequence

import (
	"context"
	"fmt"
	"sort"
)

// Variadic marks an Action that accepts any number of arguments above MinArgs.
const Variadic = -1

// sleepAction is handled by the interpreter and cannot be registered.
const sleepAction = "sleep"

// Action is a named operation callable from a sequence.
type Action struct {
	MinArgs int
	MaxArgs int // Variadic for no upper bound
	Run     func(ctx context.Context, args []string) (any, error)
}

func (a Action) accepts(n int) bool {
	if n < a.MinArgs {
		return false
	}
	return a.MaxArgs == Variadic || n <= a.MaxArgs
}

// Surface is the whitelist of actions a sequence may call.
type Surface struct {
	actions map[string]Action
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{actions: make(map[string]Action)}
}

// Register adds an action under name.
func (s *Surface) Register(name string, action Action) error {
	if name == "" {
		return fmt.Errorf("%w: empty action name", ErrInvalidSyntax)
	}
	if name == sleepAction {
		return fmt.Errorf("%w: %q is built in", ErrDuplicateAction, name)
	}
	if action.Run == nil {
		return fmt.Errorf("registering %q: nil Run", name)
	}
	if _, exists := s.actions[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAction, name)
	}
	s.actions[name] = action
	return nil
}

// Lookup returns the action registered under name.
func (s *Surface) Lookup(name string) (Action, bool) {
	a, ok := s.actions[name]
	return a, ok
}

// Names lists the registered actions, plus sleep, in sorted order.
func (s *Surface) Names() []string {
	names := make([]string, 0, len(s.actions)+1)
	for name := range s.actions {
		names = append(names, name)
	}
	names = append(names, sleepAction)
	sort.Strings(names)
	return names
}
