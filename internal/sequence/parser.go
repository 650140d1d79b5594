package sequence

import (
	"fmt"
	"strings"
)

const (
	stepDelimiter = "|"
	argsOpen      = "("
	argsClose     = ")"
	argSeparator  = ","
)

// Step is one parsed step of a sequence.
type Step struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// String renders the step back into sequence syntax.
func (s Step) String() string {
	return s.Name + argsOpen + strings.Join(s.Args, argSeparator) + argsClose
}

// Parse splits sequence text into steps.
//
// Whitespace around steps and arguments is ignored. "name()" and "name"
// both mean no arguments. Nested parentheses are not supported.
//
// Returns:
//   - []Step: the steps in order
//   - error: ErrInvalidSyntax for an empty sequence, an empty step, an empty
//     name, or an unbalanced argument list
func Parse(text string) ([]Step, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty sequence", ErrInvalidSyntax)
	}

	raw := strings.Split(text, stepDelimiter)
	steps := make([]Step, 0, len(raw))
	for i, part := range raw {
		step, err := parseStep(part)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(text string) (Step, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Step{}, fmt.Errorf("%w: empty step", ErrInvalidSyntax)
	}

	name, rest, hasArgs := strings.Cut(text, argsOpen)
	name = strings.TrimSpace(name)
	if name == "" {
		return Step{}, fmt.Errorf("%w: missing action name in %q", ErrInvalidSyntax, text)
	}
	if strings.Contains(name, argsClose) {
		return Step{}, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidSyntax, argsClose, text)
	}
	if !hasArgs {
		return Step{Name: name, Args: []string{}}, nil
	}

	inner, ok := strings.CutSuffix(rest, argsClose)
	if !ok {
		return Step{}, fmt.Errorf("%w: missing %q in %q", ErrInvalidSyntax, argsClose, text)
	}
	if strings.ContainsAny(inner, argsOpen+argsClose) {
		return Step{}, fmt.Errorf("%w: nested parentheses in %q", ErrInvalidSyntax, text)
	}

	args := []string{}
	if strings.TrimSpace(inner) != "" {
		for _, arg := range strings.Split(inner, argSeparator) {
			args = append(args, strings.TrimSpace(arg))
		}
	}
	return Step{Name: name, Args: args}, nil
}
