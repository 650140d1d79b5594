package sequence

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Execution statuses.
const (
	StatusCompleted = "completed"
	StatusRejected  = "rejected" // failed before any step ran
	StatusFailed    = "failed"   // failed part-way through
)

// maxSleepSeconds bounds a single sleep step.
const maxSleepSeconds = 3600

// Sleeper pauses for d or until ctx is cancelled.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext waits for d, returning ctx.Err() if the context ends first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execution describes one finished run.
type Execution struct {
	ID        string        `json:"id"`
	Sequence  string        `json:"sequence"`
	Steps     int           `json:"steps"`
	Executed  int           `json:"executed"`
	Results   []any         `json:"results"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// ExecutionRecorder receives every finished run.
type ExecutionRecorder interface {
	RecordExecution(ctx context.Context, exec Execution)
}

// Logger defines the logging interface used by the interpreter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Interpreter parses and executes sequences against a Surface.
type Interpreter struct {
	surface   *Surface
	sleep     Sleeper
	logger    Logger
	recorders []ExecutionRecorder
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithSleeper replaces the sleep implementation.
func WithSleeper(s Sleeper) Option {
	return func(i *Interpreter) { i.sleep = s }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithRecorder adds an execution recorder. It may be given more than once.
func WithRecorder(r ExecutionRecorder) Option {
	return func(i *Interpreter) { i.recorders = append(i.recorders, r) }
}

// New creates an interpreter over the given surface.
func New(surface *Surface, opts ...Option) *Interpreter {
	i := &Interpreter{
		surface: surface,
		sleep:   SleepContext,
		logger:  noopLogger{},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Surface returns the action surface.
func (i *Interpreter) Surface() *Surface {
	return i.surface
}

// plannedStep is a step resolved against the surface.
type plannedStep struct {
	step   Step
	action Action
	delay  time.Duration
	sleep  bool
}

// Run parses text, checks every step, then executes the steps in order.
//
// Parameters:
//   - ctx: cancels a running sleep or action
//   - text: the sequence, e.g. "standby()|sleep(0.5)|press(41,3)"
//
// Returns:
//   - []any: one result per non-sleep step, in order
//   - error: ErrInvalidSyntax, ErrUnknownAction, or ErrArgumentCount before
//     anything runs; an action or context error part-way through, in which
//     case the results gathered so far are returned with it
func (i *Interpreter) Run(ctx context.Context, text string) ([]any, error) {
	exec := Execution{
		ID:        "seq-" + uuid.NewString()[:8],
		Sequence:  text,
		StartedAt: time.Now(),
		Results:   []any{},
	}

	plan, err := i.plan(text)
	if err != nil {
		exec.Status = StatusRejected
		exec.Error = err.Error()
		i.finish(ctx, exec)
		return nil, err
	}
	exec.Steps = len(plan)

	i.logger.Debug("running sequence", "id", exec.ID, "steps", len(plan))

	for _, p := range plan {
		if p.sleep {
			if err = i.sleep(ctx, p.delay); err != nil {
				break
			}
			exec.Executed++
			continue
		}

		var result any
		result, err = p.action.Run(ctx, p.step.Args)
		if err != nil {
			err = fmt.Errorf("step %s: %w", p.step, err)
			break
		}
		exec.Results = append(exec.Results, result)
		exec.Executed++
	}

	if err != nil {
		exec.Status = StatusFailed
		exec.Error = err.Error()
		i.logger.Warn("sequence failed", "id", exec.ID, "executed", exec.Executed, "error", err)
	} else {
		exec.Status = StatusCompleted
	}
	i.finish(ctx, exec)
	return exec.Results, err
}

// plan parses text and resolves every step without executing anything.
func (i *Interpreter) plan(text string) ([]plannedStep, error) {
	steps, err := Parse(text)
	if err != nil {
		return nil, err
	}

	plan := make([]plannedStep, 0, len(steps))
	for _, step := range steps {
		if step.Name == sleepAction {
			d, err := parseSleep(step.Args)
			if err != nil {
				return nil, err
			}
			plan = append(plan, plannedStep{step: step, sleep: true, delay: d})
			continue
		}

		action, ok := i.surface.Lookup(step.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAction, step.Name)
		}
		if !action.accepts(len(step.Args)) {
			return nil, fmt.Errorf("%w: %s takes %s, got %d", ErrArgumentCount, step.Name, arity(action), len(step.Args))
		}
		plan = append(plan, plannedStep{step: step, action: action})
	}
	return plan, nil
}

func (i *Interpreter) finish(ctx context.Context, exec Execution) {
	exec.Duration = time.Since(exec.StartedAt)
	for _, r := range i.recorders {
		r.RecordExecution(ctx, exec)
	}
}

// parseSleep converts sleep's single argument in seconds to a duration.
func parseSleep(args []string) (time.Duration, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: sleep takes 1 argument, got %d", ErrArgumentCount, len(args))
	}
	secs, err := strconv.ParseFloat(args[0], 64)
	if err != nil || math.IsNaN(secs) || secs < 0 || secs > maxSleepSeconds {
		return 0, fmt.Errorf("%w: sleep duration %q", ErrInvalidSyntax, args[0])
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func arity(a Action) string {
	switch {
	case a.MaxArgs == Variadic:
		return fmt.Sprintf("at least %d arguments", a.MinArgs)
	case a.MinArgs == a.MaxArgs:
		return fmt.Sprintf("%d arguments", a.MinArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", a.MinArgs, a.MaxArgs)
	}
}
