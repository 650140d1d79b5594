package audit

import (
	"context"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
	"github.com/nerrad567/gray-logic-cec/internal/sequence"
)

// Sources identify which surface triggered a bus action.
const (
	SourceAPI    = "api"
	SourceMQTT   = "mqtt"
	SourceSystem = "system"
)

type sourceKey struct{}

// WithSource tags ctx with the surface handling the request.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// SourceFrom returns the source tag on ctx, or SourceSystem.
func SourceFrom(ctx context.Context) string {
	if s, ok := ctx.Value(sourceKey{}).(string); ok && s != "" {
		return s
	}
	return SourceSystem
}

// Logger defines the logging interface used by the recorder.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Recorder writes transmitted frames and sequence runs to a Repository.
// It implements cec.CommandRecorder and sequence.ExecutionRecorder.
// Write failures are logged and never reach the caller.
type Recorder struct {
	repo   Repository
	logger Logger
}

var (
	_ cec.CommandRecorder        = (*Recorder)(nil)
	_ sequence.ExecutionRecorder = (*Recorder)(nil)
)

// NewRecorder creates a recorder over repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, logger: noopLogger{}}
}

// SetLogger sets the logger for write failures.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// RecordCommand stores one transmitted frame.
func (r *Recorder) RecordCommand(ctx context.Context, frame cec.Frame, ok bool) {
	entry := &Entry{
		Action:  ActionCommand,
		Target:  frame.String(),
		Source:  SourceFrom(ctx),
		Success: ok,
	}
	if parts, err := cec.ParseFrame(frame); err == nil && parts.HasOpcode {
		entry.Details = map[string]any{
			"source":      parts.Source.String(),
			"destination": parts.Destination.String(),
			"opcode":      int(parts.Opcode),
		}
	}
	r.create(ctx, entry)
}

// RecordExecution stores one sequence run.
func (r *Recorder) RecordExecution(ctx context.Context, exec sequence.Execution) {
	details := map[string]any{
		"execution_id": exec.ID,
		"status":       exec.Status,
		"steps":        exec.Steps,
		"executed":     exec.Executed,
		"duration_ms":  exec.Duration.Milliseconds(),
	}
	if exec.Error != "" {
		details["error"] = exec.Error
	}
	r.create(ctx, &Entry{
		Action:  ActionSequence,
		Target:  exec.Sequence,
		Source:  SourceFrom(ctx),
		Success: exec.Status == sequence.StatusCompleted,
		Details: details,
	})
}

func (r *Recorder) create(ctx context.Context, entry *Entry) {
	// The audit write outlives a cancelled request.
	if err := r.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Warn("audit write failed", "action", entry.Action, "target", entry.Target, "error", err)
	}
}
