package cecclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// defaultWaitDelay bounds how long Run waits for output pipes after the
// process is killed.
const defaultWaitDelay = 2 * time.Second

// Runner executes one cec-client invocation and returns its combined output.
type Runner interface {
	Run(ctx context.Context, args []string, stdin string) (string, error)
}

// ExecRunner runs the cec-client binary as a subprocess.
type ExecRunner struct {
	Binary  string
	Timeout time.Duration
}

// Run starts the binary in its own process group, writes stdin, and waits
// for it to exit. The whole group is killed if ctx ends or Timeout elapses.
//
// Returns:
//   - string: stdout and stderr interleaved
//   - error: ErrBinaryNotFound, or the exit error with output attached
func (r ExecRunner) Run(ctx context.Context, args []string, stdin string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Binary, args...) //nolint:gosec // Binary comes from validated config
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative PID signals the group created via Setpgid.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = defaultWaitDelay
	cmd.Stdin = strings.NewReader(stdin)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, r.Binary)
	case ctx.Err() != nil:
		return out.String(), fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	case err != nil:
		return out.String(), fmt.Errorf("running %s: %w", r.Binary, err)
	}
	return out.String(), nil
}
