package sequence

import (
	"context"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-cec/internal/cec"
)

// ─── Mock Dependencies ──────────────────────────────────────────────

// mockController records every call made through the surface.
type mockController struct {
	mu      sync.Mutex
	calls   []string
	pressOK bool
	err     error
}

func newMockController() *mockController {
	return &mockController{pressOK: true}
}

func (m *mockController) log(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockController) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func fmtAddr(a *cec.LogicalAddress) string {
	if a == nil {
		return "-"
	}
	return a.String()
}

func (m *mockController) ButtonPress(_ context.Context, button string, dst cec.LogicalAddress, release bool, src *cec.LogicalAddress) (bool, error) {
	m.log("press:" + button + ":" + dst.String() + ":" + fmtAddr(src))
	if m.err != nil {
		return false, m.err
	}
	return m.pressOK, nil
}

func (m *mockController) Standby(_ context.Context, src, dst *cec.LogicalAddress) (bool, error) {
	m.log("standby:" + fmtAddr(src) + ":" + fmtAddr(dst))
	return true, nil
}

func (m *mockController) ActiveSource(_ context.Context, la *cec.LogicalAddress, pa *cec.PhysicalAddress) (bool, error) {
	p := "-"
	if pa != nil {
		p = pa.Hex()
	}
	m.log("activate:" + fmtAddr(la) + ":" + p)
	if la == nil && pa == nil {
		return false, cec.ErrInvalidArgument
	}
	return true, nil
}

func (m *mockController) RawCommand(_ context.Context, frame cec.Frame) bool {
	m.log("raw:" + string(frame))
	return true
}

// fakeSleeper records requested durations without waiting.
type fakeSleeper struct {
	mu     sync.Mutex
	slept  []time.Duration
	onCall func()
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.slept = append(f.slept, d)
	hook := f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return ctx.Err()
}

// mockRecorder captures executions.
type mockRecorder struct {
	mu    sync.Mutex
	execs []Execution
}

func (r *mockRecorder) RecordExecution(_ context.Context, exec Execution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.execs = append(r.execs, exec)
}
