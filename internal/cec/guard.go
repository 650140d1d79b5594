package cec

import "sync"

// Guard serializes access to a Controller across concurrent callers
// (HTTP handlers, MQTT callbacks). The controller itself assumes a single
// caller at a time.
type Guard struct {
	mu   sync.Mutex
	ctrl *Controller
}

// NewGuard wraps a controller.
func NewGuard(ctrl *Controller) *Guard {
	return &Guard{ctrl: ctrl}
}

// Controller returns the wrapped controller for lock-free reads such as Status.
func (g *Guard) Controller() *Controller {
	return g.ctrl
}

// Do runs fn while holding the lock.
func (g *Guard) Do(fn func(*Controller) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.ctrl)
}

// Exclusive runs fn while holding the guard's lock and returns its result.
func Exclusive[T any](g *Guard, fn func(*Controller) (T, error)) (T, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.ctrl)
}
