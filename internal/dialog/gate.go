package dialog

import (
	"context"
	"sync"
)

// Gate admits one call at a time. The daemon holds a single microphone, so
// a second call request while one is running must be rejected, and the
// active call must be cancellable from the control socket.
type Gate struct {
	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
}

// Begin reserves the gate and derives a per-call context from parent. It
// reports false when a call is already in flight. Pair every successful
// Begin with End.
func (g *Gate) Begin(parent context.Context) (context.Context, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return nil, false
	}
	ctx, cancel := context.WithCancel(parent)
	g.active = true
	g.cancel = cancel
	return ctx, true
}

// End releases the gate after the call returns.
func (g *Gate) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.active = false
}

// Stop cancels the active call, if any, and reports whether one was
// running. The gate stays reserved until the call unwinds and calls End.
func (g *Gate) Stop() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return false
	}
	g.cancel()
	return true
}
