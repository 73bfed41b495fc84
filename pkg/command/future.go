package command

import (
	"context"
	"sync"
)

// State is the lifecycle stage of a [Future].
type State int

const (
	StateIdle State = iota
	StateDispatching
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Future is the pending result of a dispatched command.
type Future struct {
	name  string
	done  chan struct{}
	mu    sync.Mutex
	state State
	value any
	err   error
}

func newFuture(name string) *Future {
	return &Future{name: name, done: make(chan struct{})}
}

// Name returns the dispatched command name.
func (f *Future) Name() string { return f.name }

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// State returns the current lifecycle stage.
func (f *Future) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Wait blocks until the future settles or ctx is done. A cancelled wait
// does not cancel the handler.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
	default:
		select {
		case <-f.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Err returns the failure of a settled future, or nil while it is pending
// or after it completed.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Future) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *Future) settle(value any, err error) {
	f.mu.Lock()
	f.value, f.err = value, err
	if err != nil {
		f.state = StateFailed
	} else {
		f.state = StateCompleted
	}
	f.mu.Unlock()
	close(f.done)
}
