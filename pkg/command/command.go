package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/observability"
	"github.com/matzehuels/blokdust/pkg/resource"
)

var (
	// ErrUnknownCommand is returned when no factory is registered under the
	// dispatched name.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrHandlerPanic is returned when a handler panics during Execute.
	ErrHandlerPanic = errors.New("command handler panicked")
)

// Handler executes one invocation of a command.
type Handler interface {
	Execute(ctx context.Context, payload any) (any, error)
}

// HandlerFunc adapts a function to [Handler].
type HandlerFunc func(ctx context.Context, payload any) (any, error)

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, payload any) (any, error) {
	return f(ctx, payload)
}

// Factory builds a fresh handler for every dispatch.
type Factory interface {
	New() Handler
}

// FactoryFunc adapts a function to [Factory].
type FactoryFunc func() Handler

// New calls f.
func (f FactoryFunc) New() Handler { return f() }

// Manager resolves command names and runs their handlers.
type Manager struct {
	registry *resource.Registry
	logger   *log.Logger
	inflight sync.WaitGroup
}

// NewManager creates a manager that resolves factories through reg.
// If reg is nil a private registry is created. If logger is nil,
// log.Default() is used.
func NewManager(reg *resource.Registry, logger *log.Logger) *Manager {
	if reg == nil {
		reg = resource.NewRegistry()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{registry: reg, logger: logger}
}

// Registry returns the registry the manager resolves names through.
func (m *Manager) Registry() *resource.Registry { return m.registry }

// Register makes f available under name.
func (m *Manager) Register(name string, f Factory) error {
	if f == nil {
		return errs.New(errs.ErrCodeInvalidInput, "nil factory for command %q", name)
	}
	if err := m.registry.AddResource(name, f); err != nil {
		return fmt.Errorf("register command: %w", err)
	}
	return nil
}

// ExecuteCommand dispatches name with payload and returns the pending result.
func (m *Manager) ExecuteCommand(ctx context.Context, name string, payload any) *Future {
	fut := newFuture(name)

	factory, err := m.resolve(name)
	if err != nil {
		m.logger.Debug("command rejected", "command", name, "error", err)
		observability.Command().OnUnknownCommand(ctx, name)
		fut.settle(nil, err)
		return fut
	}

	h := factory.New()
	if h == nil {
		fut.settle(nil, errs.New(errs.ErrCodeInternal, "factory for %q returned nil handler", name))
		return fut
	}

	fut.setState(StateDispatching)
	observability.Command().OnCommandStart(ctx, name)
	m.logger.Debug("dispatching command", "command", name)

	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		start := time.Now()
		out, err := m.invoke(ctx, h, payload)
		duration := time.Since(start)
		observability.Command().OnCommandComplete(ctx, name, duration, err)
		if err != nil {
			m.logger.Debug("command failed", "command", name, "duration", duration, "error", err)
		} else {
			m.logger.Debug("command completed", "command", name, "duration", duration)
		}
		fut.settle(out, err)
	}()
	return fut
}

// Run dispatches name and waits for its result.
func (m *Manager) Run(ctx context.Context, name string, payload any) (any, error) {
	return m.ExecuteCommand(ctx, name, payload).Wait(ctx)
}

// Wait blocks until every dispatched handler has returned.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

func (m *Manager) resolve(name string) (Factory, error) {
	res, err := m.registry.GetResource(name)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeUnknownCommand, ErrUnknownCommand, "command %q", name)
	}
	factory, ok := res.(Factory)
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeUnknownCommand, ErrUnknownCommand, "resource %q is not a command", name)
	}
	return factory, nil
}

func (m *Manager) invoke(ctx context.Context, h Handler, payload any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errs.Wrap(errs.ErrCodeInternal, ErrHandlerPanic, "%v", r)
		}
	}()
	return h.Execute(ctx, payload)
}
