// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about command dispatch, history changes and storage calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Libraries never import a metrics backend; the storage server installs the
// Prometheus implementation from internal/metrics when it starts.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCommandHooks(metrics.NewCommandHooks(reg))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Command().OnCommandStart(ctx, name)
//	// ... run handler ...
//	observability.Command().OnCommandComplete(ctx, name, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Command Hooks
// =============================================================================

// CommandHooks receives events from the command manager.
type CommandHooks interface {
	// OnCommandStart records a dispatched command whose handler was resolved.
	OnCommandStart(ctx context.Context, name string)

	// OnCommandComplete records a settled command. err is nil on success.
	OnCommandComplete(ctx context.Context, name string, duration time.Duration, err error)

	// OnUnknownCommand records a dispatch for a name with no registered factory.
	OnUnknownCommand(ctx context.Context, name string)
}

// =============================================================================
// History Hooks
// =============================================================================

// HistoryHooks receives events from the operation ledger.
type HistoryHooks interface {
	// OnRecord records an operation entering the ledger. size is the new length.
	OnRecord(ctx context.Context, size int)

	// OnUndo and OnRedo record cursor moves.
	OnUndo(ctx context.Context, err error)
	OnRedo(ctx context.Context, err error)

	// OnEvict records operations disposed because of the MaxOperations bound
	// or because a new operation discarded the redo tail.
	OnEvict(ctx context.Context, count int)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from composition stores.
type StorageHooks interface {
	// OnSave records a save attempt against backend.
	OnSave(ctx context.Context, backend string, size int, duration time.Duration, err error)

	// OnLoad records a load attempt against backend.
	OnLoad(ctx context.Context, backend string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCommandHooks is a no-op implementation of CommandHooks.
type NoopCommandHooks struct{}

func (NoopCommandHooks) OnCommandStart(context.Context, string)                          {}
func (NoopCommandHooks) OnCommandComplete(context.Context, string, time.Duration, error) {}
func (NoopCommandHooks) OnUnknownCommand(context.Context, string)                        {}

// NoopHistoryHooks is a no-op implementation of HistoryHooks.
type NoopHistoryHooks struct{}

func (NoopHistoryHooks) OnRecord(context.Context, int) {}
func (NoopHistoryHooks) OnUndo(context.Context, error) {}
func (NoopHistoryHooks) OnRedo(context.Context, error) {}
func (NoopHistoryHooks) OnEvict(context.Context, int)  {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnSave(context.Context, string, int, time.Duration, error) {}
func (NoopStorageHooks) OnLoad(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	commandHooks CommandHooks = NoopCommandHooks{}
	historyHooks HistoryHooks = NoopHistoryHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	hooksMu      sync.RWMutex
)

// SetCommandHooks registers custom command hooks.
// This should be called once at application startup before any commands run.
func SetCommandHooks(h CommandHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		commandHooks = h
	}
}

// SetHistoryHooks registers custom history hooks.
func SetHistoryHooks(h HistoryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		historyHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// Command returns the registered command hooks.
func Command() CommandHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return commandHooks
}

// History returns the registered history hooks.
func History() HistoryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return historyHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	commandHooks = NoopCommandHooks{}
	historyHooks = NoopHistoryHooks{}
	storageHooks = NoopStorageHooks{}
}
