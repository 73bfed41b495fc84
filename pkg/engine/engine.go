package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blokdust/pkg/blocks"
	"github.com/matzehuels/blokdust/pkg/codec"
	"github.com/matzehuels/blokdust/pkg/command"
	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/history"
	"github.com/matzehuels/blokdust/pkg/pool"
	"github.com/matzehuels/blokdust/pkg/resource"
	"github.com/matzehuels/blokdust/pkg/storage"
)

// Names under which the engine registers its collaborators.
const (
	ResourceParticles = "particles"
	ResourceCodec     = "codec"
	ResourceStore     = "store"
)

// Default particle pool bounds.
const (
	DefaultParticlesMin = 10
	DefaultParticlesMax = 100
)

// ErrClosed is returned by commands dispatched after [Engine.Close].
var ErrClosed = errors.New("engine closed")

// Config sizes the engine's bounded structures.
type Config struct {
	MaxOperations  int
	ParticlesMin   int
	ParticlesMax   int
	ParticlePolicy pool.Policy
}

// DefaultConfig returns a 50-step history and a 10..100 reuse pool.
func DefaultConfig() Config {
	return Config{
		MaxOperations:  history.DefaultMaxOperations,
		ParticlesMin:   DefaultParticlesMin,
		ParticlesMax:   DefaultParticlesMax,
		ParticlePolicy: pool.PolicyReuse,
	}
}

// Option customizes an [Engine].
type Option func(*Engine)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithStore sets the composition store. The default is an in-memory store.
func WithStore(s storage.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithCodec sets the compression codec. The default is zstd at the default level.
func WithCodec(c codec.Codec) Option {
	return func(e *Engine) { e.codec = c }
}

// WithObserver sets the receiver of block lifecycle events.
func WithObserver(o blocks.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithProgress sets the compression progress callback used by SAVE and SAVEAS.
func WithProgress(p codec.Progress) Option {
	return func(e *Engine) { e.progress = p }
}

// WithRetryDelay sets the pause before a save is retried after a transport
// failure.
func WithRetryDelay(d time.Duration) Option {
	return func(e *Engine) { e.retryDelay = d }
}

// Engine owns a working composition and runs commands against it.
type Engine struct {
	logger     *log.Logger
	registry   *resource.Registry
	manager    *command.Manager
	store      storage.Store
	codec      codec.Codec
	observer   blocks.Observer
	progress   codec.Progress
	retryDelay time.Duration

	// Owned by the commit loop.
	comp       *blocks.Composition
	ledger     *history.Ledger
	particles  *pool.Pool[*blocks.Particle]
	generation int // bumped whenever comp is replaced

	queue     chan func()
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates an engine with an empty composition and registers every command.
func New(cfg Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		observer:   blocks.NoopObserver{},
		retryDelay: 500 * time.Millisecond,
		comp:       blocks.NewComposition(),
		ledger:     history.New(cfg.MaxOperations),
		queue:      make(chan func()),
		closing:    make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.store == nil {
		e.store = storage.NewMemory()
	}
	if e.codec == nil {
		z, err := codec.NewZstd("")
		if err != nil {
			return nil, err
		}
		e.codec = z
	}
	if e.observer == nil {
		e.observer = blocks.NoopObserver{}
	}

	particles, err := pool.New(pool.Config[*blocks.Particle]{
		Min:    cfg.ParticlesMin,
		Max:    cfg.ParticlesMax,
		New:    blocks.NewParticle,
		Reset:  (*blocks.Particle).Reset,
		Policy: cfg.ParticlePolicy,
	})
	if err != nil {
		return nil, err
	}
	e.particles = particles

	e.registry = resource.NewRegistry()
	e.manager = command.NewManager(e.registry, e.logger)
	for name, res := range map[string]any{
		ResourceParticles: e.particles,
		ResourceCodec:     e.codec,
		ResourceStore:     e.store,
	} {
		if err := e.registry.AddResource(name, res); err != nil {
			return nil, err
		}
	}
	if err := e.registerCommands(); err != nil {
		return nil, err
	}

	go e.loop()
	return e, nil
}

// Manager returns the command manager.
func (e *Engine) Manager() *command.Manager { return e.manager }

// Registry returns the resource registry shared by commands and collaborators.
func (e *Engine) Registry() *resource.Registry { return e.registry }

// Execute dispatches a command and returns its pending result.
func (e *Engine) Execute(ctx context.Context, name string, payload any) *command.Future {
	return e.manager.ExecuteCommand(ctx, name, payload)
}

// Run dispatches a command and waits for its result.
func (e *Engine) Run(ctx context.Context, name string, payload any) (any, error) {
	return e.manager.Run(ctx, name, payload)
}

// Snapshot returns a deep copy of the working composition.
func (e *Engine) Snapshot(ctx context.Context) (*blocks.Composition, error) {
	var snap *blocks.Composition
	err := e.commit(ctx, func() error {
		snap = e.comp.Clone()
		return nil
	})
	return snap, err
}

// Status summarizes the working composition and its history.
type Status struct {
	ID          string
	Blocks      int
	Connections int
	Undoable    int
	Redoable    int
}

// String returns a one-line summary for logs.
func (s Status) String() string {
	return fmt.Sprintf("composition %q: %d blocks, %d connections, %d undo, %d redo",
		s.ID, s.Blocks, s.Connections, s.Undoable, s.Redoable)
}

// Status returns the current [Status].
func (e *Engine) Status(ctx context.Context) (Status, error) {
	var st Status
	err := e.commit(ctx, func() error {
		st = Status{
			ID:          e.comp.ID,
			Blocks:      e.comp.Graph.Len(),
			Connections: e.comp.Graph.ConnectionCount(),
			Undoable:    e.ledger.Cursor(),
			Redoable:    e.ledger.Len() - e.ledger.Cursor(),
		}
		return nil
	})
	return st, err
}

// Close waits for in-flight commands, stops the commit loop, disposes the
// history, releases every block and closes the store.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.manager.Wait()
		close(e.closing)
		<-e.done
		e.ledger.Clear()
		e.comp.Graph.Broadcast(blocks.EventDelete, e.observer)
		err = e.store.Close()
	})
	return err
}

// =============================================================================
// Commit queue
// =============================================================================

func (e *Engine) loop() {
	defer close(e.done)
	for {
		select {
		case fn := <-e.queue:
			fn()
		case <-e.closing:
			return
		}
	}
}

// commit runs fn on the commit loop and returns its error. Once fn has been
// queued, commit waits for it even if ctx ends, so callers always learn
// whether their mutation happened.
func (e *Engine) commit(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	job := func() { errc <- fn() }
	select {
	case e.queue <- job:
		return <-errc
	case <-e.closing:
		return errs.Wrap(errs.ErrCodeInternal, ErrClosed, "commit")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refresh re-derives chains after a mutation. Called on the commit loop.
func (e *Engine) refresh() {
	e.comp.Graph.Refresh(e.observer)
}
