package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/observability"
)

var (
	// ErrNotFound is returned by Load when no composition has the id.
	ErrNotFound = errors.New("composition not found")

	// ErrTransport is returned when the backend could not be reached or
	// failed to answer. Transport failures are retryable.
	ErrTransport = errors.New("storage transport failure")
)

// Store persists compressed compositions by id.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores payload under id and returns the id used. An empty id
	// stores the payload under a newly generated id.
	Save(ctx context.Context, id string, payload []byte) (string, error)

	// Load returns the payload stored under id, or an error wrapping
	// [ErrNotFound].
	Load(ctx context.Context, id string) ([]byte, error)

	// Close releases connections held by the store.
	Close() error
}

// NewID returns a fresh composition id.
func NewID() string { return uuid.NewString() }

// resolveID returns id, or a new id when id is empty, after validating it.
func resolveID(id string) (string, error) {
	if id == "" {
		return NewID(), nil
	}
	if err := errs.ValidateCompositionID(id); err != nil {
		return "", err
	}
	return id, nil
}

func notFound(backend, id string) error {
	return errs.Wrap(errs.ErrCodeCompositionNotFound, ErrNotFound, "%s: composition %s", backend, id)
}

func transport(backend string, err error) error {
	return errs.Wrap(errs.ErrCodeTransport, fmt.Errorf("%w: %w", ErrTransport, err), "%s", backend)
}

// Retryable reports whether err is a transport failure worth retrying.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransport)
}

// Retry executes fn up to attempts times, doubling delay after each failure.
// Only [Retryable] errors are retried; other errors are returned immediately.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !Retryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// =============================================================================
// Instrumentation
// =============================================================================

type instrumented struct {
	Store
	backend string
}

// Instrument wraps s so that every Save and Load reports to the storage hooks
// installed in the observability package under the given backend name.
func Instrument(backend string, s Store) Store {
	return &instrumented{Store: s, backend: backend}
}

func (s *instrumented) Save(ctx context.Context, id string, payload []byte) (string, error) {
	start := time.Now()
	out, err := s.Store.Save(ctx, id, payload)
	observability.Storage().OnSave(ctx, s.backend, len(payload), time.Since(start), err)
	return out, err
}

func (s *instrumented) Load(ctx context.Context, id string) ([]byte, error) {
	start := time.Now()
	out, err := s.Store.Load(ctx, id)
	observability.Storage().OnLoad(ctx, s.backend, len(out), time.Since(start), err)
	return out, err
}
