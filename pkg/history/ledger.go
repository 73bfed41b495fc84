package history

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/observability"
)

// DefaultMaxOperations is the history depth used when none is configured.
const DefaultMaxOperations = 50

var (
	// ErrNothingToUndo is returned by [Ledger.Undo] when the cursor is at the start.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by [Ledger.Redo] when the cursor is at the end.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Operation is a reversible change. Do and Undo must be exact inverses of
// each other when applied to the state the operation was recorded against.
type Operation interface {
	// Do applies the change. It is called once by [Ledger.Do] and again on
	// every redo.
	Do(ctx context.Context) error

	// Undo reverts the change.
	Undo(ctx context.Context) error

	// Dispose releases anything the operation holds. It is called exactly
	// once, when the operation leaves the ledger.
	Dispose()
}

// Ledger is a bounded undo/redo history.
type Ledger struct {
	ops    []Operation
	cursor int
	max    int
}

// New creates a ledger that keeps at most maxOperations entries.
// Negative values are treated as zero.
func New(maxOperations int) *Ledger {
	return &Ledger{max: max(maxOperations, 0)}
}

// Do applies op and records it. If op.Do fails, op is disposed and the
// error returned; nothing is recorded.
func (l *Ledger) Do(ctx context.Context, op Operation) error {
	if err := op.Do(ctx); err != nil {
		op.Dispose()
		return err
	}
	l.Record(ctx, op)
	return nil
}

// Record appends an operation that has already been applied. The redo tail
// is discarded first, then the oldest entries are evicted until the ledger
// fits its bound.
func (l *Ledger) Record(ctx context.Context, op Operation) {
	if l.max == 0 {
		op.Dispose()
		observability.History().OnEvict(ctx, 1)
		return
	}

	evicted := l.truncate()
	l.ops = append(l.ops, op)
	l.cursor = len(l.ops)
	for len(l.ops) > l.max {
		l.dropOldest()
		evicted++
	}

	if evicted > 0 {
		observability.History().OnEvict(ctx, evicted)
	}
	observability.History().OnRecord(ctx, len(l.ops))
}

// Undo reverts the operation left of the cursor.
func (l *Ledger) Undo(ctx context.Context) error {
	if l.cursor == 0 {
		err := errs.Wrap(errs.ErrCodeNothingToUndo, ErrNothingToUndo, "history has no undoable operation")
		observability.History().OnUndo(ctx, err)
		return err
	}
	if err := l.ops[l.cursor-1].Undo(ctx); err != nil {
		observability.History().OnUndo(ctx, err)
		return fmt.Errorf("undo: %w", err)
	}
	l.cursor--
	observability.History().OnUndo(ctx, nil)
	return nil
}

// Redo reapplies the operation right of the cursor.
func (l *Ledger) Redo(ctx context.Context) error {
	if l.cursor == len(l.ops) {
		err := errs.Wrap(errs.ErrCodeNothingToRedo, ErrNothingToRedo, "history has no redoable operation")
		observability.History().OnRedo(ctx, err)
		return err
	}
	if err := l.ops[l.cursor].Do(ctx); err != nil {
		observability.History().OnRedo(ctx, err)
		return fmt.Errorf("redo: %w", err)
	}
	l.cursor++
	observability.History().OnRedo(ctx, nil)
	return nil
}

// Clear disposes every operation and empties the ledger.
func (l *Ledger) Clear() {
	for _, op := range l.ops {
		op.Dispose()
	}
	l.ops = nil
	l.cursor = 0
}

// SetMaxOperations changes the bound. Shrinking evicts the oldest undoable
// entries first and then trims the redo tail from its far end.
func (l *Ledger) SetMaxOperations(n int) {
	l.max = max(n, 0)
	for len(l.ops) > l.max {
		if l.cursor > 0 {
			l.dropOldest()
			continue
		}
		last := len(l.ops) - 1
		l.ops[last].Dispose()
		l.ops[last] = nil
		l.ops = l.ops[:last]
	}
}

// CanUndo reports whether [Ledger.Undo] has an operation to revert.
func (l *Ledger) CanUndo() bool { return l.cursor > 0 }

// CanRedo reports whether [Ledger.Redo] has an operation to reapply.
func (l *Ledger) CanRedo() bool { return l.cursor < len(l.ops) }

// Len returns the number of recorded operations, undoable and redoable.
func (l *Ledger) Len() int { return len(l.ops) }

// Cursor returns the number of undoable operations.
func (l *Ledger) Cursor() int { return l.cursor }

// MaxOperations returns the configured bound.
func (l *Ledger) MaxOperations() int { return l.max }

func (l *Ledger) truncate() int {
	n := len(l.ops) - l.cursor
	for i := l.cursor; i < len(l.ops); i++ {
		l.ops[i].Dispose()
		l.ops[i] = nil
	}
	l.ops = l.ops[:l.cursor]
	return n
}

func (l *Ledger) dropOldest() {
	l.ops[0].Dispose()
	l.ops[0] = nil
	l.ops = l.ops[1:]
	l.cursor--
}
