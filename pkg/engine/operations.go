package engine

import (
	"context"
	"slices"

	"github.com/matzehuels/blokdust/pkg/blocks"
	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/history"
)

var (
	_ history.Operation = (*createOp)(nil)
	_ history.Operation = (*deleteOp)(nil)
	_ history.Operation = (*moveOp)(nil)
	_ history.Operation = (*connectOp)(nil)
)

// Operations run on the commit loop: the ledger only calls them from
// handlers that are already inside commit.

// createOp adds a block. While undone, it holds the detached block.
type createOp struct {
	e        *Engine
	id       int
	detached *blocks.Block
}

func (op *createOp) Do(ctx context.Context) error {
	b := op.detached
	if b == nil {
		return errs.New(errs.ErrCodeInternal, "create block %d: nothing to add", op.id)
	}
	if err := op.e.comp.Graph.Add(b); err != nil {
		return err
	}
	op.detached = nil
	if !b.Live() {
		blocks.InitBlock(b, op.e.observer)
	}
	op.e.refresh()
	return nil
}

func (op *createOp) Undo(ctx context.Context) error {
	b, err := op.e.comp.Graph.Remove(op.id)
	if err != nil {
		return err
	}
	op.detached = b
	op.e.refresh()
	return nil
}

func (op *createOp) Dispose() {
	if op.detached != nil {
		blocks.Release(op.detached, op.e.observer)
		op.detached = nil
	}
}

// deleteOp removes a block. While applied, it holds the detached block and
// the blocks that were connected to it, each with the position of the
// connection in that block's list.
type deleteOp struct {
	e        *Engine
	id       int
	incoming []inboundLink
	detached *blocks.Block
}

// inboundLink is a connection from block from, found at index in its
// Connections.
type inboundLink struct {
	from, index int
}

func (op *deleteOp) Do(ctx context.Context) error {
	g := op.e.comp.Graph
	var incoming []inboundLink
	for _, from := range g.Incoming(op.id) {
		if b, ok := g.Block(from); ok {
			incoming = append(incoming, inboundLink{from: from, index: slices.Index(b.Connections, op.id)})
		}
	}
	b, err := g.Remove(op.id)
	if err != nil {
		return err
	}
	op.incoming = incoming
	op.detached = b
	op.e.refresh()
	return nil
}

func (op *deleteOp) Undo(ctx context.Context) error {
	g := op.e.comp.Graph
	if op.detached == nil {
		return errs.New(errs.ErrCodeInternal, "restore block %d: nothing to restore", op.id)
	}
	if err := g.Add(op.detached); err != nil {
		return err
	}
	for _, in := range op.incoming {
		src, ok := g.Block(in.from)
		if !ok {
			continue
		}
		if err := g.Connect(in.from, op.id); err != nil {
			return err
		}
		// Connect appends; move the connection back to its old slot.
		c := src.Connections[:len(src.Connections)-1]
		src.Connections = slices.Insert(c, min(max(in.index, 0), len(c)), op.id)
	}
	op.detached = nil
	op.incoming = nil
	op.e.refresh()
	return nil
}

func (op *deleteOp) Dispose() {
	if op.detached != nil {
		blocks.Release(op.detached, op.e.observer)
		op.detached = nil
	}
}

// moveOp changes a block's position.
type moveOp struct {
	e        *Engine
	id       int
	from, to blocks.Point
}

func (op *moveOp) set(p blocks.Point) error {
	b, ok := op.e.comp.Graph.Block(op.id)
	if !ok {
		return errs.Wrap(errs.ErrCodeInvalidID, blocks.ErrUnknownBlock, "move block %d", op.id)
	}
	b.Position = p
	return nil
}

func (op *moveOp) Do(ctx context.Context) error   { return op.set(op.to) }
func (op *moveOp) Undo(ctx context.Context) error { return op.set(op.from) }
func (op *moveOp) Dispose()                       {}

// connectOp adds a connection; with invert set it removes one instead.
type connectOp struct {
	e        *Engine
	from, to int
	invert   bool
	index    int // position of the removed connection, for re-insertion
}

func (op *connectOp) connect() error {
	g := op.e.comp.Graph
	if err := g.Connect(op.from, op.to); err != nil {
		return err
	}
	if op.invert {
		// Put the connection back where it was.
		b, _ := g.Block(op.from)
		c := slices.Delete(b.Connections, len(b.Connections)-1, len(b.Connections))
		b.Connections = slices.Insert(c, min(op.index, len(c)), op.to)
	}
	op.e.refresh()
	return nil
}

func (op *connectOp) disconnect() error {
	g := op.e.comp.Graph
	if b, ok := g.Block(op.from); ok {
		op.index = slices.Index(b.Connections, op.to)
	}
	if err := g.Disconnect(op.from, op.to); err != nil {
		return err
	}
	op.e.refresh()
	return nil
}

func (op *connectOp) Do(ctx context.Context) error {
	if op.invert {
		return op.disconnect()
	}
	return op.connect()
}

func (op *connectOp) Undo(ctx context.Context) error {
	if op.invert {
		return op.connect()
	}
	return op.disconnect()
}

func (op *connectOp) Dispose() {}
