package engine

import (
	"context"
	"errors"

	"github.com/matzehuels/blokdust/pkg/blocks"
	"github.com/matzehuels/blokdust/pkg/command"
	errs "github.com/matzehuels/blokdust/pkg/errors"
)

// Command names.
const (
	CmdCreateBlock      = "CREATE_BLOCK"
	CmdDeleteBlock      = "DELETE_BLOCK"
	CmdMoveBlock        = "MOVE_BLOCK"
	CmdConnectBlocks    = "CONNECT_BLOCKS"
	CmdDisconnectBlocks = "DISCONNECT_BLOCKS"
	CmdIncrementNumber  = "INCREMENT_NUMBER"
	CmdSave             = "SAVE"
	CmdSaveAs           = "SAVEAS"
	CmdLoad             = "LOAD"
	CmdUndo             = "UNDO"
	CmdRedo             = "REDO"
)

// Commands lists every command the engine registers.
var Commands = []string{
	CmdCreateBlock, CmdDeleteBlock, CmdMoveBlock, CmdConnectBlocks, CmdDisconnectBlocks,
	CmdIncrementNumber, CmdSave, CmdSaveAs, CmdLoad, CmdUndo, CmdRedo,
}

// ErrInvalidPayload is returned when a command receives a payload of the
// wrong type.
var ErrInvalidPayload = errors.New("invalid payload")

// CreateBlock is the CREATE_BLOCK payload. Params override the kind's
// defaults. The result is a copy of the new block.
type CreateBlock struct {
	Kind     blocks.Kind
	Position blocks.Point
	Params   blocks.Params
}

// DeleteBlock is the DELETE_BLOCK payload.
type DeleteBlock struct {
	ID int
}

// MoveBlock is the MOVE_BLOCK payload.
type MoveBlock struct {
	ID int
	To blocks.Point
}

// Connection is the CONNECT_BLOCKS and DISCONNECT_BLOCKS payload.
type Connection struct {
	From, To int
}

// payloadAs accepts a T or a non-nil *T.
func payloadAs[T any](name string, payload any) (T, error) {
	switch p := payload.(type) {
	case T:
		return p, nil
	case *T:
		if p != nil {
			return *p, nil
		}
	}
	var zero T
	return zero, errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidPayload, "%s: want %T, got %T", name, zero, payload)
}

func (e *Engine) registerCommands() error {
	handlers := map[string]func() command.Handler{
		CmdCreateBlock:      func() command.Handler { return &createHandler{e: e} },
		CmdDeleteBlock:      func() command.Handler { return &deleteHandler{e: e} },
		CmdMoveBlock:        func() command.Handler { return &moveHandler{e: e} },
		CmdConnectBlocks:    func() command.Handler { return &connectHandler{e: e} },
		CmdDisconnectBlocks: func() command.Handler { return &connectHandler{e: e, invert: true} },
		CmdIncrementNumber:  func() command.Handler { return command.HandlerFunc(incrementNumber) },
		CmdSave:             func() command.Handler { return &saveHandler{e: e} },
		CmdSaveAs:           func() command.Handler { return &saveHandler{e: e, asNew: true} },
		CmdLoad:             func() command.Handler { return &loadHandler{e: e} },
		CmdUndo:             func() command.Handler { return &historyHandler{e: e} },
		CmdRedo:             func() command.Handler { return &historyHandler{e: e, redo: true} },
	}
	for _, name := range Commands {
		if err := e.manager.Register(name, command.FactoryFunc(handlers[name])); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Graph commands
// =============================================================================

type createHandler struct {
	e     *Engine
	block *blocks.Block
}

func (h *createHandler) Execute(ctx context.Context, payload any) (any, error) {
	p, err := payloadAs[CreateBlock](CmdCreateBlock, payload)
	if err != nil {
		return nil, err
	}
	if _, ok := blocks.LookupKind(p.Kind); !ok {
		return nil, errs.Wrap(errs.ErrCodeInvalidKind, blocks.ErrUnknownKind, "create %q", p.Kind)
	}

	err = h.e.commit(ctx, func() error {
		g := h.e.comp.Graph
		b := blocks.NewBlock(g.NextID(), p.Kind, p.Position)
		b.ZIndex = g.NextZIndex()
		if b.Params == nil {
			b.Params = make(blocks.Params, len(p.Params))
		}
		for name, v := range p.Params {
			b.Params[name] = v
		}
		if err := h.e.ledger.Do(ctx, &createOp{e: h.e, id: b.ID, detached: b}); err != nil {
			return err
		}
		h.block = b.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.e.logger.Debug("created block", "id", h.block.ID, "kind", h.block.Kind)
	return h.block, nil
}

type deleteHandler struct{ e *Engine }

func (h *deleteHandler) Execute(ctx context.Context, payload any) (any, error) {
	p, err := payloadAs[DeleteBlock](CmdDeleteBlock, payload)
	if err != nil {
		return nil, err
	}
	err = h.e.commit(ctx, func() error {
		return h.e.ledger.Do(ctx, &deleteOp{e: h.e, id: p.ID})
	})
	if err != nil {
		return nil, err
	}
	h.e.logger.Debug("deleted block", "id", p.ID)
	return nil, nil
}

type moveHandler struct{ e *Engine }

func (h *moveHandler) Execute(ctx context.Context, payload any) (any, error) {
	p, err := payloadAs[MoveBlock](CmdMoveBlock, payload)
	if err != nil {
		return nil, err
	}
	err = h.e.commit(ctx, func() error {
		b, ok := h.e.comp.Graph.Block(p.ID)
		if !ok {
			return errs.Wrap(errs.ErrCodeInvalidID, blocks.ErrUnknownBlock, "move block %d", p.ID)
		}
		return h.e.ledger.Do(ctx, &moveOp{e: h.e, id: p.ID, from: b.Position, to: p.To})
	})
	return nil, err
}

type connectHandler struct {
	e      *Engine
	invert bool
}

func (h *connectHandler) Execute(ctx context.Context, payload any) (any, error) {
	name := CmdConnectBlocks
	if h.invert {
		name = CmdDisconnectBlocks
	}
	p, err := payloadAs[Connection](name, payload)
	if err != nil {
		return nil, err
	}
	err = h.e.commit(ctx, func() error {
		return h.e.ledger.Do(ctx, &connectOp{e: h.e, from: p.From, to: p.To, invert: h.invert})
	})
	if err != nil {
		return nil, err
	}
	h.e.logger.Debug("updated connection", "command", name, "from", p.From, "to", p.To)
	return nil, nil
}

// =============================================================================
// History commands
// =============================================================================

type historyHandler struct {
	e    *Engine
	redo bool
}

func (h *historyHandler) Execute(ctx context.Context, _ any) (any, error) {
	err := h.e.commit(ctx, func() error {
		if h.redo {
			return h.e.ledger.Redo(ctx)
		}
		return h.e.ledger.Undo(ctx)
	})
	if errs.Inert(err) {
		h.e.logger.Debug("history step skipped", "redo", h.redo, "reason", errs.UserMessage(err))
	}
	return nil, err
}

// =============================================================================
// Probe
// =============================================================================

func incrementNumber(_ context.Context, payload any) (any, error) {
	n, err := payloadAs[int](CmdIncrementNumber, payload)
	if err != nil {
		return nil, err
	}
	return n + 1, nil
}
