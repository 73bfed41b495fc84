package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/blokdust/pkg/blocks"
	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/savefile"
	"github.com/matzehuels/blokdust/pkg/storage"
)

// saveAttempts is one try plus one retry after a transport failure.
const saveAttempts = 2

// saveHandler serves SAVE (overwrite the current id, or mint one) and SAVEAS
// (always mint a new id). The result is the id saved under.
type saveHandler struct {
	e     *Engine
	asNew bool
}

func (h *saveHandler) Execute(ctx context.Context, _ any) (any, error) {
	e := h.e
	start := time.Now()

	// Snapshot on the queue; everything slow happens outside it.
	var (
		data       []byte
		id         string
		generation int
	)
	err := e.commit(ctx, func() error {
		var err error
		data, err = savefile.Serialize(e.comp)
		id, generation = e.comp.ID, e.generation
		return err
	})
	if err != nil {
		return nil, err
	}
	if h.asNew {
		id = ""
	}

	text, err := e.codec.Compress(ctx, data, e.progress)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	attempt := 0
	var saved string
	err = storage.Retry(ctx, saveAttempts, e.retryDelay, func() error {
		attempt++
		if attempt > 1 {
			e.logger.Warn("retrying save", "id", id, "attempt", attempt)
		}
		var err error
		saved, err = e.store.Save(ctx, id, []byte(text))
		return err
	})
	if err != nil {
		return nil, err
	}

	// A LOAD may have replaced the composition while we were uploading.
	err = e.commit(ctx, func() error {
		if e.generation == generation {
			e.comp.ID = saved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("saved composition", "id", saved, "bytes", len(text), "duration", time.Since(start).Round(time.Millisecond))
	return saved, nil
}

// loadHandler serves LOAD. The payload is the composition id; the result is
// a copy of the loaded composition.
type loadHandler struct{ e *Engine }

func (h *loadHandler) Execute(ctx context.Context, payload any) (any, error) {
	e := h.e
	id, err := payloadAs[string](CmdLoad, payload)
	if err != nil {
		return nil, err
	}
	if err := errs.ValidateCompositionID(id); err != nil {
		return nil, err
	}

	text, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := e.codec.Decompress(ctx, string(text))
	if err != nil {
		return nil, fmt.Errorf("composition %s: %w", id, err)
	}
	res, err := savefile.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("composition %s: %w", id, err)
	}

	loaded := res.Composition
	loaded.ID = id
	var snap *blocks.Composition
	err = e.commit(ctx, func() error {
		e.ledger.Clear()
		e.comp.Graph.Broadcast(blocks.EventDelete, e.observer)
		e.comp = loaded
		e.generation++
		e.comp.Graph.Init(e.observer)
		e.refresh()
		snap = e.comp.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("loaded composition", "id", id, "blocks", snap.Graph.Len(), "version", res.Version)
	return snap, nil
}
