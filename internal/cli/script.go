package cli

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/blokdust/pkg/blocks"
	"github.com/matzehuels/blokdust/pkg/engine"
	errs "github.com/matzehuels/blokdust/pkg/errors"
)

// Script is a TOML command script:
//
//	[[step]]
//	command = "CREATE_BLOCK"
//	kind = "tone"
//	x = 0
//	y = 0
//
//	[[step]]
//	command = "CONNECT_BLOCKS"
//	from = 1
//	to = 2
//
// Steps run in order. A run of consecutive steps marked async is dispatched
// concurrently and joined before the next synchronous step.
type Script struct {
	Steps []Step `toml:"step"`
}

// Step is one command dispatch. Which fields apply depends on Command.
type Step struct {
	Command     string        `toml:"command"`
	Kind        string        `toml:"kind"`        // CREATE_BLOCK
	X           float64       `toml:"x"`           // CREATE_BLOCK, MOVE_BLOCK
	Y           float64       `toml:"y"`           // CREATE_BLOCK, MOVE_BLOCK
	Params      blocks.Params `toml:"params"`      // CREATE_BLOCK
	ID          int           `toml:"id"`          // DELETE_BLOCK, MOVE_BLOCK
	From        int           `toml:"from"`        // CONNECT_BLOCKS, DISCONNECT_BLOCKS
	To          int           `toml:"to"`          // CONNECT_BLOCKS, DISCONNECT_BLOCKS
	Value       int           `toml:"value"`       // INCREMENT_NUMBER
	Composition string        `toml:"composition"` // LOAD
	Async       bool          `toml:"async"`
}

// loadScript reads and checks a script file.
func loadScript(path string) (*Script, error) {
	var s Script
	meta, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "script %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "script %s: unknown key %s", path, undecoded[0])
	}
	for i, step := range s.Steps {
		if step.Command == "" {
			return nil, errs.New(errs.ErrCodeInvalidInput, "script %s: step %d has no command", path, i+1)
		}
	}
	return &s, nil
}

// payload builds the engine payload for the step's command.
func (s Step) payload() any {
	switch s.Command {
	case engine.CmdCreateBlock:
		return engine.CreateBlock{
			Kind:     blocks.Kind(s.Kind),
			Position: blocks.Point{X: s.X, Y: s.Y},
			Params:   s.Params,
		}
	case engine.CmdDeleteBlock:
		return engine.DeleteBlock{ID: s.ID}
	case engine.CmdMoveBlock:
		return engine.MoveBlock{ID: s.ID, To: blocks.Point{X: s.X, Y: s.Y}}
	case engine.CmdConnectBlocks, engine.CmdDisconnectBlocks:
		return engine.Connection{From: s.From, To: s.To}
	case engine.CmdIncrementNumber:
		return s.Value
	case engine.CmdLoad:
		return s.Composition
	default:
		return nil
	}
}

// needsStore reports whether any step reaches the composition store.
func (s *Script) needsStore() bool {
	return slices.ContainsFunc(s.Steps, func(st Step) bool {
		switch st.Command {
		case engine.CmdSave, engine.CmdSaveAs, engine.CmdLoad:
			return true
		}
		return false
	})
}

// skippedStep is a step that failed without changing anything, such as an
// undo on an empty history.
type skippedStep struct {
	Step    int
	Command string
	Reason  string
}

// runScript executes every step against e. Undo and redo on an exhausted
// history are skipped and returned in step order; any other failure stops
// the script.
func runScript(ctx context.Context, e *engine.Engine, s *Script, logger *log.Logger) ([]skippedStep, error) {
	var (
		mu      sync.Mutex
		skipped []skippedStep
	)
	exec := func(ctx context.Context, i int, step Step) error {
		sk, err := runStep(ctx, e, i, step, logger)
		if sk != nil {
			mu.Lock()
			skipped = append(skipped, *sk)
			mu.Unlock()
		}
		return err
	}
	finish := func(err error) ([]skippedStep, error) {
		slices.SortFunc(skipped, func(a, b skippedStep) int { return a.Step - b.Step })
		return skipped, err
	}

	g, gctx := errgroup.WithContext(ctx)
	pending := 0
	for i, step := range s.Steps {
		if !step.Async && pending > 0 {
			if err := g.Wait(); err != nil {
				return finish(err)
			}
			g, gctx = errgroup.WithContext(ctx)
			pending = 0
		}
		if step.Async {
			g.Go(func() error { return exec(gctx, i, step) })
			pending++
			continue
		}
		if err := exec(ctx, i, step); err != nil {
			return finish(err)
		}
	}
	return finish(g.Wait())
}

func runStep(ctx context.Context, e *engine.Engine, i int, step Step, logger *log.Logger) (*skippedStep, error) {
	out, err := e.Run(ctx, step.Command, step.payload())
	if errs.Inert(err) {
		logger.Debug("step skipped", "step", i+1, "command", step.Command, "reason", errs.UserMessage(err))
		return &skippedStep{Step: i + 1, Command: step.Command, Reason: errs.UserMessage(err)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Command, err)
	}
	logger.Debug("step done", "step", i+1, "command", step.Command, "result", describe(out))
	return nil, nil
}

// describe summarizes a command result for logs.
func describe(out any) string {
	switch v := out.(type) {
	case nil:
		return "-"
	case *blocks.Block:
		return fmt.Sprintf("%s #%d", v.Kind, v.ID)
	case *blocks.Composition:
		return fmt.Sprintf("%d blocks", v.Graph.Len())
	default:
		return fmt.Sprint(v)
	}
}
