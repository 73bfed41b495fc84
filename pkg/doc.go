// Package pkg provides the core libraries for the blokdust patch editor.
//
// # Overview
//
// blokdust edits block-based audio patches: sound sources and effects placed
// on a grid, wired together, and saved to a remote store. The pkg directory
// is organized into these areas:
//
//  1. [blocks] - The patch model (blocks, kinds, connections, particles)
//  2. [pool], [resource], [command], [history] - Generic runtime building
//     blocks (object pool, named registry, command dispatch, undo ledger)
//  3. [engine] - The editor session tying the building blocks together
//  4. [savefile], [codec], [storage] - Persistence (save format, compressed
//     text encoding, composition stores)
//  5. [render/dot] - Graphviz export of a patch
//  6. [config], [errors], [observability], [buildinfo] - Ambient support
//
// # Architecture
//
// A command travels through the engine like this:
//
//	engine.Execute(name, payload)
//	         ↓
//	    [command] Manager (resolve handler, run async)
//	         ↓
//	    [history] Ledger (record undoable operation)
//	         ↓
//	    [blocks] Graph (mutate, refresh chains, notify observer)
//
// SAVE and LOAD go the other way through [savefile], [codec] and a
// [storage.Store].
//
// # Quick Start
//
//	e, _ := engine.New(engine.DefaultConfig())
//	defer e.Close()
//
//	tone, _ := e.Run(ctx, engine.CmdCreateBlock, engine.CreateBlock{Kind: blocks.KindTone})
//	delay, _ := e.Run(ctx, engine.CmdCreateBlock, engine.CreateBlock{Kind: blocks.KindDelay})
//	_, _ = e.Run(ctx, engine.CmdConnectBlocks, engine.Connection{
//	    From: tone.(*blocks.Block).ID,
//	    To:   delay.(*blocks.Block).ID,
//	})
//	_, _ = e.Run(ctx, engine.CmdUndo, nil)
//
// [blocks]: github.com/matzehuels/blokdust/pkg/blocks
// [pool]: github.com/matzehuels/blokdust/pkg/pool
// [resource]: github.com/matzehuels/blokdust/pkg/resource
// [command]: github.com/matzehuels/blokdust/pkg/command
// [history]: github.com/matzehuels/blokdust/pkg/history
// [engine]: github.com/matzehuels/blokdust/pkg/engine
// [savefile]: github.com/matzehuels/blokdust/pkg/savefile
// [codec]: github.com/matzehuels/blokdust/pkg/codec
// [storage]: github.com/matzehuels/blokdust/pkg/storage
// [storage.Store]: github.com/matzehuels/blokdust/pkg/storage#Store
// [render/dot]: github.com/matzehuels/blokdust/pkg/render/dot
// [config]: github.com/matzehuels/blokdust/pkg/config
// [errors]: github.com/matzehuels/blokdust/pkg/errors
// [observability]: github.com/matzehuels/blokdust/pkg/observability
// [buildinfo]: github.com/matzehuels/blokdust/pkg/buildinfo
package pkg
