// Package engine wires the blokdust core into a command-driven editor.
//
// An [Engine] owns one working composition, its undo ledger and the particle
// pool, and exposes every mutation as a named command dispatched through a
// [command.Manager]:
//
//	eng, err := engine.New(engine.Config{MaxOperations: 50}, engine.WithStore(store))
//	defer eng.Close()
//
//	out, err := eng.Run(ctx, engine.CmdCreateBlock, engine.CreateBlock{Kind: blocks.KindTone})
//	tone := out.(*blocks.Block)
//
// # Commands
//
// CREATE_BLOCK, DELETE_BLOCK, MOVE_BLOCK, CONNECT_BLOCKS and
// DISCONNECT_BLOCKS record reversible operations; UNDO and REDO step through
// them. SAVE, SAVEAS and LOAD go through the codec and the store.
// INCREMENT_NUMBER returns its integer payload plus one and touches nothing.
//
// # Concurrency
//
// Handlers run on their own goroutines, so several commands can be in flight.
// Every read or write of the graph, the session and the ledger goes through a
// single FIFO commit queue. Slow work (compression, storage round trips,
// decoding) runs outside the queue, and a handler commits only after that
// work has succeeded: a failed command leaves no partial state.
//
// Operations address blocks by id. A block that leaves the graph through an
// undone create or a delete is held by its operation until the operation is
// redone or disposed; disposal fires the block's Delete event.
package engine
