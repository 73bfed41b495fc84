// Package history records reversible operations for undo and redo.
//
// # Overview
//
// Every user-visible change to a composition is expressed as an [Operation]
// with a forward step (Do) and its inverse (Undo). A [Ledger] keeps the
// operations in order with a cursor: entries left of the cursor can be
// undone, entries right of it can be redone.
//
//	ledger := history.New(50)
//	_ = ledger.Do(ctx, moveOp)   // runs moveOp.Do and records it
//	_ = ledger.Undo(ctx)         // moveOp.Undo, cursor moves left
//	_ = ledger.Redo(ctx)         // moveOp.Do again, cursor moves right
//
// # Bounds and Disposal
//
// The ledger never holds more than MaxOperations entries. Recording a new
// operation first discards the redo tail, then evicts the oldest entries
// while the ledger is over its bound. Every operation that leaves the ledger
// this way, or through [Ledger.Clear], has its Dispose method called exactly
// once so it can release whatever it holds (for example the resources of a
// block that was deleted and can no longer be restored).
//
// A ledger with MaxOperations == 0 records nothing: operations are disposed
// as soon as they are recorded.
//
// # Failure
//
// If Undo or Redo of an operation fails, the cursor does not move and the
// error is returned. Undo with nothing left to undo fails with
// [ErrNothingToUndo]; Redo with an empty redo tail fails with
// [ErrNothingToRedo]. Both leave the ledger untouched.
//
// # Concurrency
//
// A Ledger is not safe for concurrent use. The engine owns its ledger and
// only touches it from its commit queue.
package history
