// Package command dispatches named commands to freshly constructed handlers.
//
// # Overview
//
// A command is a name plus an arbitrary payload. The [Manager] resolves the
// name to a [Factory] registered in a [resource.Registry], asks the factory
// for a new [Handler], and runs the handler on its own goroutine. The caller
// gets a [Future] that settles with the handler's output or error:
//
//	m := command.NewManager(nil, logger)
//	_ = m.Register("INCREMENT_NUMBER", command.FactoryFunc(func() command.Handler {
//	    return command.HandlerFunc(func(ctx context.Context, p any) (any, error) {
//	        return p.(int) + 1, nil
//	    })
//	}))
//	out, err := m.ExecuteCommand(ctx, "INCREMENT_NUMBER", 41).Wait(ctx)
//
// # Resolution
//
// Resolution happens synchronously inside [Manager.ExecuteCommand]. An
// unknown name yields a Future that has already failed with
// [ErrUnknownCommand]; no handler is built and nothing runs. Each dispatch
// builds a new handler, so handlers may keep per-invocation state in their
// fields.
//
// # Futures
//
// A Future moves from [StateIdle] to [StateDispatching] once a handler is
// running, then to [StateCompleted] or [StateFailed]. A panicking handler
// settles its Future with [ErrHandlerPanic] instead of crashing the process.
//
// The manager never retries. Retrying transport failures is the business of
// the handler that talks to the transport.
package command
