// Package storage persists compressed compositions.
//
// A [Store] maps composition ids to opaque payloads (in practice the base64
// text produced by the codec package). The engine never looks inside a
// payload and never talks to a backend directly.
//
// # Backends
//
//   - [Memory]: in-process map, for tests and throwaway sessions
//   - [File]: one file per composition under a directory
//   - [Redis]: keys under a configurable prefix, optional TTL
//   - [Mongo]: one document per composition
//   - [S3]: one object per composition in an S3-compatible bucket
//   - [HTTP]: client for the blokdust storage server
//
// [Open] selects a backend from a [Config] by driver name and wraps it with
// [Instrument] so saves and loads reach the observability hooks.
//
// # Errors
//
// Load of an unknown id returns an error wrapping [ErrNotFound] (code
// COMPOSITION_NOT_FOUND). Failures to reach the backend wrap [ErrTransport]
// (code TRANSPORT_FAILURE); only these are [Retryable]:
//
//	err := storage.Retry(ctx, 2, 200*time.Millisecond, func() error {
//	    var err error
//	    id, err = store.Save(ctx, id, payload)
//	    return err
//	})
package storage
