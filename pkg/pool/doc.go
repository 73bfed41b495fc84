// Package pool provides a bounded object pool for short-lived, frequently
// allocated values such as particles.
//
// # Overview
//
// A [Pool] hands out instances with [Pool.Acquire] and takes them back with
// [Pool.Release]. At construction it pre-allocates [Config.Min] instances and
// it never holds more than [Config.Max] instances in total, so the sum of
// free and in-use instances stays bounded for the pool's whole life.
//
//	p, err := pool.New(pool.Config[*blocks.Particle]{
//	    Min: 10,
//	    Max: 100,
//	    New: func() *blocks.Particle { return &blocks.Particle{} },
//	})
//	particle, err := p.Acquire()
//	// ... animate ...
//	err = p.Release(particle)
//
// # Exhaustion
//
// When every instance is in use and the pool is at Max, the [Policy] decides:
//
//   - [PolicyReuse] (default): the oldest in-use instance is reset and handed
//     out again. Its previous holder silently loses it, which suits visual
//     effects where dropping the oldest particle is preferable to failing.
//   - [PolicyStrict]: Acquire fails with [ErrPoolExhausted].
//
// # Ownership
//
// Releasing a value the pool never handed out, or releasing it twice, fails
// with [ErrNotOwned]. Items are tracked by identity, so T is usually a
// pointer type.
//
// # Concurrency
//
// A Pool is not safe for concurrent use. Callers that share one between
// goroutines serialize access themselves; the engine does this through its
// commit queue.
package pool
