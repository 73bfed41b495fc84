package pool

import (
	"container/list"
	"errors"
	"fmt"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

var (
	// ErrPoolExhausted is returned by [Pool.Acquire] under [PolicyStrict] when
	// all Max instances are in use.
	ErrPoolExhausted = errors.New("pool exhausted")

	// ErrNotOwned is returned by [Pool.Release] when the value is not currently
	// checked out of this pool.
	ErrNotOwned = errors.New("value not owned by pool")

	// ErrInvalidBounds is returned by [New] when the configuration cannot
	// describe a pool (negative Min, Max below one, Min above Max, nil New).
	ErrInvalidBounds = errors.New("invalid pool bounds")
)

// Policy selects what [Pool.Acquire] does when the pool is exhausted.
type Policy int

const (
	// PolicyReuse recycles the oldest in-use instance. Its previous holder
	// still references it: once recycled, a Release from that holder either
	// fails with ErrNotOwned or returns the new holder's instance. Holders
	// must stop using an instance as soon as it may have been recycled.
	PolicyReuse Policy = iota
	// PolicyStrict fails with ErrPoolExhausted.
	PolicyStrict
)

// String returns the policy name used in configuration files.
func (p Policy) String() string {
	switch p {
	case PolicyReuse:
		return "reuse"
	case PolicyStrict:
		return "strict"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name. The empty string selects [PolicyReuse].
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "reuse":
		return PolicyReuse, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return 0, errs.New(errs.ErrCodeInvalidInput, "unknown pool policy %q (want reuse or strict)", s)
	}
}

// Config describes a pool.
type Config[T any] struct {
	Min    int      // instances created up front
	Max    int      // hard upper bound on free + in-use
	New    func() T // constructor, required
	Reset  func(T)  // called on release and on recycle, optional
	Policy Policy   // exhaustion policy
}

// Pool is a bounded set of reusable instances. The zero value is not usable;
// create pools with [New].
type Pool[T comparable] struct {
	cfg   Config[T]
	free  []T
	inUse *list.List          // acquisition order, oldest at front
	index map[T]*list.Element // in-use membership
}

// New creates a pool and pre-allocates cfg.Min instances.
func New[T comparable](cfg Config[T]) (*Pool[T], error) {
	if cfg.New == nil || cfg.Min < 0 || cfg.Max < 1 || cfg.Min > cfg.Max {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidBounds, "min=%d max=%d", cfg.Min, cfg.Max)
	}
	p := &Pool[T]{
		cfg:   cfg,
		free:  make([]T, 0, cfg.Max),
		inUse: list.New(),
		index: make(map[T]*list.Element, cfg.Max),
	}
	for range cfg.Min {
		p.free = append(p.free, cfg.New())
	}
	return p, nil
}

// Acquire checks an instance out of the pool. Free instances are handed out
// first, then new ones are constructed up to Max. At Max the configured
// [Policy] applies.
func (p *Pool[T]) Acquire() (T, error) {
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		p.free = p.free[:n-1]
		p.checkout(v)
		return v, nil
	}
	if p.Len() < p.cfg.Max {
		v := p.cfg.New()
		p.checkout(v)
		return v, nil
	}
	if p.cfg.Policy == PolicyStrict {
		var zero T
		return zero, errs.Wrap(errs.ErrCodePoolExhausted, ErrPoolExhausted, "all %d instances in use", p.cfg.Max)
	}

	oldest := p.inUse.Front()
	v := oldest.Value.(T)
	p.inUse.MoveToBack(oldest)
	p.reset(v)
	return v, nil
}

// Release returns v to the free set. v must currently be checked out.
func (p *Pool[T]) Release(v T) error {
	e, ok := p.index[v]
	if !ok {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrNotOwned, "release")
	}
	p.inUse.Remove(e)
	delete(p.index, v)
	p.reset(v)
	p.free = append(p.free, v)
	return nil
}

// Owns reports whether v is currently checked out of the pool.
func (p *Pool[T]) Owns(v T) bool {
	_, ok := p.index[v]
	return ok
}

// Free returns the number of instances ready to be acquired without allocation.
func (p *Pool[T]) Free() int { return len(p.free) }

// InUse returns the number of checked-out instances.
func (p *Pool[T]) InUse() int { return p.inUse.Len() }

// Len returns the total number of instances the pool has created and still holds.
func (p *Pool[T]) Len() int { return len(p.free) + p.inUse.Len() }

// Min returns the configured pre-allocation count.
func (p *Pool[T]) Min() int { return p.cfg.Min }

// Max returns the configured upper bound.
func (p *Pool[T]) Max() int { return p.cfg.Max }

func (p *Pool[T]) checkout(v T) {
	p.index[v] = p.inUse.PushBack(v)
}

func (p *Pool[T]) reset(v T) {
	if p.cfg.Reset != nil {
		p.cfg.Reset(v)
	}
}
