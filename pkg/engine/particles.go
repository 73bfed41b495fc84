package engine

import (
	"context"

	"github.com/matzehuels/blokdust/pkg/blocks"
	errs "github.com/matzehuels/blokdust/pkg/errors"
)

// Emit takes a particle from the pool and launches it from the source block
// with the given id along vector.
//
// Under pool.PolicyReuse a full pool recycles its oldest live particle, so a
// caller still holding that particle shares it with the new emitter. Calling
// Expire or Collide with it afterwards either fails with pool.ErrNotOwned or
// returns the new emitter's particle to the pool. Use pool.PolicyStrict when
// every particle must have a single owner.
func (e *Engine) Emit(ctx context.Context, sourceID int, vector blocks.Point) (*blocks.Particle, error) {
	var p *blocks.Particle
	err := e.commit(ctx, func() error {
		b, ok := e.comp.Graph.Block(sourceID)
		if !ok {
			return errs.Wrap(errs.ErrCodeInvalidID, blocks.ErrUnknownBlock, "emit from block %d", sourceID)
		}
		if !b.IsSource() {
			return errs.New(errs.ErrCodeInvalidInput, "block %d is a %s and cannot emit", sourceID, b.Role())
		}
		var err error
		if p, err = e.particles.Acquire(); err != nil {
			return err
		}
		p.Position = b.Position
		p.Vector = vector
		p.Life = blocks.DefaultParticleLife
		p.Origin = sourceID
		return nil
	})
	return p, err
}

// Collide delivers p to the block with the given id. Particles the block
// absorbs go back to the pool and must not be used afterwards.
func (e *Engine) Collide(ctx context.Context, blockID int, p *blocks.Particle) (blocks.Disposition, error) {
	var d blocks.Disposition
	err := e.commit(ctx, func() error {
		var err error
		if d, err = e.comp.Graph.Collide(blockID, p); err != nil {
			return err
		}
		if d == blocks.DispositionAbsorb {
			return e.particles.Release(p)
		}
		return nil
	})
	return d, err
}

// Expire returns a particle that ran out of life to the pool.
func (e *Engine) Expire(ctx context.Context, p *blocks.Particle) error {
	return e.commit(ctx, func() error {
		return e.particles.Release(p)
	})
}

// ParticleStats reports the pool occupancy.
func (e *Engine) ParticleStats(ctx context.Context) (inUse, free int, err error) {
	err = e.commit(ctx, func() error {
		inUse, free = e.particles.InUse(), e.particles.Free()
		return nil
	})
	return inUse, free, err
}
