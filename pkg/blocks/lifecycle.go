package blocks

import (
	"slices"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

// Broadcast runs ev for every block in ZIndex order: the block's behavior
// first, then obs. A nil obs is treated as [NoopObserver].
func (g *Graph) Broadcast(ev Event, obs Observer) {
	if obs == nil {
		obs = NoopObserver{}
	}
	if ev == EventRefresh {
		g.derive()
	}
	for _, b := range g.Sorted() {
		switch ev {
		case EventInit:
			b.live = true
		case EventDelete:
			if !b.live {
				continue
			}
			b.live = false
		}
		notify(ev, b, obs)
	}
}

// Init initializes every block.
func (g *Graph) Init(obs Observer) { g.Broadcast(EventInit, obs) }

// Update advances every block by one tick.
func (g *Graph) Update(obs Observer) { g.Broadcast(EventUpdate, obs) }

// Draw renders every block.
func (g *Graph) Draw(obs Observer) { g.Broadcast(EventDraw, obs) }

// Refresh re-derives effect chains and inputs, then notifies every block.
func (g *Graph) Refresh(obs Observer) { g.Broadcast(EventRefresh, obs) }

// InitBlock initializes a single block, for blocks added after the graph
// was initialized.
func InitBlock(b *Block, obs Observer) {
	if obs == nil {
		obs = NoopObserver{}
	}
	b.live = true
	notify(EventInit, b, obs)
}

// Release fires the Delete event for b if it is live, letting its behavior
// and the observer free audio and drawing resources. Releasing a block that
// was never initialized, or twice, does nothing.
func Release(b *Block, obs Observer) {
	if !b.live {
		return
	}
	if obs == nil {
		obs = NoopObserver{}
	}
	b.live = false
	notify(EventDelete, b, obs)
}

// Collide delivers a particle to the block with the given id.
func (g *Graph) Collide(id int, p *Particle) (Disposition, error) {
	b, ok := g.blocks[id]
	if !ok {
		return DispositionPass, errs.Wrap(errs.ErrCodeInvalidID, ErrUnknownBlock, "collision with block %d", id)
	}
	return behaviorOf(b).OnParticleCollision(b, p), nil
}

// derive recomputes every source's chain and every effect's inputs.
func (g *Graph) derive() {
	for _, b := range g.blocks {
		b.chain = nil
		b.inputs = nil
	}
	for _, src := range g.Sources() {
		reached := Flatten(g.downstream(src), blockKey, g.downstream)
		for _, fx := range reached {
			if fx.ID == src.ID {
				continue
			}
			src.chain = append(src.chain, fx.ID)
			fx.inputs = append(fx.inputs, src.ID)
		}
	}
	for _, b := range g.blocks {
		slices.Sort(b.inputs)
	}
}
