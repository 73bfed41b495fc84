package blocks

// Particle travels from a source across the grid. Particles are short-lived
// and recycled through a pool, so they carry no identity of their own.
type Particle struct {
	Position Point
	Vector   Point
	Life     int // remaining ticks
	Origin   int // id of the emitting source
}

// DefaultParticleLife is the number of ticks a freshly emitted particle lives.
const DefaultParticleLife = 1000

// NewParticle allocates an empty particle. It is the pool constructor.
func NewParticle() *Particle { return &Particle{} }

// Reset clears the particle for reuse.
func (p *Particle) Reset() { *p = Particle{} }

// Move advances the particle one tick and reports whether it is still alive.
func (p *Particle) Move() bool {
	if p.Life <= 0 {
		return false
	}
	p.Position = p.Position.Add(p.Vector)
	p.Life--
	return p.Life > 0
}
