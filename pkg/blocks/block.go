package blocks

import (
	"maps"
	"slices"
)

// Point is a position or offset in grid coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Params holds per-kind numeric parameters such as "frequency" or "feedback".
type Params map[string]float64

// Clone returns an independent copy. A nil Params clones to nil.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Block is a node of the patch graph.
//
// The zero value is not usable: ID and Kind must be set before adding the
// block to a [Graph]. Use [NewBlock] to get a block with default parameters.
type Block struct {
	ID          int    // unique within a composition, never reused
	ZIndex      int    // evaluation and draw order, ascending
	Kind        Kind   // key into the kinds table
	Position    Point  // grid position
	Params      Params // kind parameters, defaults filled in by Graph.Add
	Connections []int  // downstream block ids, ordered, no duplicates

	chain    []int // sources: effects reachable downstream
	inputs   []int // effects: sources feeding them
	live     bool  // Init ran and Delete has not
	absorbed int   // particles absorbed by this block
}

// NewBlock creates a block of the given kind with the kind's default
// parameters. Unknown kinds get empty parameters; [Graph.Add] rejects them.
func NewBlock(id int, kind Kind, pos Point) *Block {
	b := &Block{ID: id, Kind: kind, Position: pos}
	if spec, ok := LookupKind(kind); ok {
		b.Params = spec.Defaults.Clone()
	}
	return b
}

// Role returns the block's role from the kinds table.
func (b *Block) Role() Role {
	if spec, ok := LookupKind(b.Kind); ok {
		return spec.Role
	}
	return RoleUnknown
}

// IsSource reports whether the block emits particles.
func (b *Block) IsSource() bool { return b.Role() == RoleSource }

// IsEffect reports whether the block can receive connections.
func (b *Block) IsEffect() bool { return b.Role() == RoleEffect }

// Chain returns, for a source, the effects reachable from it as of the last
// [Graph.Refresh], nearest first.
func (b *Block) Chain() []int { return slices.Clone(b.chain) }

// Inputs returns, for an effect, the sources whose chain contains it as of
// the last [Graph.Refresh], in ascending id order.
func (b *Block) Inputs() []int { return slices.Clone(b.inputs) }

// Live reports whether the block has been initialized and not yet deleted.
func (b *Block) Live() bool { return b.live }

// Absorbed returns how many particles the block has absorbed.
func (b *Block) Absorbed() int { return b.absorbed }

// ConnectsTo reports whether id is among the block's connections.
func (b *Block) ConnectsTo(id int) bool { return slices.Contains(b.Connections, id) }

// Clone returns a copy of the persistent fields. Derived and runtime state
// is not copied.
func (b *Block) Clone() *Block {
	return &Block{
		ID:          b.ID,
		ZIndex:      b.ZIndex,
		Kind:        b.Kind,
		Position:    b.Position,
		Params:      b.Params.Clone(),
		Connections: slices.Clone(b.Connections),
	}
}
