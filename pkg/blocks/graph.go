package blocks

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

var (
	// ErrInvalidBlockID is returned by [Graph.Add] for ids below one.
	ErrInvalidBlockID = errors.New("block ID must be positive")

	// ErrDuplicateBlockID is returned by [Graph.Add] when the id is taken.
	ErrDuplicateBlockID = errors.New("duplicate block ID")

	// ErrUnknownBlock is returned when an id does not name a block in the graph.
	ErrUnknownBlock = errors.New("unknown block")

	// ErrInvalidConnection is returned for self-connections and connections
	// whose target is not an effect.
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrDuplicateConnection is returned by [Graph.Connect] when the
	// connection already exists.
	ErrDuplicateConnection = errors.New("duplicate connection")

	// ErrUnknownConnection is returned by [Graph.Disconnect] when there is
	// nothing to remove.
	ErrUnknownConnection = errors.New("unknown connection")
)

// Graph holds the blocks of a composition.
//
// The zero value is not usable; create graphs with [NewGraph].
type Graph struct {
	blocks    map[int]*Block
	order     []int // insertion order, breaks ZIndex ties
	highWater int   // largest id ever added
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{blocks: make(map[int]*Block)}
}

// NextID returns the id for the next new block: one more than the largest
// id currently present or ever held by the graph. An empty fresh graph
// returns 1.
func (g *Graph) NextID() int {
	top := g.highWater
	for id := range g.blocks {
		top = max(top, id)
	}
	return top + 1
}

// NextZIndex returns one more than the largest ZIndex, or 0 for an empty graph.
func (g *Graph) NextZIndex() int {
	if len(g.blocks) == 0 {
		return 0
	}
	top := 0
	first := true
	for _, b := range g.blocks {
		if first || b.ZIndex > top {
			top, first = b.ZIndex, false
		}
	}
	return top + 1
}

// Add inserts b. Missing parameters are filled from the kind's defaults and
// every connection of b must target an existing effect.
func (g *Graph) Add(b *Block) error {
	if b == nil {
		return errs.New(errs.ErrCodeInvalidInput, "nil block")
	}
	if b.ID < 1 {
		return errs.Wrap(errs.ErrCodeInvalidID, ErrInvalidBlockID, "block %d", b.ID)
	}
	if _, ok := g.blocks[b.ID]; ok {
		return errs.Wrap(errs.ErrCodeInvalidID, ErrDuplicateBlockID, "block %d", b.ID)
	}
	spec, ok := LookupKind(b.Kind)
	if !ok {
		return errs.Wrap(errs.ErrCodeInvalidKind, ErrUnknownKind, "block %d has kind %q", b.ID, b.Kind)
	}
	seen := make(map[int]bool, len(b.Connections))
	for _, to := range b.Connections {
		if seen[to] {
			return errs.Wrap(errs.ErrCodeInvalidInput, ErrDuplicateConnection, "%d -> %d", b.ID, to)
		}
		seen[to] = true
		if err := g.checkTarget(b.ID, to); err != nil {
			return err
		}
	}

	if b.Params == nil {
		b.Params = make(Params, len(spec.Defaults))
	}
	for name, v := range spec.Defaults {
		if _, ok := b.Params[name]; !ok {
			b.Params[name] = v
		}
	}

	g.blocks[b.ID] = b
	g.order = append(g.order, b.ID)
	g.highWater = max(g.highWater, b.ID)
	return nil
}

// Remove deletes the block with the given id and strips every connection
// that pointed at it. The removed block keeps its own outgoing connections.
// Remaining ids are not renumbered.
func (g *Graph) Remove(id int) (*Block, error) {
	b, ok := g.blocks[id]
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeInvalidID, ErrUnknownBlock, "block %d", id)
	}
	delete(g.blocks, id)
	g.order = slices.DeleteFunc(g.order, func(x int) bool { return x == id })
	for _, other := range g.blocks {
		other.Connections = slices.DeleteFunc(other.Connections, func(x int) bool { return x == id })
	}
	return b, nil
}

// Block returns the block with the given id.
func (g *Graph) Block(id int) (*Block, bool) {
	b, ok := g.blocks[id]
	return b, ok
}

// Len returns the number of blocks.
func (g *Graph) Len() int { return len(g.blocks) }

// IDs returns all block ids in ascending order.
func (g *Graph) IDs() []int {
	ids := slices.Clone(g.order)
	slices.Sort(ids)
	return ids
}

// Blocks returns the blocks in insertion order.
func (g *Graph) Blocks() []*Block {
	out := make([]*Block, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.blocks[id])
	}
	return out
}

// Sorted returns the blocks in ascending ZIndex order, ties in insertion order.
func (g *Graph) Sorted() []*Block {
	out := g.Blocks()
	SortByZIndex(out)
	return out
}

// Sources returns the source blocks in ZIndex order.
func (g *Graph) Sources() []*Block {
	return slices.DeleteFunc(g.Sorted(), func(b *Block) bool { return !b.IsSource() })
}

// Effects returns the effect blocks in ZIndex order.
func (g *Graph) Effects() []*Block {
	return slices.DeleteFunc(g.Sorted(), func(b *Block) bool { return !b.IsEffect() })
}

// Connect adds a connection from one block to an effect.
func (g *Graph) Connect(from, to int) error {
	src, ok := g.blocks[from]
	if !ok {
		return errs.Wrap(errs.ErrCodeInvalidID, ErrUnknownBlock, "connection source %d", from)
	}
	if err := g.checkTarget(from, to); err != nil {
		return err
	}
	if src.ConnectsTo(to) {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrDuplicateConnection, "%d -> %d", from, to)
	}
	src.Connections = append(src.Connections, to)
	return nil
}

// Disconnect removes the connection from one block to another.
func (g *Graph) Disconnect(from, to int) error {
	src, ok := g.blocks[from]
	if !ok {
		return errs.Wrap(errs.ErrCodeInvalidID, ErrUnknownBlock, "connection source %d", from)
	}
	i := slices.Index(src.Connections, to)
	if i < 0 {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrUnknownConnection, "%d -> %d", from, to)
	}
	src.Connections = slices.Delete(src.Connections, i, i+1)
	return nil
}

// Incoming returns the ids of blocks connected to id, in insertion order.
func (g *Graph) Incoming(id int) []int {
	var out []int
	for _, from := range g.order {
		if g.blocks[from].ConnectsTo(id) {
			out = append(out, from)
		}
	}
	return out
}

// ConnectionCount returns the total number of connections.
func (g *Graph) ConnectionCount() int {
	n := 0
	for _, b := range g.blocks {
		n += len(b.Connections)
	}
	return n
}

// Reachable returns the blocks named by ids plus everything reachable from
// them through connections, each exactly once, sorted by ZIndex. Unknown
// ids are skipped.
func (g *Graph) Reachable(ids ...int) []*Block {
	var roots []*Block
	for _, id := range ids {
		if b, ok := g.blocks[id]; ok {
			roots = append(roots, b)
		}
	}
	out := Flatten(roots, blockKey, g.downstream)
	SortByZIndex(out)
	return out
}

// Clone returns a deep copy of the persistent state. Runtime state (chains,
// lifecycle flags) is not copied.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		blocks:    make(map[int]*Block, len(g.blocks)),
		order:     slices.Clone(g.order),
		highWater: g.highWater,
	}
	for id, b := range g.blocks {
		c.blocks[id] = b.Clone()
	}
	return c
}

// Validate checks that every connection targets an existing effect and that
// no block connects to itself.
func (g *Graph) Validate() error {
	for _, id := range g.order {
		for _, to := range g.blocks[id].Connections {
			if err := g.checkTarget(id, to); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) checkTarget(from, to int) error {
	if from == to {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidConnection, "block %d cannot connect to itself", from)
	}
	dst, ok := g.blocks[to]
	if !ok {
		return errs.Wrap(errs.ErrCodeInvalidID, ErrUnknownBlock, "connection target %d", to)
	}
	if !dst.IsEffect() {
		return errs.Wrap(errs.ErrCodeInvalidInput, ErrInvalidConnection,
			"block %d is a %s, connections must end at an effect", to, dst.Role())
	}
	return nil
}

func (g *Graph) downstream(b *Block) []*Block {
	out := make([]*Block, 0, len(b.Connections))
	for _, id := range b.Connections {
		if next, ok := g.blocks[id]; ok {
			out = append(out, next)
		}
	}
	return out
}

func blockKey(b *Block) int { return b.ID }

// SortByZIndex sorts blocks by ascending ZIndex, keeping the relative order
// of equal ZIndex values.
func SortByZIndex(bs []*Block) {
	slices.SortStableFunc(bs, func(a, b *Block) int { return cmp.Compare(a.ZIndex, b.ZIndex) })
}

// String returns a one-line summary for logs.
func (g *Graph) String() string {
	return fmt.Sprintf("graph(%d blocks, %d connections)", g.Len(), g.ConnectionCount())
}
