// Package blocks models a patch: sound sources and effects placed on a grid
// and wired together.
//
// # Overview
//
// A [Graph] owns a set of [Block] values keyed by integer id. Each block has
// a [Kind] tag ("tone", "delay", ...) that maps through a kinds table to a
// [KindSpec]: its [Role] (source or effect), its default parameters and its
// [Behavior]. Dispatch always goes through that table, never through type
// switches, so new kinds are added with [RegisterKind] without touching the
// graph.
//
//	g := blocks.NewGraph()
//	tone := blocks.NewBlock(g.NextID(), blocks.KindTone, blocks.Point{X: 0, Y: 0})
//	_ = g.Add(tone)
//	delay := blocks.NewBlock(g.NextID(), blocks.KindDelay, blocks.Point{X: 2, Y: 0})
//	_ = g.Add(delay)
//	_ = g.Connect(tone.ID, delay.ID)
//	g.Refresh(nil)
//	fmt.Println(tone.Chain()) // [2]
//
// # Identity
//
// Ids are allocated by [Graph.NextID]: one more than the largest id the graph
// has ever held. Removing the block with the largest id does not free that id
// for reuse, so an undo history that refers to blocks by id never points at
// the wrong block.
//
// # Connections
//
// Block.Connections lists downstream block ids. They are non-owning handles
// into the same graph: removing a block strips every connection that pointed
// at it. Connections always end at an effect; sources only emit. Effects may
// feed other effects, so the connection structure can contain cycles, and
// every traversal in this package tracks visited blocks.
//
// # Ordering and Broadcast
//
// Blocks are evaluated and drawn in ascending ZIndex order, ties broken by
// insertion order. [Graph.Init], [Graph.Update], [Graph.Draw] and
// [Graph.Refresh] invoke each block's behavior and then the supplied
// [Observer] exactly once per block in that order. Refresh also re-derives
// each source's effect chain and each effect's inputs.
//
// # Particles
//
// Particles travel from sources into other blocks. When one reaches a block,
// [Graph.Collide] asks the block's behavior what happens. A recorder absorbs
// the particle; the caller then returns it to its pool.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. The engine serializes access.
package blocks
