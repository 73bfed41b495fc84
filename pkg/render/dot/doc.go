// Package dot renders compositions as Graphviz node-link diagrams.
//
// # Overview
//
// Blocks become nodes and connections become edges. Sources are drawn as
// filled ellipses, effects as rounded boxes, so the particle flow from
// sources into effect chains reads top to bottom.
//
// # Usage
//
//	src := dot.ToDOT(comp, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// # Options
//
//   - Detailed: node labels include position and parameters.
//
// # DOT Format
//
// The output of [ToDOT] is plain Graphviz source. It can be rendered with
// [RenderSVG], saved and processed with external Graphviz tools, or edited
// before rendering. Nodes are emitted in ZIndex order and edges in
// connection order, so the text is stable for a given composition.
//
// # Dependencies
//
// [RenderSVG] uses [github.com/goccy/go-graphviz] to render in-process.
package dot
