package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/blokdust/pkg/blocks"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the grid position and parameters to node labels.
	// When false, only kind and id are shown.
	Detailed bool
}

// ToDOT converts a composition to Graphviz DOT source.
func ToDOT(c *blocks.Composition, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	sorted := c.Graph.Sorted()
	for _, b := range sorted {
		attrs := fmtAttrs(b, fmtLabel(b, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(b.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, b := range sorted {
		for _, to := range b.Connections {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(b.ID), nodeID(to))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string { return "b" + strconv.Itoa(id) }

func fmtLabel(b *blocks.Block, detailed bool) string {
	head := fmt.Sprintf("%s #%d", b.Kind, b.ID)
	if !detailed {
		return head
	}

	parts := []string{fmt.Sprintf("at: %g,%g", b.Position.X, b.Position.Y)}
	for _, k := range slices.Sorted(maps.Keys(b.Params)) {
		parts = append(parts, fmt.Sprintf("%s: %g", k, b.Params[k]))
	}
	return head + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(b *blocks.Block, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch b.Role() {
	case blocks.RoleSource:
		attrs = append(attrs, "shape=ellipse", "style=filled", "fillcolor=lightgoldenrod")
	case blocks.RoleUnknown:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// in user units, so the SVG scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
