// Package dot renders a positioned mind map as Graphviz DOT.
//
// # Overview
//
// [ToDOT] emits one box per visible node, pinned at the coordinates the
// layout engine computed, and one undirected-looking edge per parent/child
// pair. Because positions are pinned, the graph is rendered with the neato
// engine, which honors pos="x,y!" instead of recomputing a hierarchy.
//
// # Usage
//
//	src := dot.ToDOT(l, dot.Options{Detailed: false})
//	svg, err := dot.RenderSVG(ctx, src)
//
// For PDF or PNG output:
//
//	pdf, err := dot.RenderPDF(ctx, src)
//	png, err := dot.RenderPNG(ctx, src, 2.0)
//
// # Options
//
//   - Detailed: node labels also list the node's data keys
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package dot
