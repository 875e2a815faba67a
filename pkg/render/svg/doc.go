// Package svg renders a positioned mind map as a standalone SVG document.
//
// The renderer draws from a [geometry.Layout]: connectors first, as cubic
// Bézier curves from each parent's point-out to the child's point-in, then a
// rounded rectangle and centered label per visible node, and finally the
// expand/collapse toggles. Node colors and fonts come from node data
// (background-color, foreground-color, font-size, font-weight, font-style);
// a background-image is drawn behind the label, rotated by
// background-rotation degrees.
//
// The canvas is the layout's minimum size plus a margin on every side:
//
//	doc := svg.Render(l, svg.WithMargin(100, 50), svg.WithLineColor("#555"))
//
// [geometry.Layout]: github.com/matzehuels/mindtree/pkg/geometry.Layout
package svg
