// Package render draws laid-out mind maps.
//
// # Overview
//
// The renderers take the [geometry.Layout] snapshot of a positioned map and
// emit a visual document:
//
//   - Node measurement for the layout engine ([EstimateMeasurer])
//   - Hand-written SVG output (in the [svg] subpackage)
//   - Graphviz DOT output with pinned positions (in the [dot] subpackage)
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Measurement
//
// The layout engine needs node sizes before it runs. [EstimateMeasurer]
// derives them from the topic length and the node's font-size, so layouts
// are reproducible without a font rasterizer:
//
//	e := layout.New(m, layout.DefaultOptions())
//	e.Measure(render.EstimateMeasurer{})
//	e.Layout()
//	doc := svg.Render(geometry.FromLayout(m, e))
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] pipe an SVG through the external rsvg-convert tool
// (from librsvg). A missing tool is reported as UNSUPPORTED.
//
//	pdf, err := render.ToPDF(ctx, doc)
//	png, err := render.ToPNG(ctx, doc, 2.0)  // 2x scale
//
// [geometry.Layout]: github.com/matzehuels/mindtree/pkg/geometry.Layout
// [svg]: github.com/matzehuels/mindtree/pkg/render/svg
// [dot]: github.com/matzehuels/mindtree/pkg/render/dot
package render
