// Package geometry provides the serializable form of a computed mind-map
// layout.
//
// A [Layout] is a flat, render-ready snapshot of a [layout.Engine]: one [Node]
// per tree node with its placement rectangle, connector anchors and expander
// position, plus the bounding box and canvas size. Renderers consume it
// instead of the live engine, so a layout can be cached, shipped over the
// HTTP API, or re-rendered later without the tree.
//
//	l := geometry.FromLayout(m, engine)
//	data, _ := geometry.Marshal(l)           // Layout → JSON
//	parsed, _ := geometry.Unmarshal(data)    // JSON → Layout (validated)
//
// Coordinates are in layout space: the root's center is (0, 0) and y grows
// downward. Use [Layout.Origin] to translate them onto a canvas.
//
// [layout.Engine]: github.com/matzehuels/mindtree/pkg/layout.Engine
package geometry
