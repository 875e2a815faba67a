// Package pkg provides the core libraries for Mindtree mind-map editing and
// visualization.
//
// # Overview
//
// Mindtree holds a mind map as an ordered tree with a distinguished root,
// lays it out as two branches growing left and right of the root, and
// renders the result. The pkg directory is organized into four areas:
//
//  1. Domain - the tree ([mind]), editing policy ([hierarchy], [editor]) and
//     change notification ([event])
//  2. Layout and rendering - ([layout], [geometry], [render])
//  3. Serialization - document formats ([format])
//  4. Infrastructure - ([pipeline], [cache], [storage], [config],
//     [observability])
//
// # Architecture
//
// The typical data flow through Mindtree:
//
//	node_tree / node_array / FreeMind document
//	         ↓
//	    [format] package (decode into a tree)
//	         ↓
//	    [mind] package (tree of nodes, ordering, sides)
//	         ↓
//	    [layout] package (measure + position)
//	         ↓
//	    [geometry] package (serializable snapshot)
//	         ↓
//	    [render] packages (SVG, DOT, PDF, PNG)
//
// # Quick Start
//
// Load a map and render it:
//
//	m, _ := format.ReadFile("roadmap.json")
//
//	e := layout.New(m, layout.DefaultOptions())
//	e.Measure(render.EstimateMeasurer{})
//	e.Layout()
//
//	doc := svg.Render(geometry.FromLayout(m, e))
//
// Edit through the editor to keep the layout and listeners in sync:
//
//	ed := editor.New(editor.Options{Editable: true})
//	defer ed.Close()
//	ed.Load(m)
//	ed.Subscribe(func(ev event.Event) { log.Println(ev.Type, ev.NodeID) })
//	n, _ := ed.AddNode(m.Root().ID(), "", "Next step", nil, mind.Right)
//
// # Main Packages
//
// [mind] - The tree: nodes keyed by unique id, fractional sibling ordering,
// left/right sides for the root's children, and a single selection.
//
// [hierarchy] - Per-level node type rules that restrict which children may be
// added and which colors new nodes receive.
//
// [editor] - Policy-checked edits (editable flags, depth limits, type rules),
// keyboard-style navigation, styling, and relayout after every change.
//
// [event] - A synchronous listener bus for edit, toggle and selection events.
//
// [layout] - Measures nodes and positions both branches in full or side mode.
//
// [geometry] - A JSON/BSON snapshot of a computed layout that renderers and
// clients consume without the tree.
//
// [render] - Node measurement and SVG to PDF/PNG conversion. The [svg]
// subpackage draws maps directly; [dot] emits Graphviz with pinned positions.
//
// [format] - node_tree, node_array and FreeMind codecs behind a JSON
// envelope, plus a text outline.
//
// [pipeline] - Load, layout and render orchestration with content-addressed
// caching, shared by the CLI and the HTTP server.
//
// [cache] - Artifact caches: file, memory (LRU), Redis and null.
//
// [storage] - Document stores for maps: file, memory, Redis and MongoDB.
//
// [config] - TOML configuration with XDG lookup.
//
// [observability] - Hooks for pipeline and HTTP events, with a Prometheus
// implementation in [metrics].
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//
// [mind]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/mind
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/hierarchy
// [editor]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/editor
// [event]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/event
// [layout]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/layout
// [geometry]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/geometry
// [render]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/render
// [svg]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/render/svg
// [dot]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/render/dot
// [format]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/format
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/storage
// [config]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/observability
// [metrics]: https://pkg.go.dev/github.com/matzehuels/mindtree/pkg/observability/metrics
package pkg
