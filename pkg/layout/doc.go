// Package layout computes mind-map geometry.
//
// An [Engine] reads the topology of a [mind.Mind] together with the measured
// size of every node and derives, for each node, a layout direction, the
// height its subtree occupies (outer height), an offset relative to its
// parent, and a memoized absolute position. It never mutates topology; the
// only node field it writes is Expanded, through the toggle operations.
//
// # Algorithm
//
// A full [Engine.Layout] runs two passes. The direction pass assigns every
// direct child of the root a side (always right in [ModeSide]) which the whole
// subtree inherits. The offset pass walks each side bottom-up: siblings are
// stacked in reverse order along a running cursor, collapsed children
// contribute only their own height, and the stack is re-centered on the
// parent. Horizontal offsets push children outward from the parent's edge,
// with an extra [Options.PSpace] gap for the expander when the parent is not
// the root.
//
// # Partial Layout
//
// Expanding or collapsing a node changes only vertical offsets along the
// chain from that node to the root. [Engine.PartLayout] restacks each sibling
// list on that chain using cached outer heights, stops as soon as an
// ancestor's outer height is unchanged, and invalidates memoized positions on
// the affected side only. The result is identical to a full layout of the
// same tree.
//
// After any structural edit (add, insert, move, remove) call
// [Engine.Invalidate] or [Engine.Layout]; a partial layout on an invalidated
// engine escalates to a full one.
//
// # Sizes
//
// Sizes come from the rendering layer via [Engine.SetSize] or
// [Engine.Measure] and are kept across layouts. Nodes without a size are
// treated as zero-sized.
//
// Engine is not safe for concurrent use.
package layout
