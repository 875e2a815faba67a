package layout

import (
	"math"

	"github.com/matzehuels/mindtree/pkg/mind"
)

// Bounds is the layout's bounding box relative to the root center.
type Bounds struct {
	N float64 `json:"n"`
	S float64 `json:"s"`
	E float64 `json:"e"`
	W float64 `json:"w"`
}

// Direction returns the side n was laid out on. It may differ from
// n.Direction() in [ModeSide].
func (e *Engine) Direction(n *mind.Node) mind.Direction {
	if st := e.stateOf(n); st != nil {
		return st.dir
	}
	return n.Direction()
}

// OuterHeight returns the vertical space n's subtree occupies.
func (e *Engine) OuterHeight(n *mind.Node) float64 {
	if st := e.stateOf(n); st != nil {
		return st.outer
	}
	return 0
}

// LocalOffset returns n's offset relative to its parent's anchor.
func (e *Engine) LocalOffset(n *mind.Node) Point {
	if st := e.stateOf(n); st != nil {
		return st.offset
	}
	return Point{}
}

// SideHeights returns the stacked heights of the root's left and right
// branches.
func (e *Engine) SideHeights() (left, right float64) {
	return e.leftHeight, e.rightHeight
}

// Offset returns n's absolute anchor: the sum of local offsets along the
// parent chain. Results are memoized until the next layout pass touches
// n's side.
func (e *Engine) Offset(n *mind.Node) Point {
	st := e.stateOf(n)
	if st == nil {
		return Point{}
	}
	epoch := e.epochs[sideIndex(st.dir)]
	if st.absEpoch == epoch {
		return st.abs
	}
	p := st.offset
	if !n.IsRoot() {
		pp := e.Offset(n.Parent())
		p.X += pp.X
		p.Y += pp.Y
	}
	st.abs, st.absEpoch = p, epoch
	return p
}

// PointIn returns where a connector from the parent arrives at n.
func (e *Engine) PointIn(n *mind.Node) Point {
	return e.Offset(n)
}

// PointOut returns where connectors toward n's children leave n.
func (e *Engine) PointOut(n *mind.Node) Point {
	st := e.stateOf(n)
	if st == nil || n.IsRoot() {
		return Point{}
	}
	epoch := e.epochs[sideIndex(st.dir)]
	if st.outEpoch == epoch {
		return st.out
	}
	off := e.Offset(n)
	w := e.sizes[n.ID()].W
	p := Point{
		X: off.X + (w+e.opts.PSpace)*float64(st.dir),
		Y: off.Y,
	}
	st.out, st.outEpoch = p, epoch
	return p
}

// NodePoint returns the top-left corner at which n is drawn.
func (e *Engine) NodePoint(n *mind.Node) Point {
	off := e.Offset(n)
	sz := e.sizes[n.ID()]
	return Point{
		X: off.X + sz.W*float64(e.Direction(n)-1)/2,
		Y: off.Y - sz.H/2,
	}
}

// ExpanderPoint returns the top-left corner of n's expand/collapse toggle.
func (e *Engine) ExpanderPoint(n *mind.Node) Point {
	p := e.PointOut(n)
	x := p.X
	if e.Direction(n) == mind.Right {
		x -= e.opts.PSpace
	}
	return Point{X: x, Y: p.Y - math.Ceil(e.opts.PSpace/2)}
}

// Bounds returns the bounding box of the current layout. North is 0, south
// is the taller side's stacked height, and east/west cover the root and
// every node's point-out.
func (e *Engine) Bounds() Bounds {
	root := e.mind.Root()
	if root == nil {
		return Bounds{}
	}
	b := Bounds{E: e.sizes[root.ID()].W / 2}
	b.W = -b.E
	b.S = max(e.leftHeight, e.rightHeight)
	for _, n := range e.mind.Nodes() {
		p := e.PointOut(n)
		b.E = max(b.E, p.X)
		b.W = min(b.W, p.X)
	}
	return b
}

// MinSize returns the smallest canvas that fits the layout.
func (e *Engine) MinSize() Size {
	b := e.Bounds()
	return Size{W: b.E - b.W, H: b.S - b.N}
}
