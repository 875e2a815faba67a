package layout

import (
	"time"

	"github.com/matzehuels/mindtree/pkg/mind"
	"github.com/matzehuels/mindtree/pkg/observability"
)

// Size is a measured node size in pixels.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Point is a position in layout space. The root sits at (0, 0); y grows
// downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Measurer supplies node sizes before a layout.
type Measurer interface {
	Measure(n *mind.Node) Size
}

// MeasurerFunc adapts a function to [Measurer].
type MeasurerFunc func(n *mind.Node) Size

// Measure calls f(n).
func (f MeasurerFunc) Measure(n *mind.Node) Size { return f(n) }

// nodeState is the per-node layout scratch.
type nodeState struct {
	dir mind.Direction

	// outer is the vertical space the subtree occupies: the node's own
	// height, or its stacked children when expanded and taller.
	outer float64
	// stacked is the total height of the children stack, regardless of
	// whether the node is expanded.
	stacked float64
	offset  Point
	visible bool

	abs      Point
	absEpoch uint64
	out      Point
	outEpoch uint64
}

// Engine computes and caches geometry for one [mind.Mind].
type Engine struct {
	mind  *mind.Mind
	opts  Options
	sizes map[string]Size
	state map[string]*nodeState

	left, right             []*mind.Node
	leftHeight, rightHeight float64

	dirty bool
	// epochs holds one position-cache generation per side, indexed by
	// direction+1.
	epochs [3]uint64
}

// New creates an engine for m. Zero option fields take their defaults. The
// engine starts dirty; call [Engine.Layout] once sizes are known.
func New(m *mind.Mind, opts Options) *Engine {
	return &Engine{
		mind:   m,
		opts:   opts.WithDefaults(),
		sizes:  make(map[string]Size),
		state:  make(map[string]*nodeState),
		dirty:  true,
		epochs: [3]uint64{1, 1, 1},
	}
}

// Mind returns the tree this engine lays out.
func (e *Engine) Mind() *mind.Mind { return e.mind }

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// SetSize records the measured size of node id.
func (e *Engine) SetSize(id string, w, h float64) {
	e.sizes[id] = Size{W: w, H: h}
}

// Size returns the recorded size of n.
func (e *Engine) Size(n *mind.Node) Size {
	return e.sizes[n.ID()]
}

// Measure records sizes for every registered node.
func (e *Engine) Measure(ms Measurer) {
	for _, n := range e.mind.Nodes() {
		e.sizes[n.ID()] = ms.Measure(n)
	}
}

// Invalidate marks the layout stale after a structural edit.
func (e *Engine) Invalidate() { e.dirty = true }

// Dirty reports whether the engine needs a full layout.
func (e *Engine) Dirty() bool { return e.dirty }

// Layout runs the direction and offset passes over the whole tree and
// recomputes visibility.
func (e *Engine) Layout() {
	start := time.Now()
	root := e.mind.Root()
	e.state = make(map[string]*nodeState, e.mind.Len())
	e.left, e.right = nil, nil
	e.leftHeight, e.rightHeight = 0, 0
	e.pruneSizes()
	e.bumpAll()
	if root == nil {
		e.dirty = false
		return
	}

	e.layoutDirection(root)
	e.layoutOffset(root)
	e.state[root.ID()].visible = true
	e.setVisible(root.Children(), true)
	e.dirty = false

	observability.Layout().OnLayout("full", e.mind.Len(), time.Since(start))
}

func (e *Engine) pruneSizes() {
	for id := range e.sizes {
		if !e.mind.Has(id) {
			delete(e.sizes, id)
		}
	}
}

// layoutDirection assigns the root center and each top-level branch a side.
func (e *Engine) layoutDirection(root *mind.Node) {
	e.state[root.ID()] = &nodeState{dir: mind.Center}
	for _, child := range root.Children() {
		dir := mind.Right
		if e.opts.Mode != ModeSide && child.Direction() == mind.Left {
			dir = mind.Left
		}
		e.layoutDirectionSide(child, dir)
	}
}

func (e *Engine) layoutDirectionSide(n *mind.Node, dir mind.Direction) {
	e.state[n.ID()] = &nodeState{dir: dir}
	for _, child := range n.Children() {
		e.layoutDirectionSide(child, dir)
	}
}

// layoutOffset splits the root's children by side and lays out each side.
func (e *Engine) layoutOffset(root *mind.Node) {
	for _, child := range root.Children() {
		if e.state[child.ID()].dir == mind.Right {
			e.right = append(e.right, child)
		} else {
			e.left = append(e.left, child)
		}
	}
	e.leftHeight = e.layoutSubNodes(root, e.left)
	e.rightHeight = e.layoutSubNodes(root, e.right)
}

// layoutSubNodes computes both offsets for one sibling list and returns its
// stacked height.
func (e *Engine) layoutSubNodes(parent *mind.Node, nodes []*mind.Node) float64 {
	ps := e.state[parent.ID()]
	pw := e.sizes[parent.ID()].W
	for _, n := range nodes {
		st := e.state[n.ID()]
		st.stacked = e.layoutSubNodes(n, n.Children())
		st.offset.X = e.opts.HSpace*float64(st.dir) + pw*float64(ps.dir+st.dir)/2
		if !parent.IsRoot() {
			st.offset.X += e.opts.PSpace * float64(st.dir)
		}
	}
	return e.stack(nodes)
}

// stack assigns vertical offsets to one sibling list from the cached
// stacked heights and returns the list's total height.
func (e *Engine) stack(nodes []*mind.Node) float64 {
	total := 0.0
	baseY := 0.0
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		st := e.state[n.ID()]
		st.outer = e.outerHeight(n, st)
		st.offset.Y = baseY - st.outer/2
		baseY -= st.outer + e.opts.VSpace
		total += st.outer
	}
	if len(nodes) > 1 {
		total += e.opts.VSpace * float64(len(nodes)-1)
	}
	middle := total / 2
	for _, n := range nodes {
		e.state[n.ID()].offset.Y += middle
	}
	return total
}

func (e *Engine) outerHeight(n *mind.Node, st *nodeState) float64 {
	h := st.stacked
	if !n.Expanded {
		h = 0
	}
	return max(e.sizes[n.ID()].H, h)
}

// heightPass recomputes vertical offsets for a sibling list and everything
// below it, leaving horizontal offsets and directions untouched.
func (e *Engine) heightPass(nodes []*mind.Node) float64 {
	for _, n := range nodes {
		e.state[n.ID()].stacked = e.heightPass(n.Children())
	}
	return e.stack(nodes)
}

// stateOf returns the scratch for n, or nil when n was not part of the last
// full layout.
func (e *Engine) stateOf(n *mind.Node) *nodeState {
	if n == nil {
		return nil
	}
	return e.state[n.ID()]
}

func sideIndex(d mind.Direction) int { return int(d) + 1 }

func (e *Engine) bumpAll() {
	for i := range e.epochs {
		e.epochs[i]++
	}
}

func (e *Engine) bump(d mind.Direction) {
	e.epochs[sideIndex(d)]++
}
