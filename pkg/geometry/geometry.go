package geometry

import (
	"encoding/json"
	"os"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/mind"
)

// =============================================================================
// Types
// =============================================================================

// Point is a position in layout space.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Bounds is the bounding box relative to the root's center.
type Bounds struct {
	N float64 `json:"n" bson:"n"`
	S float64 `json:"s" bson:"s"`
	E float64 `json:"e" bson:"e"`
	W float64 `json:"w" bson:"w"`
}

// Layout is a positioned mind map.
type Layout struct {
	Name   string  `json:"name,omitempty" bson:"name,omitempty"`
	Mode   string  `json:"mode" bson:"mode"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Bounds Bounds  `json:"bounds" bson:"bounds"`

	// ExpanderSize is the side of the square expander affordance.
	ExpanderSize float64 `json:"expander_size" bson:"expander_size"`
	Nodes        []Node  `json:"nodes" bson:"nodes"`
}

// Node is one positioned tree node. X and Y are the top-left corner of the
// node's rectangle.
type Node struct {
	ID        string `json:"id" bson:"id"`
	Parent    string `json:"parent,omitempty" bson:"parent,omitempty"`
	Topic     string `json:"topic" bson:"topic"`
	Type      string `json:"type,omitempty" bson:"type,omitempty"`
	Direction string `json:"direction" bson:"direction"`
	Level     int    `json:"level" bson:"level"`
	Visible   bool   `json:"visible" bson:"visible"`
	Expanded  bool   `json:"expanded" bson:"expanded"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	In  Point `json:"in" bson:"in"`
	Out Point `json:"out" bson:"out"`
	// Expander is set for non-root nodes with children.
	Expander *Point `json:"expander,omitempty" bson:"expander,omitempty"`

	Data map[string]any `json:"data,omitempty" bson:"data,omitempty"`
}

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.Parent == "" }

// =============================================================================
// Conversion
// =============================================================================

// FromLayout snapshots the current geometry of e, which must have been laid
// out. Nodes are listed in pre-order.
func FromLayout(m *mind.Mind, e *layout.Engine) Layout {
	b := e.Bounds()
	size := e.MinSize()
	l := Layout{
		Name:   m.Name,
		Mode:   string(e.Options().Mode),
		Width:  size.W,
		Height: size.H,
		Bounds: Bounds{N: b.N, S: b.S, E: b.E, W: b.W},

		ExpanderSize: e.Options().PSpace,
		Nodes:        make([]Node, 0, m.Len()),
	}
	m.Walk(func(n *mind.Node) bool {
		l.Nodes = append(l.Nodes, fromNode(n, e))
		return true
	})
	return l
}

func fromNode(n *mind.Node, e *layout.Engine) Node {
	sz := e.Size(n)
	at := e.NodePoint(n)
	out := Node{
		ID:        n.ID(),
		Topic:     n.Topic,
		Type:      n.SelectedType,
		Direction: e.Direction(n).String(),
		Level:     n.Level(),
		Visible:   e.IsVisible(n),
		Expanded:  n.Expanded,
		X:         at.X,
		Y:         at.Y,
		Width:     sz.W,
		Height:    sz.H,
		In:        point(e.PointIn(n)),
		Out:       point(e.PointOut(n)),
	}
	if len(n.Data) > 0 {
		out.Data = n.Data
	}
	if p := n.Parent(); p != nil {
		out.Parent = p.ID()
		if !n.IsLeaf() {
			ep := point(e.ExpanderPoint(n))
			out.Expander = &ep
		}
	}
	return out
}

func point(p layout.Point) Point { return Point{X: p.X, Y: p.Y} }

// Index maps node ids to nodes.
func (l *Layout) Index() map[string]*Node {
	idx := make(map[string]*Node, len(l.Nodes))
	for i := range l.Nodes {
		idx[l.Nodes[i].ID] = &l.Nodes[i]
	}
	return idx
}

// Root returns the root node, or nil for an empty layout.
func (l *Layout) Root() *Node {
	for i := range l.Nodes {
		if l.Nodes[i].IsRoot() {
			return &l.Nodes[i]
		}
	}
	return nil
}

// Origin returns the canvas position of the root's center for a canvas of
// width w and height h. The layout is centered horizontally between its east
// and west bounds and vertically in the canvas.
func (l *Layout) Origin(w, h float64) Point {
	return Point{X: (w - l.Bounds.E - l.Bounds.W) / 2, Y: h / 2}
}

// =============================================================================
// Serialization
// =============================================================================

// Marshal encodes l as indented JSON.
func Marshal(l Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "marshal layout")
	}
	return data, nil
}

// Unmarshal decodes and validates a layout: it must have exactly one root,
// unique node ids, known parents and a non-negative size.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks the structural invariants documented on [Unmarshal].
func (l *Layout) Validate() error {
	if l.Width < 0 || l.Height < 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "layout size %vx%v is negative", l.Width, l.Height)
	}
	if len(l.Nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "layout has no nodes")
	}
	idx := make(map[string]bool, len(l.Nodes))
	roots := 0
	for _, n := range l.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidFormat, "layout node without id")
		}
		if idx[n.ID] {
			return errors.New(errors.ErrCodeInvalidFormat, "duplicate layout node %q", n.ID)
		}
		idx[n.ID] = true
		if n.IsRoot() {
			roots++
		}
	}
	if roots != 1 {
		return errors.New(errors.ErrCodeInvalidFormat, "layout has %d roots, want 1", roots)
	}
	for _, n := range l.Nodes {
		if !n.IsRoot() && !idx[n.Parent] {
			return errors.New(errors.ErrCodeInvalidFormat, "node %q references unknown parent %q", n.ID, n.Parent)
		}
	}
	return nil
}

// WriteFile writes l to a JSON file with 0644 permissions.
func WriteFile(l Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// ReadFile reads and validates a layout JSON file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", path)
	}
	return Unmarshal(data)
}
