package mind

import "fmt"

// Direction is the side of the root a branch is drawn on.
type Direction int

const (
	Left   Direction = -1
	Center Direction = 0
	Right  Direction = 1
)

// String returns "left", "center" or "right".
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Center:
		return "center"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection parses "left", "right", "center" or the numeric forms
// "-1", "1", "0". Anything else resolves to [Right], the default side.
func ParseDirection(s string) Direction {
	switch s {
	case "left", "-1":
		return Left
	case "center", "0":
		return Center
	}
	return Right
}

// side normalizes a requested direction for a direct child of the root:
// left stays left, everything else becomes right.
func side(d Direction) Direction {
	if d == Left {
		return Left
	}
	return Right
}

// Node is a single entry in the mind-map tree.
//
// Topic, Data, SelectedType and Expanded are content and may be edited in
// place. Identity, structure, direction, order key and level are owned by the
// [Mind] that created the node and are read through accessors.
type Node struct {
	// Topic is the display text.
	Topic string
	// Data holds style and extension attributes (colors, fonts, images).
	// It never contains the reserved keys listed in errors.ReservedKeys.
	Data map[string]any
	// SelectedType is the hierarchy rule type, empty when no rules apply.
	SelectedType string
	// Expanded controls whether children take part in layout and visibility.
	Expanded bool

	id        string
	parent    *Node
	children  []*Node
	direction Direction
	orderKey  OrderKey
	level     int
}

// ID returns the node's immutable identifier.
func (n *Node) ID() string { return n.id }

// Parent returns the parent node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the ordered children. The slice belongs to the node and
// must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Direction returns the side this node's branch is drawn on.
func (n *Node) Direction() Direction { return n.direction }

// OrderKey returns the node's current sibling order key.
func (n *Node) OrderKey() OrderKey { return n.orderKey }

// Level returns the depth from the root (root = 1).
func (n *Node) Level() int { return n.level }

// IsRoot reports whether the node is the tree root.
func (n *Node) IsRoot() bool { return n.parent == nil }

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Show returns the label used by text renderers: the topic, prefixed by the
// bracketed type when one is set.
func (n *Node) Show() string {
	if n.SelectedType != "" {
		return fmt.Sprintf("[%s] %s", n.SelectedType, n.Topic)
	}
	return n.Topic
}

// IsAncestor reports whether ancestor is n itself or lies on n's parent chain.
func IsAncestor(ancestor, n *Node) bool {
	if ancestor == nil || n == nil {
		return false
	}
	for p := n; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// flow sets direction and level for n and its whole subtree.
func (n *Node) flow(dir Direction, level int) {
	n.direction = dir
	n.level = level
	for _, c := range n.children {
		c.flow(dir, level+1)
	}
}
