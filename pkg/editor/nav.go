package editor

import "github.com/matzehuels/mindtree/pkg/mind"

// FindNodeBefore returns the sibling before id, or nil. Among the root's
// children only nodes on the same side count.
func (ed *Editor) FindNodeBefore(id string) *mind.Node {
	n, err := ed.node(id)
	if err != nil || n.IsRoot() {
		return nil
	}
	if !n.Parent().IsRoot() {
		return ed.mind.NodeBefore(id)
	}
	var prev *mind.Node
	for _, c := range n.Parent().Children() {
		if c == n {
			return prev
		}
		if c.Direction() == n.Direction() {
			prev = c
		}
	}
	return nil
}

// FindNodeAfter returns the sibling after id, or nil. Among the root's
// children only nodes on the same side count.
func (ed *Editor) FindNodeAfter(id string) *mind.Node {
	n, err := ed.node(id)
	if err != nil || n.IsRoot() {
		return nil
	}
	if !n.Parent().IsRoot() {
		return ed.mind.NodeAfter(id)
	}
	found := false
	for _, c := range n.Parent().Children() {
		if c == n {
			found = true
			continue
		}
		if found && c.Direction() == n.Direction() {
			return c
		}
	}
	return nil
}

// SelectUp moves the selection to the previous sibling, or to the last
// child of the parent's previous sibling. It returns the new selection, or
// nil when nothing moved.
func (ed *Editor) SelectUp() *mind.Node {
	sel := ed.SelectedNode()
	if sel == nil || sel.IsRoot() {
		return nil
	}
	target := ed.FindNodeBefore(sel.ID())
	if target == nil {
		if np := ed.FindNodeBefore(sel.Parent().ID()); np != nil && !np.IsLeaf() {
			kids := np.Children()
			target = kids[len(kids)-1]
		}
	}
	return ed.selectTarget(target)
}

// SelectDown moves the selection to the next sibling, or to the first child
// of the parent's next sibling.
func (ed *Editor) SelectDown() *mind.Node {
	sel := ed.SelectedNode()
	if sel == nil || sel.IsRoot() {
		return nil
	}
	target := ed.FindNodeAfter(sel.ID())
	if target == nil {
		if np := ed.FindNodeAfter(sel.Parent().ID()); np != nil && !np.IsLeaf() {
			target = np.Children()[0]
		}
	}
	return ed.selectTarget(target)
}

// SelectLeft moves the selection one step toward the left edge of the map.
func (ed *Editor) SelectLeft() *mind.Node { return ed.selectSide(mind.Left) }

// SelectRight moves the selection one step toward the right edge of the map.
func (ed *Editor) SelectRight() *mind.Node { return ed.selectSide(mind.Right) }

// selectSide steps toward side d: from the root into the middle child on
// that side, outward into a node's middle child (expanding it first), or
// inward to the parent.
func (ed *Editor) selectSide(d mind.Direction) *mind.Node {
	sel := ed.SelectedNode()
	if sel == nil {
		return nil
	}
	var target *mind.Node
	switch {
	case sel.IsRoot():
		var side []*mind.Node
		for _, c := range sel.Children() {
			if c.Direction() == d {
				side = append(side, c)
			}
		}
		target = middle(side)
	case sel.Direction() == d:
		if !sel.IsLeaf() && !sel.Expanded {
			ed.Expand(sel.ID())
		}
		target = middle(sel.Children())
	default:
		target = sel.Parent()
	}
	return ed.selectTarget(target)
}

func (ed *Editor) selectTarget(n *mind.Node) *mind.Node {
	if n == nil || !ed.SelectNode(n.ID()) {
		return nil
	}
	return n
}

func middle(nodes []*mind.Node) *mind.Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[(len(nodes)-1)/2]
}
