package layout

import "github.com/matzehuels/mindtree/pkg/mind"

// IsVisible reports whether every strict ancestor of n is expanded as of the
// last layout or toggle. The root is always visible.
func (e *Engine) IsVisible(n *mind.Node) bool {
	if n.IsRoot() {
		return true
	}
	if st := e.stateOf(n); st != nil {
		return st.visible
	}
	return true
}

// Toggle flips n between expanded and collapsed. The root is ignored.
func (e *Engine) Toggle(n *mind.Node) {
	if n.IsRoot() {
		return
	}
	if n.Expanded {
		e.Collapse(n)
	} else {
		e.Expand(n)
	}
}

// Expand expands n and relayouts its chain.
func (e *Engine) Expand(n *mind.Node) {
	n.Expanded = true
	e.PartLayout(n)
	e.setVisible(n.Children(), e.IsVisible(n))
}

// Collapse collapses n and relayouts its chain.
func (e *Engine) Collapse(n *mind.Node) {
	n.Expanded = false
	e.PartLayout(n)
	e.setVisible(n.Children(), false)
}

// ExpandAll expands every node with one layout pass. It reports whether
// anything changed.
func (e *Engine) ExpandAll() bool {
	changed := 0
	for _, n := range e.mind.Nodes() {
		if !n.Expanded {
			n.Expanded = true
			changed++
		}
	}
	return e.finishBulk(changed)
}

// CollapseAll collapses every node except the root with one layout pass. It
// reports whether anything changed.
func (e *Engine) CollapseAll() bool {
	changed := 0
	for _, n := range e.mind.Nodes() {
		if n.Expanded && !n.IsRoot() {
			n.Expanded = false
			changed++
		}
	}
	return e.finishBulk(changed)
}

// ExpandToDepth expands nodes less than depth levels below the root and
// collapses those exactly depth levels below; deeper nodes keep their state.
// Depths below 1 are ignored.
func (e *Engine) ExpandToDepth(depth int) bool {
	root := e.mind.Root()
	if depth < 1 || root == nil {
		return false
	}
	return e.finishBulk(expandToDepth(root.Children(), 1, depth))
}

func expandToDepth(nodes []*mind.Node, depth, target int) int {
	changed := 0
	for _, n := range nodes {
		switch {
		case depth < target:
			if !n.Expanded {
				n.Expanded = true
				changed++
			}
			changed += expandToDepth(n.Children(), depth+1, target)
		case depth == target:
			if n.Expanded {
				n.Expanded = false
				changed++
			}
		}
	}
	return changed
}

func (e *Engine) finishBulk(changed int) bool {
	root := e.mind.Root()
	if changed == 0 || root == nil {
		return false
	}
	e.PartLayout(root)
	e.setVisible(root.Children(), true)
	return true
}

// setVisible propagates visibility down a sibling list: a collapsed node's
// descendants are hidden regardless of visible.
func (e *Engine) setVisible(nodes []*mind.Node, visible bool) {
	for _, n := range nodes {
		if n.Expanded {
			e.setVisible(n.Children(), visible)
		} else {
			e.setVisible(n.Children(), false)
		}
		if st := e.stateOf(n); st != nil {
			st.visible = visible
		}
	}
}
