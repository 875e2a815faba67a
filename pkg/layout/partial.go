package layout

import (
	"time"

	"github.com/matzehuels/mindtree/pkg/mind"
	"github.com/matzehuels/mindtree/pkg/observability"
)

// PartLayout recomputes vertical offsets after n was expanded or collapsed.
//
// For the root both side lists are restacked from scratch. For any other
// node only the sibling lists on the chain from n up to the root are
// restacked, reusing cached heights elsewhere. An engine that is dirty, or
// that has never seen n, falls back to a full [Engine.Layout].
func (e *Engine) PartLayout(n *mind.Node) {
	if e.dirty || e.stateOf(n) == nil || e.mind.Root() == nil {
		e.Layout()
		return
	}
	start := time.Now()
	if n.IsRoot() {
		e.rightHeight = e.heightPass(e.right)
		e.leftHeight = e.heightPass(e.left)
		e.bumpAll()
		observability.Layout().OnLayout("partial", e.mind.Len(), time.Since(start))
		return
	}

	restacked := e.partChain(n)
	e.bump(e.state[n.ID()].dir)
	observability.Layout().OnLayout("partial", restacked, time.Since(start))
}

// partChain walks from n toward the root, restacking each parent's children
// until an outer height stops changing. It returns the number of nodes whose
// offsets were recomputed.
func (e *Engine) partChain(n *mind.Node) int {
	st := e.state[n.ID()]
	prev := st.outer
	st.outer = e.outerHeight(n, st)
	if st.outer == prev {
		return 0
	}

	restacked := 0
	for child := n; ; child = child.Parent() {
		parent := child.Parent()
		if parent.IsRoot() {
			if e.state[child.ID()].dir == mind.Right {
				e.rightHeight = e.stack(e.right)
				restacked += len(e.right)
			} else {
				e.leftHeight = e.stack(e.left)
				restacked += len(e.left)
			}
			return restacked
		}

		ps := e.state[parent.ID()]
		ps.stacked = e.stack(parent.Children())
		restacked += len(parent.Children())

		prev := ps.outer
		ps.outer = e.outerHeight(parent, ps)
		if ps.outer == prev {
			return restacked
		}
	}
}
