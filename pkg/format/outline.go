package format

import (
	"github.com/xlab/treeprint"

	"github.com/matzehuels/mindtree/pkg/mind"
)

// collapsedMark follows the label of a collapsed node with hidden children.
const collapsedMark = " [+]"

// Outline renders m as an indented text tree, one node per line, using the
// node's [mind.Node.Show] label. With all unset, the children of collapsed
// nodes are omitted and the node is marked with "[+]".
func Outline(m *mind.Mind, all bool) string {
	root := m.Root()
	if root == nil {
		return ""
	}
	tree := treeprint.NewWithRoot(root.Show())
	addOutline(tree, root, all)
	return tree.String()
}

func addOutline(tree treeprint.Tree, n *mind.Node, all bool) {
	for _, c := range n.Children() {
		label := c.Show()
		switch {
		case c.IsLeaf():
			tree.AddNode(label)
		case !c.Expanded && !all:
			tree.AddNode(label + collapsedMark)
		default:
			addOutline(tree.AddBranch(label), c, all)
		}
	}
}
