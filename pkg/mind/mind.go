package mind

import (
	"maps"
	"slices"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/observability"
)

// Move markers accepted by [Mind.MoveNode] in place of a sibling id.
const (
	BeforeFirst = "_first_"
	BeforeLast  = "_last_"
)

// Mind is a mind-map tree: the root, the id registry and the current
// selection. The zero value is not usable; create one with [New].
//
// Mind is not safe for concurrent use.
type Mind struct {
	// Name, Author and Version describe the document the tree was loaded from.
	Name    string
	Author  string
	Version string

	root     *Node
	nodes    map[string]*Node
	selected *Node
}

// AddOptions carries the optional arguments of [Mind.AddNode].
type AddOptions struct {
	// OrderKey places the node among its siblings. The zero value places it
	// last.
	OrderKey OrderKey
	// Direction picks the side for direct children of the root. Only [Left]
	// is honoured; anything else means [Right]. Ignored below the top level.
	Direction Direction
	// Collapsed creates the node with Expanded = false.
	Collapsed bool
	// SelectedType sets the hierarchy rule type.
	SelectedType string
}

// New creates an empty tree.
func New() *Mind {
	return &Mind{nodes: make(map[string]*Node)}
}

// Root returns the root node, or nil before [Mind.SetRoot].
func (m *Mind) Root() *Node { return m.root }

// Len returns the number of registered nodes.
func (m *Mind) Len() int { return len(m.nodes) }

// Has reports whether id is registered.
func (m *Mind) Has(id string) bool {
	_, ok := m.nodes[id]
	return ok
}

// Node returns the node registered under id.
func (m *Mind) Node(id string) (*Node, error) {
	if n, ok := m.nodes[id]; ok {
		return n, nil
	}
	return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
}

// Nodes returns every registered node ordered by id.
func (m *Mind) Nodes() []*Node {
	ids := slices.Sorted(maps.Keys(m.nodes))
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = m.nodes[id]
	}
	return out
}

// Walk visits the tree in pre-order, children in sibling order. Returning
// false from fn skips the node's subtree.
func (m *Mind) Walk(fn func(n *Node) bool) {
	if m.root != nil {
		walk(m.root, fn)
	}
}

func walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		walk(c, fn)
	}
}

// Depth returns the deepest level in the tree, 0 for an empty tree.
func (m *Mind) Depth() int {
	depth := 0
	for _, n := range m.nodes {
		depth = max(depth, n.level)
	}
	return depth
}

// SetRoot creates the root node. It fails with ROOT_ALREADY_EXISTS when the
// tree already has one.
func (m *Mind) SetRoot(id, topic string, data map[string]any) (n *Node, err error) {
	defer func() { observability.Tree().OnMutation("set_root", id, err) }()

	if m.root != nil {
		return nil, errors.New(errors.ErrCodeRootAlreadyExists, "root %q already exists", m.root.id)
	}
	if err := validateNew(id, data); err != nil {
		return nil, err
	}
	n = &Node{
		id:        id,
		Topic:     topic,
		Data:      ensureData(data),
		Expanded:  true,
		direction: Center,
		level:     1,
	}
	m.root = n
	m.nodes[id] = n
	return n, nil
}

// AddNode creates a node under parentID and appends it to the parent's
// children before reindexing them. opts may be nil.
//
// The direction of a direct child of the root comes from opts; deeper nodes
// inherit their parent's direction. AddNode fails with DUPLICATE_ID if id is
// taken and PARENT_NOT_FOUND if parentID is unknown.
func (m *Mind) AddNode(parentID, id, topic string, data map[string]any, opts *AddOptions) (n *Node, err error) {
	defer func() { observability.Tree().OnMutation("add", id, err) }()
	return m.addNode(parentID, id, topic, data, opts)
}

func (m *Mind) addNode(parentID, id, topic string, data map[string]any, opts *AddOptions) (*Node, error) {
	if opts == nil {
		opts = &AddOptions{}
	}
	if err := validateNew(id, data); err != nil {
		return nil, err
	}
	if _, dup := m.nodes[id]; dup {
		return nil, errors.New(errors.ErrCodeDuplicateID, "node %q already exists", id)
	}
	parent, ok := m.nodes[parentID]
	if !ok {
		return nil, errors.New(errors.ErrCodeParentNotFound, "parent %q not found", parentID)
	}

	key := opts.OrderKey
	if key == 0 {
		key = Last
	}
	dir := parent.direction
	if parent.IsRoot() {
		dir = side(opts.Direction)
	}
	n := &Node{
		id:           id,
		Topic:        topic,
		Data:         ensureData(data),
		SelectedType: opts.SelectedType,
		Expanded:     !opts.Collapsed,
		parent:       parent,
		direction:    dir,
		orderKey:     key,
		level:        parent.level + 1,
	}
	m.nodes[id] = n
	parent.children = append(parent.children, n)
	reindex(parent.children)
	return n, nil
}

// InsertBefore creates a node immediately before anchorID among its siblings.
func (m *Mind) InsertBefore(anchorID, id, topic string, data map[string]any) (n *Node, err error) {
	defer func() { observability.Tree().OnMutation("insert_before", id, err) }()
	return m.insertAt(anchorID, id, topic, data, Before)
}

// InsertAfter creates a node immediately after anchorID among its siblings.
func (m *Mind) InsertAfter(anchorID, id, topic string, data map[string]any) (n *Node, err error) {
	defer func() { observability.Tree().OnMutation("insert_after", id, err) }()
	return m.insertAt(anchorID, id, topic, data, After)
}

func (m *Mind) insertAt(anchorID, id, topic string, data map[string]any, at func(OrderKey) OrderKey) (*Node, error) {
	anchor, err := m.Node(anchorID)
	if err != nil {
		return nil, err
	}
	if anchor.IsRoot() {
		return nil, errors.New(errors.ErrCodeCannotInsertAtRoot, "cannot insert a sibling of the root")
	}
	return m.addNode(anchor.parent.id, id, topic, data, &AddOptions{
		OrderKey:  at(anchor.orderKey),
		Direction: anchor.direction,
	})
}

// NodeBefore returns the previous sibling of id, or nil at the start of the
// list, for the root, or for an unknown id.
func (m *Mind) NodeBefore(id string) *Node {
	n, ok := m.nodes[id]
	if !ok || n.IsRoot() {
		return nil
	}
	i := slices.Index(n.parent.children, n)
	if i <= 0 {
		return nil
	}
	return n.parent.children[i-1]
}

// NodeAfter returns the next sibling of id, or nil at the end of the list,
// for the root, or for an unknown id.
func (m *Mind) NodeAfter(id string) *Node {
	n, ok := m.nodes[id]
	if !ok || n.IsRoot() {
		return nil
	}
	siblings := n.parent.children
	i := slices.Index(siblings, n)
	if i < 0 || i+1 >= len(siblings) {
		return nil
	}
	return siblings[i+1]
}

// MoveNode re-parents and reorders the subtree rooted at id.
//
// An empty parentID keeps the current parent. before is a sibling id,
// [BeforeFirst] or [BeforeLast]. A sibling id that does not share the new
// parent leaves the position alone, which for a re-parented node means
// appended at the end. dir picks the side when the new parent is the root.
//
// The direction and level of every node in the moved subtree are
// recomputed. Moving the root, or moving a node into its own subtree, fails
// with INVALID_MOVE.
func (m *Mind) MoveNode(id, before, parentID string, dir Direction) (n *Node, err error) {
	defer func() { observability.Tree().OnMutation("move", id, err) }()

	n, err = m.Node(id)
	if err != nil {
		return nil, err
	}
	if n.IsRoot() {
		return nil, errors.New(errors.ErrCodeInvalidMove, "cannot move the root")
	}
	if parentID == "" {
		parentID = n.parent.id
	}
	parent, ok := m.nodes[parentID]
	if !ok {
		return nil, errors.New(errors.ErrCodeParentNotFound, "parent %q not found", parentID)
	}
	if IsAncestor(n, parent) {
		return nil, errors.New(errors.ErrCodeInvalidMove, "cannot move %q into its own subtree", id)
	}

	if parent != n.parent {
		old := n.parent
		old.removeChild(n)
		reindex(old.children)
		n.parent = parent
		n.orderKey = Last
		parent.children = append(parent.children, n)
	}

	newDir := parent.direction
	if parent.IsRoot() {
		newDir = side(dir)
	}
	n.flow(newDir, parent.level+1)

	switch before {
	case "":
	case BeforeLast:
		n.orderKey = Last
	case BeforeFirst:
		n.orderKey = 0
	default:
		if b, ok := m.nodes[before]; ok && b != n && b.parent == parent {
			n.orderKey = Before(b.orderKey)
		}
	}
	reindex(parent.children)
	return n, nil
}

// RemoveNode destroys the subtree rooted at id and unregisters every node in
// it. The selection is cleared if it pointed into the subtree. Removing the
// root fails with CANNOT_REMOVE_ROOT.
func (m *Mind) RemoveNode(id string) (err error) {
	defer func() { observability.Tree().OnMutation("remove", id, err) }()

	n, err := m.Node(id)
	if err != nil {
		return err
	}
	if n.IsRoot() {
		return errors.New(errors.ErrCodeCannotRemoveRoot, "cannot remove the root")
	}
	parent := n.parent
	m.destroy(n)
	parent.removeChild(n)
	reindex(parent.children)
	return nil
}

// destroy unregisters n and its descendants depth first.
func (m *Mind) destroy(n *Node) {
	for i := len(n.children) - 1; i >= 0; i-- {
		m.destroy(n.children[i])
	}
	clear(n.children)
	n.children = nil
	if m.selected == n {
		m.selected = nil
	}
	delete(m.nodes, n.id)
	n.parent = nil
}

// Reindex stable-sorts the children of n by order key and assigns dense keys
// 1..n.
func (m *Mind) Reindex(n *Node) {
	reindex(n.children)
}

// Select marks id as the selected node.
func (m *Mind) Select(id string) error {
	n, err := m.Node(id)
	if err != nil {
		return err
	}
	m.selected = n
	return nil
}

// Selected returns the selected node, or nil.
func (m *Mind) Selected() *Node { return m.selected }

// ClearSelection drops the selection.
func (m *Mind) ClearSelection() { m.selected = nil }

func validateNew(id string, data map[string]any) error {
	if err := errors.ValidateNodeID(id); err != nil {
		return err
	}
	return errors.ValidateData(data)
}

func ensureData(data map[string]any) map[string]any {
	if data == nil {
		return make(map[string]any)
	}
	return data
}
