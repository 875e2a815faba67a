package editor

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/event"
	"github.com/matzehuels/mindtree/pkg/hierarchy"
	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/mind"
	"github.com/matzehuels/mindtree/pkg/render"
)

// DefaultTopic is the topic of nodes created without one and without a
// hierarchy type.
const DefaultTopic = "New Node"

// topicSuffix follows the type name in the default topic of typed nodes.
const topicSuffix = "的名称"

// Options configures an [Editor].
type Options struct {
	// Editable enables structural edits. A read-only editor still supports
	// selection, navigation and expand/collapse.
	Editable bool
	// RootEditable allows editing the root's topic.
	RootEditable bool
	// MaxDepth limits the tree depth. Zero means unlimited.
	MaxDepth int
	// Rules constrains child types. Nil disables hierarchy checks.
	Rules *hierarchy.Rules
	// Layout configures the layout engine.
	Layout layout.Options
	// Measurer sizes nodes. Nil uses [render.EstimateMeasurer].
	Measurer layout.Measurer
	// Bus receives events. Nil creates a private bus owned by the editor.
	Bus *event.Bus
	// NewID generates ids for nodes added without one. Nil uses uuid.
	NewID func() string
}

// Meta describes the loaded document.
type Meta struct {
	Name    string `json:"name"`
	Author  string `json:"author"`
	Version string `json:"version"`
}

// Editor applies edits to one mind map at a time.
type Editor struct {
	opts     Options
	mind     *mind.Mind
	engine   *layout.Engine
	bus      *event.Bus
	ownBus   bool
	measurer layout.Measurer
	newID    func() string
}

// New creates an editor with no map loaded.
func New(opts Options) *Editor {
	ed := &Editor{opts: opts, bus: opts.Bus, measurer: opts.Measurer, newID: opts.NewID}
	if ed.bus == nil {
		ed.bus = event.NewBus(event.DefaultBuffer)
		ed.ownBus = true
	}
	if ed.measurer == nil {
		ed.measurer = render.EstimateMeasurer{}
	}
	if ed.newID == nil {
		ed.newID = uuid.NewString
	}
	return ed
}

// Close stops the editor's private bus. A bus passed in [Options] is left
// running.
func (ed *Editor) Close() {
	if ed.ownBus {
		ed.bus.Close()
	}
}

// Load replaces the current map with m, lays it out in full and publishes a
// Show event.
func (ed *Editor) Load(m *mind.Mind) {
	ed.mind = m
	ed.engine = layout.New(m, ed.opts.Layout)
	ed.relayout()
	ed.bus.Publish(event.Event{Type: event.Show, Args: []any{m}})
}

// Mind returns the loaded map, or nil.
func (ed *Editor) Mind() *mind.Mind { return ed.mind }

// Engine returns the layout engine of the loaded map, or nil.
func (ed *Editor) Engine() *layout.Engine { return ed.engine }

// Bus returns the event bus.
func (ed *Editor) Bus() *event.Bus { return ed.bus }

// Subscribe registers a listener on the editor's bus.
func (ed *Editor) Subscribe(fn event.Listener) (unsubscribe func()) {
	return ed.bus.Subscribe(fn)
}

// Meta returns the loaded document's metadata.
func (ed *Editor) Meta() Meta {
	if ed.mind == nil {
		return Meta{}
	}
	return Meta{Name: ed.mind.Name, Author: ed.mind.Author, Version: ed.mind.Version}
}

// Depth returns the tree depth, with the root at level 1.
func (ed *Editor) Depth() int {
	if ed.mind == nil {
		return 0
	}
	return ed.mind.Depth()
}

// ===== Editability =====

// Editable reports whether structural edits are enabled.
func (ed *Editor) Editable() bool { return ed.opts.Editable }

// EnableEdit turns structural edits on.
func (ed *Editor) EnableEdit() { ed.opts.Editable = true }

// DisableEdit turns structural edits off.
func (ed *Editor) DisableEdit() { ed.opts.Editable = false }

// NodeEditable reports whether n's topic may be edited. The root is
// editable only with RootEditable.
func (ed *Editor) NodeEditable(n *mind.Node) bool {
	if !ed.opts.Editable || n == nil {
		return false
	}
	if n.IsRoot() {
		return ed.opts.RootEditable
	}
	return true
}

// EditTypes returns the hierarchy types node id may be retyped to.
func (ed *Editor) EditTypes(id string) ([]string, error) {
	n, err := ed.node(id)
	if err != nil {
		return nil, err
	}
	return ed.opts.Rules.EditTypes(n), nil
}

// ===== Structural edits =====

// AddNode creates a child of parentID. An empty id is replaced by a fresh
// uuid, an empty topic by a default derived from the node's type. dir picks
// the side for children of the root.
//
// The parent is expanded and the map relaid out. On any error the tree is
// unchanged.
func (ed *Editor) AddNode(parentID, id, topic string, data map[string]any, dir mind.Direction) (*mind.Node, error) {
	if err := ed.checkEditable(); err != nil {
		return nil, err
	}
	if err := ed.loaded(); err != nil {
		return nil, err
	}
	parent, err := ed.mind.Node(parentID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParentNotFound, err, "parent %q not found", parentID)
	}
	if err := ed.checkDepth(parent); err != nil {
		return nil, err
	}
	rule, err := ed.opts.Rules.Choose(parent, "")
	if err != nil {
		return nil, err
	}

	id, topic, data = ed.fill(id, topic, data, rule)
	n, err := ed.mind.AddNode(parentID, id, topic, data, &mind.AddOptions{
		Direction:    dir,
		SelectedType: typeName(rule),
	})
	if err != nil {
		return nil, err
	}
	parent.Expanded = true
	ed.relayout()
	ed.publishEdit(event.ActionAddNode, n.ID(), parentID, n.ID(), n.Topic, n.Data)
	return n, nil
}

// InsertNodeBefore creates a sibling immediately before anchorID.
func (ed *Editor) InsertNodeBefore(anchorID, id, topic string, data map[string]any) (*mind.Node, error) {
	return ed.insert(event.ActionInsertNodeBefore, anchorID, id, topic, data, ed.mindInsertBefore)
}

// InsertNodeAfter creates a sibling immediately after anchorID.
func (ed *Editor) InsertNodeAfter(anchorID, id, topic string, data map[string]any) (*mind.Node, error) {
	return ed.insert(event.ActionInsertNodeAfter, anchorID, id, topic, data, ed.mindInsertAfter)
}

type insertFunc func(anchorID, id, topic string, data map[string]any, selectedType string) (*mind.Node, error)

func (ed *Editor) insert(action, anchorID, id, topic string, data map[string]any, at insertFunc) (*mind.Node, error) {
	if err := ed.checkEditable(); err != nil {
		return nil, err
	}
	anchor, err := ed.node(anchorID)
	if err != nil {
		return nil, err
	}
	if anchor.IsRoot() {
		return nil, errors.New(errors.ErrCodeCannotInsertAtRoot, "cannot insert a sibling of the root")
	}
	if err := ed.checkDepth(anchor.Parent()); err != nil {
		return nil, err
	}
	rule, err := ed.opts.Rules.Choose(anchor.Parent(), "")
	if err != nil {
		return nil, err
	}

	id, topic, data = ed.fill(id, topic, data, rule)
	n, err := at(anchorID, id, topic, data, typeName(rule))
	if err != nil {
		return nil, err
	}
	ed.relayout()
	ed.publishEdit(action, n.ID(), anchorID, n.ID(), n.Topic, n.Data)
	return n, nil
}

func (ed *Editor) mindInsertBefore(anchorID, id, topic string, data map[string]any, selectedType string) (*mind.Node, error) {
	n, err := ed.mind.InsertBefore(anchorID, id, topic, data)
	if err == nil {
		n.SelectedType = selectedType
	}
	return n, err
}

func (ed *Editor) mindInsertAfter(anchorID, id, topic string, data map[string]any, selectedType string) (*mind.Node, error) {
	n, err := ed.mind.InsertAfter(anchorID, id, topic, data)
	if err == nil {
		n.SelectedType = selectedType
	}
	return n, err
}

// RemoveNode deletes id and its subtree. When the selection was inside the
// subtree it moves to the next sibling, else the previous one, else the
// parent.
func (ed *Editor) RemoveNode(id string) error {
	if err := ed.checkEditable(); err != nil {
		return err
	}
	n, err := ed.node(id)
	if err != nil {
		return err
	}
	if n.IsRoot() {
		return errors.New(errors.ErrCodeCannotRemoveRoot, "cannot remove the root")
	}

	parent := n.Parent()
	next := ed.mind.NodeAfter(id)
	if next == nil {
		next = ed.mind.NodeBefore(id)
	}
	if next == nil {
		next = parent
	}
	reselect := mind.IsAncestor(n, ed.mind.Selected())

	if err := ed.mind.RemoveNode(id); err != nil {
		return err
	}
	ed.relayout()
	ed.publishEdit(event.ActionRemoveNode, parent.ID(), id)
	if reselect {
		ed.SelectNode(next.ID())
	}
	return nil
}

// UpdateNode sets the topic and, when selectedType is non-empty, the
// hierarchy type of id. The topic must not be blank. Unchanged values are a
// no-op and publish nothing.
func (ed *Editor) UpdateNode(id, topic, selectedType string) error {
	if err := errors.ValidateTopic(topic); err != nil {
		return err
	}
	n, err := ed.node(id)
	if err != nil {
		return err
	}
	if !ed.NodeEditable(n) {
		return errors.New(errors.ErrCodeNotEditable, "node %q is not editable", id)
	}
	retype := selectedType != "" && selectedType != n.SelectedType
	if topic == n.Topic && !retype {
		return nil
	}
	if retype && ed.opts.Rules != nil {
		if !slices.Contains(ed.opts.Rules.EditTypes(n), selectedType) {
			return errors.New(errors.ErrCodeForbiddenAdd, "type %q not allowed for %q", selectedType, id)
		}
	}

	n.Topic = topic
	if retype {
		n.SelectedType = selectedType
		if rule, ok := ed.opts.Rules.Type(selectedType); ok {
			if rule.BackgroundColor != "" {
				n.Data[hierarchy.KeyBackgroundColor] = rule.BackgroundColor
			}
			if rule.Color != "" {
				n.Data[hierarchy.KeyColor] = rule.Color
			}
		}
	}
	ed.relayout()
	ed.publishEdit(event.ActionUpdateNode, id, id, topic)
	return nil
}

// MoveNode moves id under parentID (empty keeps the current parent) before
// sibling beforeID, which may also be [mind.BeforeFirst] or
// [mind.BeforeLast]. dir applies when the node lands at the top level.
func (ed *Editor) MoveNode(id, beforeID, parentID string, dir mind.Direction) error {
	if err := ed.checkEditable(); err != nil {
		return err
	}
	if err := ed.loaded(); err != nil {
		return err
	}
	if _, err := ed.mind.MoveNode(id, beforeID, parentID, dir); err != nil {
		return err
	}
	ed.relayout()
	ed.publishEdit(event.ActionMoveNode, id, id, beforeID, parentID, dir)
	return nil
}

// ===== Expand / collapse =====

// Toggle flips id between expanded and collapsed. The root is ignored.
func (ed *Editor) Toggle(id string) error {
	n, err := ed.node(id)
	if err != nil {
		return err
	}
	if n.IsRoot() {
		return nil
	}
	ed.engine.Toggle(n)
	ed.publishToggle(n)
	return nil
}

// Expand expands id.
func (ed *Editor) Expand(id string) error {
	n, err := ed.node(id)
	if err != nil {
		return err
	}
	if n.Expanded {
		return nil
	}
	ed.engine.Expand(n)
	ed.publishToggle(n)
	return nil
}

// Collapse collapses id. The root cannot be collapsed.
func (ed *Editor) Collapse(id string) error {
	n, err := ed.node(id)
	if err != nil {
		return err
	}
	if !n.Expanded || n.IsRoot() {
		return nil
	}
	ed.engine.Collapse(n)
	ed.publishToggle(n)
	return nil
}

// ExpandAll expands every node.
func (ed *Editor) ExpandAll() {
	if ed.mind != nil && ed.engine.ExpandAll() {
		ed.publishToggle(ed.mind.Root())
	}
}

// CollapseAll collapses every node but the root.
func (ed *Editor) CollapseAll() {
	if ed.mind != nil && ed.engine.CollapseAll() {
		ed.publishToggle(ed.mind.Root())
	}
}

// ExpandToDepth shows exactly depth levels below the root.
func (ed *Editor) ExpandToDepth(depth int) {
	if ed.mind != nil && ed.engine.ExpandToDepth(depth) {
		ed.publishToggle(ed.mind.Root())
	}
}

// ===== Selection =====

// SelectNode selects id if it exists and is visible, and reports whether it
// did.
func (ed *Editor) SelectNode(id string) bool {
	n, err := ed.node(id)
	if err != nil || !ed.engine.IsVisible(n) {
		return false
	}
	if err := ed.mind.Select(id); err != nil {
		return false
	}
	ed.bus.Publish(event.Event{Type: event.Select, NodeID: id})
	return true
}

// SelectedNode returns the selected node, or nil.
func (ed *Editor) SelectedNode() *mind.Node {
	if ed.mind == nil {
		return nil
	}
	return ed.mind.Selected()
}

// ClearSelection drops the selection.
func (ed *Editor) ClearSelection() {
	if ed.mind != nil {
		ed.mind.ClearSelection()
	}
}

// ===== Helpers =====

func (ed *Editor) loaded() error {
	if ed.mind == nil || ed.mind.Root() == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no mind map loaded")
	}
	return nil
}

func (ed *Editor) node(id string) (*mind.Node, error) {
	if err := ed.loaded(); err != nil {
		return nil, err
	}
	return ed.mind.Node(id)
}

func (ed *Editor) checkEditable() error {
	if !ed.opts.Editable {
		return errors.New(errors.ErrCodeNotEditable, "editing is disabled")
	}
	return nil
}

// checkDepth refuses children of nodes already at the maximum depth.
func (ed *Editor) checkDepth(parent *mind.Node) error {
	if ed.opts.MaxDepth > 0 && parent.Level() >= ed.opts.MaxDepth {
		return errors.New(errors.ErrCodeOverDepth, "node %q is at the maximum depth %d", parent.ID(), ed.opts.MaxDepth)
	}
	return nil
}

// fill supplies the generated id, default topic and rule colors. The
// caller's data map is copied, not modified.
func (ed *Editor) fill(id, topic string, data map[string]any, rule *hierarchy.Rule) (string, string, map[string]any) {
	if id == "" {
		id = ed.newID()
	}
	if topic == "" {
		topic = DefaultTopic
		if rule != nil {
			topic = rule.DisplayName + topicSuffix
		}
	}
	out := make(map[string]any, len(data)+2)
	maps.Copy(out, data)
	hierarchy.ApplyDefaults(rule, out)
	return id, topic, out
}

// relayout remeasures every node and recomputes the full layout.
func (ed *Editor) relayout() {
	ed.engine.Invalidate()
	ed.engine.Measure(ed.measurer)
	ed.engine.Layout()
}

func (ed *Editor) publishEdit(action, nodeID string, args ...any) {
	ed.bus.Publish(event.Event{Type: event.Edit, Action: action, NodeID: nodeID, Args: args})
}

func (ed *Editor) publishToggle(n *mind.Node) {
	ed.publishEdit(event.ActionToggleNode, n.ID(), n.ID(), n.Expanded)
}

func typeName(rule *hierarchy.Rule) string {
	if rule == nil {
		return ""
	}
	return rule.DisplayName
}
