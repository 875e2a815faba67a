package format

import (
	"encoding/json"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mind"
)

func decodeNodeTree(raw json.RawMessage, meta Meta) (*mind.Mind, error) {
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil || root == nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node_tree data must be a node object")
	}
	f, err := splitNode(root)
	if err != nil {
		return nil, err
	}
	m := newMind(meta)
	if _, err := m.SetRoot(f.id, f.topic, f.data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "root %q", f.id)
	}
	if err := addTreeChildren(m, f.id, f.children); err != nil {
		return nil, err
	}
	return m, nil
}

func addTreeChildren(m *mind.Mind, parentID string, children []any) error {
	for _, c := range children {
		obj, ok := c.(map[string]any)
		if !ok {
			return errors.New(errors.ErrCodeInvalidFormat, "child of %q is not an object", parentID)
		}
		f, err := splitNode(obj)
		if err != nil {
			return err
		}
		dir := mind.Right
		if f.direction == mind.Left {
			dir = mind.Left
		}
		_, err = m.AddNode(parentID, f.id, f.topic, f.data, &mind.AddOptions{
			Direction:    dir,
			Collapsed:    !f.expanded,
			SelectedType: f.selectedType,
		})
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q", f.id)
		}
		if err := addTreeChildren(m, f.id, f.children); err != nil {
			return err
		}
	}
	return nil
}

func buildTreeNode(n *mind.Node) map[string]any {
	obj := nodeObject(n)
	if kids := n.Children(); len(kids) > 0 {
		children := make([]any, len(kids))
		for i, c := range kids {
			children[i] = buildTreeNode(c)
		}
		obj[keyChildren] = children
	}
	return obj
}
