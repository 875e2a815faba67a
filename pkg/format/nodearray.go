package format

import (
	"encoding/json"

	"github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mind"
)

func decodeNodeArray(raw json.RawMessage, meta Meta) (*mind.Mind, error) {
	var objs []map[string]any
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node_array data must be an array of nodes")
	}
	rest := make([]nodeFields, 0, len(objs))
	rootIdx := -1
	for _, obj := range objs {
		f, err := splitNode(obj)
		if err != nil {
			return nil, err
		}
		if f.isRoot && rootIdx < 0 {
			rootIdx = len(rest)
		}
		rest = append(rest, f)
	}
	if rootIdx < 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "node_array has no root node")
	}

	root := rest[rootIdx]
	rest = append(rest[:rootIdx], rest[rootIdx+1:]...)
	m := newMind(meta)
	if _, err := m.SetRoot(root.id, root.topic, root.data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "root %q", root.id)
	}
	if _, err := placeChildren(m, root.id, &rest); err != nil {
		return nil, err
	}
	return m, nil
}

// placeChildren moves every entry of rest whose parent is parentID into the
// tree, depth first, and reports how many entries it placed. The scan
// restarts whenever a recursive call placed descendants, since those may
// have unblocked earlier entries. Entries whose parent never appears stay in
// rest.
func placeChildren(m *mind.Mind, parentID string, rest *[]nodeFields) (int, error) {
	placed := 0
	for i := 0; i < len(*rest); {
		f := (*rest)[i]
		if f.parentID != parentID {
			i++
			continue
		}
		*rest = append((*rest)[:i], (*rest)[i+1:]...)
		opts := &mind.AddOptions{Collapsed: !f.expanded, SelectedType: f.selectedType}
		if f.hasDirection {
			opts.Direction = f.direction
		}
		if _, err := m.AddNode(parentID, f.id, f.topic, f.data, opts); err != nil {
			return placed, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %q", f.id)
		}
		placed++
		sub, err := placeChildren(m, f.id, rest)
		if err != nil {
			return placed, err
		}
		if sub > 0 {
			placed += sub
			i = 0
		}
	}
	return placed, nil
}

func buildArray(root *mind.Node) []map[string]any {
	var out []map[string]any
	var visit func(n *mind.Node)
	visit = func(n *mind.Node) {
		obj := nodeObject(n)
		if p := n.Parent(); p != nil {
			obj[keyParentID] = p.ID()
		} else {
			obj[keyIsRoot] = true
		}
		out = append(out, obj)
		for _, c := range n.Children() {
			visit(c)
		}
	}
	visit(root)
	return out
}
