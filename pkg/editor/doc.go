// Package editor is the editing facade over a mind map: it applies
// structural edits to a [mind.Mind], enforces the editability, depth and
// hierarchy policies, keeps the [layout.Engine] current and publishes an
// [event.Event] for each change.
//
// # Usage
//
//	ed := editor.New(editor.Options{Editable: true, MaxDepth: 4, Rules: rules})
//	defer ed.Close()
//	ed.Load(m)
//	n, err := ed.AddNode("root", "", "", nil, mind.Right)
//	if errors.IsPolicy(err) {
//	    // refused by policy; the tree is unchanged
//	}
//
// Errors from edits are [errors.Error] values. Policy refusals carry
// FORBIDDEN_ADD, OVER_DEPTH or NOT_EDITABLE; tree-integrity failures carry
// the codes returned by the [mind] package.
//
// An [Editor] is not safe for concurrent use. Its [event.Bus] is.
//
// [mind.Mind]: github.com/matzehuels/mindtree/pkg/mind.Mind
// [layout.Engine]: github.com/matzehuels/mindtree/pkg/layout.Engine
// [event.Event]: github.com/matzehuels/mindtree/pkg/event.Event
// [event.Bus]: github.com/matzehuels/mindtree/pkg/event.Bus
// [errors.Error]: github.com/matzehuels/mindtree/pkg/errors.Error
// [mind]: github.com/matzehuels/mindtree/pkg/mind
package editor
