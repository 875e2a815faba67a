// Package mind provides the mind-map tree: nodes, sibling ordering, and the
// [Mind] registry that owns all structural mutation.
//
// # Overview
//
// A [Mind] holds exactly one root [Node] and an id index over every node
// reachable from it. Children are owned by their parent's child slice; the
// parent pointer on each node is a plain back-reference and never owns
// anything. All structural changes go through Mind:
//
//   - [Mind.SetRoot] creates the root (level 1, direction [Center])
//   - [Mind.AddNode], [Mind.InsertBefore], [Mind.InsertAfter] create nodes
//   - [Mind.MoveNode] re-parents and reorders a subtree
//   - [Mind.RemoveNode] destroys a subtree and unregisters every id in it
//
// Operations validate their inputs before touching the tree. A returned error
// always means nothing was changed.
//
// # Sibling Order
//
// Siblings are ordered by an [OrderKey]. Inserting between two siblings uses a
// fractional key (anchor ± 0.5), and every mutation finishes with
// [Mind.Reindex], which stable-sorts the list and assigns dense keys 1..n.
// The sentinel [Last] sorts after every other key.
//
// # Direction
//
// Each direct child of the root picks a side ([Left] or [Right]); every node
// below it inherits that side. Moving a subtree re-flows the direction and
// level of every node in it.
//
// # Concurrency
//
// Mind is not safe for concurrent use. Callers that share a tree across
// goroutines must serialize access themselves.
//
// Mutations report to [observability.Tree] hooks.
//
// [observability.Tree]: github.com/matzehuels/mindtree/pkg/observability
package mind
