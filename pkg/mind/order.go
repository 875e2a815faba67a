package mind

import (
	"cmp"
	"slices"
)

// OrderKey determines sibling order. Keys are dense integers 1..n after a
// reindex, fractional while an insert is pending, and [Last] for
// "place after everything".
type OrderKey float64

// Last is the sentinel key that sorts after every non-negative key.
const Last OrderKey = -1

// Position returns an explicit key.
func Position(k float64) OrderKey { return OrderKey(k) }

// Before returns the key that sorts immediately before anchor.
func Before(anchor OrderKey) OrderKey { return anchor - 0.5 }

// After returns the key that sorts immediately after anchor.
func After(anchor OrderKey) OrderKey { return anchor + 0.5 }

// IsLast reports whether k is the [Last] sentinel.
func (k OrderKey) IsLast() bool { return k == Last }

// CompareKeys orders two keys. Non-negative keys compare numerically, the
// [Last] sentinel sorts after them, and two sentinels are equal. Any other
// negative key compares equal to everything.
func CompareKeys(a, b OrderKey) int {
	switch {
	case a >= 0 && b >= 0:
		return cmp.Compare(a, b)
	case a == Last && b == Last:
		return 0
	case a == Last:
		return 1
	case b == Last:
		return -1
	}
	return 0
}

// compareNodes orders siblings by key.
func compareNodes(a, b *Node) int {
	return CompareKeys(a.orderKey, b.orderKey)
}

// reindex stable-sorts children and assigns keys 1..n.
func reindex(children []*Node) {
	slices.SortStableFunc(children, compareNodes)
	for i, c := range children {
		c.orderKey = OrderKey(i + 1)
	}
}
