package hierarchy

import "github.com/toothbrush/confluence-tree/confluence"

// IsRoot reports whether a node sits directly under its space: no parent at all, a parent that is
// the space itself, or no parent type to go on.
func IsRoot(n *confluence.ContentNode) bool {
	return n.ParentID == "" || n.ParentType == "" || n.ParentType == "space"
}

// Roots picks the top-level entries out of a flat listing, keeping their order.
func Roots(nodes []*confluence.ContentNode) []*confluence.ContentNode {
	roots := []*confluence.ContentNode{}
	for _, n := range nodes {
		if IsRoot(n) {
			roots = append(roots, n)
		}
	}
	return roots
}

// Flatten lists every node in the forest, each one followed by its subtree.
func Flatten(forest []*confluence.ContentNode) []*confluence.ContentNode {
	flat := []*confluence.ContentNode{}
	var walk func(nodes []*confluence.ContentNode)
	walk = func(nodes []*confluence.ContentNode) {
		for _, n := range nodes {
			flat = append(flat, n)
			walk(n.Children)
		}
	}
	walk(forest)
	return flat
}

// Count returns how many nodes the forest holds, at every depth.
func Count(forest []*confluence.ContentNode) int {
	total := 0
	for _, n := range forest {
		total += 1 + Count(n.Children)
	}
	return total
}
