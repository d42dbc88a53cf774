package merge

import (
	"arxml-merger/core/arxml"
)

// checkUniqueness walks every parent in the merged tree and verifies no two
// children share tag+short-name. Checked exhaustively, not sampled: the
// path-keyed planner should make a violation unreachable, so finding one is
// a fatal InternalConsistencyError, not an input problem.
func checkUniqueness(root *arxml.Node) error {
	return checkUniquenessAt(root, "")
}

func checkUniquenessAt(n *arxml.Node, at arxml.Path) error {
	type key struct {
		tag  string
		name string
	}
	seen := make(map[key]bool)

	for _, c := range n.Children {
		name := c.ShortName()
		if name != "" {
			k := key{tag: c.Tag, name: name}
			if seen[k] {
				return &InternalConsistencyError{Path: at.Join(name), Tag: c.Tag}
			}
			seen[k] = true
		}

		childAt := at
		if name != "" {
			childAt = at.Join(name)
		}
		if err := checkUniquenessAt(c, childAt); err != nil {
			return err
		}
	}
	return nil
}
