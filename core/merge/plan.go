package merge

import (
	"arxml-merger/core/arxml"
)

// source is one input document that survived parsing and indexing.
type source struct {
	// index is the position in the caller's input order; strategy tie-breaks
	// depend on it.
	index int
	name  string
	root  *arxml.Node
	paths *arxml.PathIndex
}

// planEntry is the planner's verdict for one union path. conflict is nil for
// additive and identical entries.
type planEntry struct {
	path       arxml.Path
	candidates []Candidate
	containers [][]string // per candidate, in candidate order
	conflict   *Conflict
}

// buildPlan computes the union of all paths across the sources in first-seen
// order and classifies each path as additive, identical or conflicting. The
// union order becomes the deterministic node order of the output.
func buildPlan(sources []*source) []*planEntry {
	var order []arxml.Path
	seen := make(map[arxml.Path]bool)
	for _, s := range sources {
		for _, p := range s.paths.Paths() {
			if !seen[p] {
				seen[p] = true
				order = append(order, p)
			}
		}
	}

	entries := make([]*planEntry, 0, len(order))
	for _, p := range order {
		e := &planEntry{path: p}
		for _, s := range sources {
			if ent := s.paths.Get(p); ent != nil {
				e.candidates = append(e.candidates, Candidate{Source: s.index, Node: ent.Node})
				e.containers = append(e.containers, ent.Containers)
			}
		}
		classify(e)
		entries = append(entries, e)
	}
	return entries
}

// classify decides additive / identical / conflicting for one entry.
// Comparison is local: tag, attributes, text and anonymous content children.
// Named descendants are separate paths and are classified on their own.
func classify(e *planEntry) {
	if len(e.candidates) < 2 {
		return
	}

	first := e.candidates[0].Node
	for _, c := range e.candidates[1:] {
		if c.Node.Tag != first.Tag {
			e.conflict = &Conflict{Path: e.path, Kind: KindTypeMismatch, Candidates: e.candidates}
			return
		}
	}
	for _, c := range e.candidates[1:] {
		if !localEqual(first, c.Node) {
			e.conflict = &Conflict{Path: e.path, Kind: KindDuplicateElement, Candidates: e.candidates}
			return
		}
	}
}

// localEqual compares two nodes without descending into named descendants.
func localEqual(a, b *arxml.Node) bool {
	if a.Tag != b.Tag || a.Text != b.Text {
		return false
	}
	if !arxml.AttrsEqual(a.Attrs, b.Attrs) {
		return false
	}
	ca, cb := contentChildren(a), contentChildren(b)
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if !ca[i].Equal(cb[i]) {
			return false
		}
	}
	return true
}

// contentChildren returns the anonymous children of n that carry no named
// descendants: plain content such as SHORT-NAME, DESC or value elements.
// Named children and structural wrappers are handled path-wise by the
// planner.
func contentChildren(n *arxml.Node) []*arxml.Node {
	var out []*arxml.Node
	for _, c := range n.Children {
		if c.ShortName() == "" && !c.HasNamedDescendant() {
			out = append(out, c)
		}
	}
	return out
}

// mergedContent concatenates the content children of all candidates in
// source order, deduplicating only on exact structural equality.
func mergedContent(candidates []Candidate) []*arxml.Node {
	var out []*arxml.Node
	for _, cand := range candidates {
		for _, c := range contentChildren(cand.Node) {
			if !containsEqual(out, c) {
				out = append(out, c.Clone())
			}
		}
	}
	return out
}

func containsEqual(nodes []*arxml.Node, n *arxml.Node) bool {
	for _, x := range nodes {
		if x.Equal(n) {
			return true
		}
	}
	return false
}
