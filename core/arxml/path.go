package arxml

import (
	"fmt"
	"strings"
)

// Path is the canonical hierarchical address of a named element, built from
// the SHORT-NAME chain of its named ancestors, e.g. "/Pkg/SubPkg/Signal".
// Paths are name-based handles: they stay valid when the node they address is
// replaced during conflict resolution.
type Path string

// Join appends a short-name segment.
func (p Path) Join(segment string) Path {
	return Path(string(p) + "/" + segment)
}

// Parent returns the path with its last segment removed; the root path
// returns "".
func (p Path) Parent() Path {
	i := strings.LastIndex(string(p), "/")
	if i <= 0 {
		return ""
	}
	return p[:i]
}

// Base returns the last segment of the path.
func (p Path) Base() string {
	i := strings.LastIndex(string(p), "/")
	if i < 0 {
		return string(p)
	}
	return string(p[i+1:])
}

// DuplicatePathError reports two elements in a single document resolving to
// the same path. It marks a malformed source document; the merge engine skips
// the document and records a warning.
type DuplicatePathError struct {
	Path Path
	Tag  string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("arxml: duplicate path %s (element %s)", e.Path, e.Tag)
}

// Entry is one indexed named element. Containers records the tags of the
// anonymous wrapper elements (AR-PACKAGES, ELEMENTS, ...) between the element
// and its nearest named ancestor, so the merge planner can rebuild the same
// wrapper chain in the output tree.
type Entry struct {
	Path       Path
	Node       *Node
	Containers []string
}

// PathIndex is the per-document Path -> Entry lookup table. Iteration order
// is the depth-first document order the index was built in; the planner
// relies on it for deterministic output ordering.
type PathIndex struct {
	order   []Path
	entries map[Path]*Entry
}

// BuildIndex walks the tree depth-first and indexes every named element by
// path. It fails with a DuplicatePathError when two elements collide on the
// same path.
func BuildIndex(root *Node) (*PathIndex, error) {
	idx := &PathIndex{entries: make(map[Path]*Entry)}
	if err := idx.walk(root, "", nil); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *PathIndex) walk(n *Node, parent Path, containers []string) error {
	for _, c := range n.Children {
		name := c.ShortName()
		if name == "" {
			// Anonymous: no segment, but remember the wrapper chain for
			// any named elements further down.
			if c.HasNamedDescendant() {
				next := append(append([]string(nil), containers...), c.Tag)
				if err := idx.walk(c, parent, next); err != nil {
					return err
				}
			}
			continue
		}

		path := parent.Join(name)
		if _, exists := idx.entries[path]; exists {
			return &DuplicatePathError{Path: path, Tag: c.Tag}
		}
		idx.order = append(idx.order, path)
		idx.entries[path] = &Entry{Path: path, Node: c, Containers: containers}

		if err := idx.walk(c, path, nil); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns all indexed paths in document order.
func (idx *PathIndex) Paths() []Path { return idx.order }

// Get returns the entry for a path, or nil.
func (idx *PathIndex) Get(p Path) *Entry { return idx.entries[p] }

// Has reports whether the path is indexed.
func (idx *PathIndex) Has(p Path) bool {
	_, ok := idx.entries[p]
	return ok
}

// Len returns the number of indexed elements.
func (idx *PathIndex) Len() int { return len(idx.order) }
