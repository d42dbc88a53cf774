package arxml

import "strings"

// DefaultReferencePatterns matches the reference conventions of AUTOSAR
// documents: reference elements and attributes end in -REF (e.g.
// I-SIGNAL-REF, TYPE-TREF is caught by its own suffix entry).
var DefaultReferencePatterns = []string{"-REF", "-TREF", "-IREF"}

// RefLocation says where in the owning element the reference value lives.
type RefLocation string

const (
	// RefInText marks a reference carried as element text,
	// e.g. <I-SIGNAL-REF DEST="I-SIGNAL">/Pkg/Sig</I-SIGNAL-REF>.
	RefInText RefLocation = "text"
	// RefInAttr marks a reference carried in an attribute value.
	RefInAttr RefLocation = "attribute"
)

// ReferenceEntry records one cross-reference found in a document. The target
// is held as a path string, never as a node pointer: the referenced element
// may be replaced wholesale during conflict resolution, and the entry must
// survive that.
type ReferenceEntry struct {
	// Owner is the path of the nearest named ancestor of the referencing
	// element.
	Owner Path

	// Element is the tag of the referencing element.
	Element string

	// Location says whether the target path came from text or an attribute.
	Location RefLocation

	// Attribute is the attribute name when Location is RefInAttr.
	Attribute string

	// Target is the current target path.
	Target Path

	// Unresolved is set by Resolve when the target path is absent from the
	// index the set was resolved against.
	Unresolved bool

	node *Node
}

// ReferenceSet holds every reference extracted from one tree, in document
// order.
type ReferenceSet struct {
	entries []*ReferenceEntry
}

// ScanReferences walks the tree and collects every element and attribute
// whose name matches one of the patterns (suffix match) and whose value looks
// like an absolute short-name path.
func ScanReferences(root *Node, patterns []string) *ReferenceSet {
	if len(patterns) == 0 {
		patterns = DefaultReferencePatterns
	}
	rs := &ReferenceSet{}
	rs.scan(root, "", patterns)
	return rs
}

func (rs *ReferenceSet) scan(n *Node, owner Path, patterns []string) {
	for _, c := range n.Children {
		childOwner := owner
		if name := c.ShortName(); name != "" {
			childOwner = owner.Join(name)
		}

		if matchesPattern(c.Tag, patterns) && isPathValue(c.Text) {
			rs.entries = append(rs.entries, &ReferenceEntry{
				Owner:    childOwner,
				Element:  c.Tag,
				Location: RefInText,
				Target:   Path(strings.TrimSpace(c.Text)),
				node:     c,
			})
		}
		for _, a := range c.Attrs {
			if matchesPattern(a.Name, patterns) && isPathValue(a.Value) {
				rs.entries = append(rs.entries, &ReferenceEntry{
					Owner:     childOwner,
					Element:   c.Tag,
					Location:  RefInAttr,
					Attribute: a.Name,
					Target:    Path(strings.TrimSpace(a.Value)),
					node:      c,
				})
			}
		}

		rs.scan(c, childOwner, patterns)
	}
}

// Rewrite updates every entry whose target appears in the mapping, both in
// the entry and in the underlying element, keeping tree and tracker in step.
func (rs *ReferenceSet) Rewrite(mapping map[Path]Path) {
	if len(mapping) == 0 {
		return
	}
	for _, e := range rs.entries {
		newTarget, ok := mapping[e.Target]
		if !ok {
			continue
		}
		e.Target = newTarget
		switch e.Location {
		case RefInText:
			e.node.Text = string(newTarget)
		case RefInAttr:
			e.node.SetAttr(e.Attribute, string(newTarget))
		}
	}
}

// Resolve checks every target against the index and flags entries whose
// target is missing. It returns the unresolved entries; they are reported,
// never dropped.
func (rs *ReferenceSet) Resolve(idx *PathIndex) []*ReferenceEntry {
	var unresolved []*ReferenceEntry
	for _, e := range rs.entries {
		if idx.Has(e.Target) {
			e.Unresolved = false
			continue
		}
		e.Unresolved = true
		unresolved = append(unresolved, e)
	}
	return unresolved
}

// Entries returns all collected references in document order.
func (rs *ReferenceSet) Entries() []*ReferenceEntry { return rs.entries }

// Len returns the number of collected references.
func (rs *ReferenceSet) Len() int { return len(rs.entries) }

func matchesPattern(name string, patterns []string) bool {
	for _, p := range patterns {
		if strings.HasSuffix(name, p) {
			return true
		}
	}
	return false
}

// isPathValue filters out reference-shaped elements whose value is not an
// absolute short-name path (empty DEST-only stubs and the like).
func isPathValue(v string) bool {
	v = strings.TrimSpace(v)
	return len(v) > 1 && strings.HasPrefix(v, "/")
}
