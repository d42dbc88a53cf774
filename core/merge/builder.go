package merge

import (
	"arxml-merger/core/arxml"
)

// builder accumulates the merged tree. One node per resolved path plus every
// additive node; wrapper chains (AR-PACKAGES, ELEMENTS, ...) are recreated on
// demand and unified by tag, which is what merges two documents' package
// containers into one.
//
// Child order follows the winning candidate: when a node is placed, its
// wrapper and named children are laid out as empty placeholder nodes in the
// winner's original positions and filled in when their own paths are placed.
// This keeps a single-input merge structurally identical to its input even
// when content follows the package containers.
type builder struct {
	root  *arxml.Node
	nodes map[arxml.Path]*arxml.Node
	// slots maps a placed parent to its reserved named-child placeholders,
	// keyed by tag and short name.
	slots map[*arxml.Node]map[string]*arxml.Node
	// placeholders tracks every layout node not yet filled; the ones still
	// empty at the end are pruned.
	placeholders map[*arxml.Node]bool
}

// newBuilder seeds the output root from the first surviving source: root tag,
// attributes (namespace declarations included) and child layout come from it,
// root-level content is concatenated across all sources and structurally
// deduplicated.
func newBuilder(sources []*source) *builder {
	first := sources[0].root
	root := &arxml.Node{Tag: first.Tag, Text: first.Text}
	if len(first.Attrs) > 0 {
		root.Attrs = make([]arxml.Attr, len(first.Attrs))
		copy(root.Attrs, first.Attrs)
	}

	b := &builder{
		root:         root,
		nodes:        make(map[arxml.Path]*arxml.Node),
		slots:        make(map[*arxml.Node]map[string]*arxml.Node),
		placeholders: make(map[*arxml.Node]bool),
	}

	var rootCands []Candidate
	for _, s := range sources {
		rootCands = append(rootCands, Candidate{Source: s.index, Node: s.root})
	}
	b.seedChildren(root, first, mergedContent(rootCands))
	return b
}

// place materializes the merged node for a path under its named parent,
// recreating the winner's wrapper chain. The node's local content must
// already be decided; named children arrive later as their own paths. layout
// is the winning candidate's node and fixes the child order.
func (b *builder) place(path arxml.Path, containers []string, layout *arxml.Node, attrs []arxml.Attr, text string, content []*arxml.Node) *arxml.Node {
	parent := b.root
	if pp := path.Parent(); pp != "" {
		parent = b.nodes[pp]
	}

	for _, wrapper := range containers {
		next := parent.Child(wrapper)
		if next == nil {
			next = &arxml.Node{Tag: wrapper}
			parent.Children = append(parent.Children, next)
		}
		parent = next
	}

	node := b.claim(parent, layout.Tag, path.Base())
	if node == nil {
		node = &arxml.Node{Tag: layout.Tag}
		parent.Children = append(parent.Children, node)
	}
	node.Text = text
	if len(attrs) > 0 {
		node.Attrs = make([]arxml.Attr, len(attrs))
		copy(node.Attrs, attrs)
	}
	b.seedChildren(node, layout, content)
	b.nodes[path] = node
	return node
}

// seedChildren lays out a placed node's children in layout order: content
// slots receive the decided content items, wrapper and named children become
// placeholders filled when their own paths are placed. Content items
// contributed only by later sources go at the end.
func (b *builder) seedChildren(node, layout *arxml.Node, content []*arxml.Node) {
	next := 0
	for _, c := range layout.Children {
		if name := c.ShortName(); name != "" {
			ph := &arxml.Node{Tag: c.Tag}
			node.Children = append(node.Children, ph)
			b.reserve(node, c.Tag, name, ph)
			continue
		}
		if c.HasNamedDescendant() {
			ph := &arxml.Node{Tag: c.Tag}
			node.Children = append(node.Children, ph)
			b.placeholders[ph] = true
			continue
		}
		if next < len(content) {
			node.Children = append(node.Children, content[next])
			next++
		}
	}
	node.Children = append(node.Children, content[next:]...)
}

func (b *builder) reserve(parent *arxml.Node, tag, name string, ph *arxml.Node) {
	if b.slots[parent] == nil {
		b.slots[parent] = make(map[string]*arxml.Node)
	}
	b.slots[parent][tag+"\x00"+name] = ph
	b.placeholders[ph] = true
}

func (b *builder) claim(parent *arxml.Node, tag, name string) *arxml.Node {
	key := tag + "\x00" + name
	node := b.slots[parent][key]
	if node != nil {
		delete(b.slots[parent], key)
		delete(b.placeholders, node)
	}
	return node
}

// finish prunes layout placeholders that were never filled, which happens
// when a losing candidate's wrapper chain differs from the winner's, and
// returns the completed tree.
func (b *builder) finish() *arxml.Node {
	prunePlaceholders(b.root, b.placeholders)
	return b.root
}

func prunePlaceholders(n *arxml.Node, placeholders map[*arxml.Node]bool) {
	kept := n.Children[:0]
	for _, c := range n.Children {
		prunePlaceholders(c, placeholders)
		if placeholders[c] && len(c.Children) == 0 && len(c.Attrs) == 0 && c.Text == "" {
			continue
		}
		kept = append(kept, c)
	}
	n.Children = kept
}

// placeCandidate places a single winning candidate's local content at a path.
func (b *builder) placeCandidate(e *planEntry, winner int) *arxml.Node {
	cand := e.candidates[winner]
	content := cloneAll(contentChildren(cand.Node))
	return b.place(e.path, e.containers[winner], cand.Node, cand.Node.Attrs, cand.Node.Text, content)
}

// placeIdentical places one copy for a path all definers agree on. Content
// is concatenated and deduplicated, which for deep-equal candidates keeps
// exactly the first definition.
func (b *builder) placeIdentical(e *planEntry) *arxml.Node {
	first := e.candidates[0]
	return b.place(e.path, e.containers[0], first.Node, first.Node.Attrs, first.Node.Text, mergedContent(e.candidates))
}

// placeSynthesized places the merge_attributes result: union of attribute
// sets with the later source winning on collision, first source's text, and
// concatenated deduplicated content.
func (b *builder) placeSynthesized(e *planEntry) *arxml.Node {
	first := e.candidates[0]

	var attrs []arxml.Attr
	for _, cand := range e.candidates {
		for _, a := range cand.Node.Attrs {
			attrs = setAttr(attrs, a)
		}
	}

	return b.place(e.path, e.containers[0], first.Node, attrs, first.Node.Text, mergedContent(e.candidates))
}

func setAttr(attrs []arxml.Attr, a arxml.Attr) []arxml.Attr {
	for i := range attrs {
		if attrs[i].Name == a.Name {
			attrs[i].Value = a.Value
			return attrs
		}
	}
	return append(attrs, a)
}

func cloneAll(nodes []*arxml.Node) []*arxml.Node {
	out := make([]*arxml.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Clone())
	}
	return out
}
