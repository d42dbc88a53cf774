package arxml

import "strings"

// ShortNameTag is the child element that names an ARXML element.
const ShortNameTag = "SHORT-NAME"

// Attr is a single XML attribute. Order of attributes on a Node is
// preserved from the source document.
type Attr struct {
	Name  string
	Value string
}

// Node represents one XML element in an ARXML document.
// A Node owns its children exclusively; the tree is never shared.
type Node struct {
	// Tag is the local element name with any namespace prefix stripped.
	Tag string

	// Attrs holds the element attributes in document order.
	Attrs []Attr

	// Text is the trimmed character data directly inside the element.
	Text string

	// Children holds the child elements in document order.
	Children []*Node
}

// ShortName returns the text of the node's SHORT-NAME child, or "" when the
// node is anonymous. Only direct children count; nested short names belong to
// descendants.
func (n *Node) ShortName() string {
	for _, c := range n.Children {
		if c.Tag == ShortNameTag {
			return strings.TrimSpace(c.Text)
		}
	}
	return ""
}

// Attr returns the value of the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute value, preserving position for existing names and
// appending new names at the end.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	c := &Node{
		Tag:  n.Tag,
		Text: n.Text,
	}
	if len(n.Attrs) > 0 {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	for _, child := range n.Children {
		c.Children = append(c.Children, child.Clone())
	}
	return c
}

// Child returns the first direct child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// HasNamedDescendant reports whether the subtree rooted at n contains any
// element with a SHORT-NAME child. Used to distinguish structural wrapper
// elements from plain content.
func (n *Node) HasNamedDescendant() bool {
	for _, c := range n.Children {
		if c.ShortName() != "" || c.HasNamedDescendant() {
			return true
		}
	}
	return false
}

// Equal reports deep structural equality: same tag, same attribute set,
// same text and pairwise-equal children in order.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Tag != o.Tag || n.Text != o.Text {
		return false
	}
	if !AttrsEqual(n.Attrs, o.Attrs) {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// AttrsEqual compares attributes as an unordered set; attribute order is a
// serialization detail, not semantic content.
func AttrsEqual(a, b []Attr) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if x.Name == y.Name {
				found = x.Value == y.Value
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
