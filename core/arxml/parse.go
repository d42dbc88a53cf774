package arxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// RootTag is the required root element of every ARXML document.
const RootTag = "AUTOSAR"

// xsiNamespace is the only attribute namespace ARXML documents use in
// practice; its prefix is reconstructed on serialization.
const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// ParseError reports a document that could not be ingested: malformed XML or
// a root element other than AUTOSAR. The offending document is skipped by the
// merge engine; a ParseError never aborts a whole run.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("arxml parse: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("arxml parse: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse converts already-decoded ARXML text into a Node tree.
// Attribute order, child order and text content are preserved; namespace
// prefixes are stripped from element tags so documents with different prefix
// conventions merge cleanly.
func Parse(text string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(text))

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Reason: "malformed XML", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Tag: t.Name.Local}
			for _, a := range t.Attr {
				node.Attrs = append(node.Attrs, Attr{Name: attrName(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &ParseError{Reason: "multiple root elements"}
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &ParseError{Reason: "unbalanced end element"}
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			cur := stack[len(stack)-1]
			if cur.Text == "" {
				cur.Text = text
			} else {
				cur.Text += " " + text
			}
		}
	}

	if root == nil {
		return nil, &ParseError{Reason: "empty document"}
	}
	if root.Tag != RootTag {
		return nil, &ParseError{Reason: fmt.Sprintf("root element is %q, expected %q", root.Tag, RootTag)}
	}
	return root, nil
}

// attrName reconstructs a serializable attribute name from the decoder's
// namespace-resolved form. ARXML roots carry xmlns, xmlns:xsi and
// xsi:schemaLocation; everything else is unprefixed.
func attrName(name xml.Name) string {
	switch {
	case name.Space == "":
		return name.Local
	case name.Space == "xmlns":
		return "xmlns:" + name.Local
	case name.Space == xsiNamespace:
		return "xsi:" + name.Local
	default:
		return name.Local
	}
}
