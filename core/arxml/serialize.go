package arxml

import (
	"encoding/xml"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Serialize renders a Node tree as indented ARXML text. Output is
// deterministic: attribute order and child order are emitted exactly as held
// in the tree, so structurally equal trees serialize byte-identically.
func Serialize(root *Node) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	writeNode(&b, root, 0)
	b.WriteString("\n")
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString("<")
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		b.WriteString(" ")
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(escape(a.Value))
		b.WriteString(`"`)
	}

	if len(n.Children) == 0 && n.Text == "" {
		b.WriteString("/>")
		return
	}

	b.WriteString(">")

	if len(n.Children) == 0 {
		b.WriteString(escape(n.Text))
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteString(">")
		return
	}

	// Mixed content is not produced by the merge engine; text before
	// children is kept on its own line to stay lossless anyway.
	if n.Text != "" {
		b.WriteString("\n")
		b.WriteString(strings.Repeat("  ", depth+1))
		b.WriteString(escape(n.Text))
	}
	for _, c := range n.Children {
		b.WriteString("\n")
		writeNode(b, c, depth+1)
	}
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteString(">")
}

func escape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
