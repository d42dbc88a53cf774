package report

import (
	"fmt"
	"strings"

	"arxml-merger/core/arxml"
	"arxml-merger/core/utils"
)

// SignalInfo describes one I-SIGNAL or I-SIGNAL-GROUP found in a document.
type SignalInfo struct {
	Name        string `json:"name"`
	SourceFile  string `json:"source_file"`
	DataType    string `json:"data_type,omitempty"`
	Length      int    `json:"length,omitempty"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
}

// InterfaceInfo describes one port interface found in a document.
type InterfaceInfo struct {
	Name          string   `json:"name"`
	SourceFile    string   `json:"source_file"`
	InterfaceType string   `json:"interface_type"`
	Signals       []string `json:"signals,omitempty"`
	Operations    []string `json:"operations,omitempty"`
	Path          string   `json:"path"`
}

// Inventory is the signal and interface inventory of one tree.
type Inventory struct {
	Signals    []SignalInfo    `json:"signals"`
	Interfaces []InterfaceInfo `json:"interfaces"`
}

const signalGroupType = "SIGNAL_GROUP"

var interfaceTags = map[string]bool{
	"SENDER-RECEIVER-INTERFACE": true,
	"CLIENT-SERVER-INTERFACE":   true,
}

// ScanInventory walks a path index and collects every signal, signal group
// and port interface. Paths in the result are real short-name paths, so
// inventory lines can be matched against resolution log entries.
func ScanInventory(idx *arxml.PathIndex, sourceFile string) *Inventory {
	inv := &Inventory{}

	for _, p := range idx.Paths() {
		entry := idx.Get(p)
		node := entry.Node

		switch {
		case node.Tag == "I-SIGNAL":
			inv.Signals = append(inv.Signals, SignalInfo{
				Name:        node.ShortName(),
				SourceFile:  sourceFile,
				DataType:    refBase(findText(node, "TYPE-TREF")),
				Length:      utils.TextToInt(findText(node, "LENGTH"), 0),
				Description: description(node),
				Path:        string(p),
			})

		case node.Tag == "I-SIGNAL-GROUP":
			members := refBases(collectTexts(node, "I-SIGNAL-REF"))
			inv.Signals = append(inv.Signals, SignalInfo{
				Name:        node.ShortName(),
				SourceFile:  sourceFile,
				DataType:    signalGroupType,
				Length:      len(members),
				Description: fmt.Sprintf("signal group with %d signals: %s", len(members), strings.Join(members, ", ")),
				Path:        string(p),
			})

		case interfaceTags[node.Tag]:
			inv.Interfaces = append(inv.Interfaces, InterfaceInfo{
				Name:          node.ShortName(),
				SourceFile:    sourceFile,
				InterfaceType: node.Tag,
				Signals:       collectShortNames(node, "DATA-ELEMENT"),
				Operations:    collectShortNames(node, "OPERATION"),
				Path:          string(p),
			})
		}
	}

	return inv
}

// InventorySummary aggregates inventory counts for the report header.
type InventorySummary struct {
	TotalSignals     int            `json:"total_signals"`
	TotalInterfaces  int            `json:"total_interfaces"`
	SignalsByType    map[string]int `json:"signals_by_type"`
	InterfacesByType map[string]int `json:"interfaces_by_type"`
}

// Summarize groups signals by data type and interfaces by interface type.
func (inv *Inventory) Summarize() InventorySummary {
	s := InventorySummary{
		TotalSignals:     len(inv.Signals),
		TotalInterfaces:  len(inv.Interfaces),
		SignalsByType:    map[string]int{},
		InterfacesByType: map[string]int{},
	}
	for _, sig := range inv.Signals {
		dt := sig.DataType
		if dt == "" {
			dt = "UNKNOWN"
		}
		s.SignalsByType[dt]++
	}
	for _, iface := range inv.Interfaces {
		s.InterfacesByType[iface.InterfaceType]++
	}
	return s
}

// findText returns the text of the first descendant with the given tag,
// depth first.
func findText(n *arxml.Node, tag string) string {
	if n.Tag == tag {
		return n.Text
	}
	for _, c := range n.Children {
		if t := findText(c, tag); t != "" {
			return t
		}
	}
	return ""
}

func collectTexts(n *arxml.Node, tag string) []string {
	var out []string
	var walk func(*arxml.Node)
	walk = func(n *arxml.Node) {
		if n.Tag == tag && n.Text != "" {
			out = append(out, n.Text)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

func collectShortNames(n *arxml.Node, tag string) []string {
	var out []string
	var walk func(*arxml.Node)
	walk = func(n *arxml.Node) {
		if n.Tag == tag {
			if name := n.ShortName(); name != "" {
				out = append(out, name)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// description extracts the first DESC/P paragraph of an element.
func description(n *arxml.Node) string {
	for _, c := range n.Children {
		if c.Tag == "DESC" {
			return strings.TrimSpace(findText(c, "P"))
		}
	}
	return ""
}

// refBase returns the last segment of a reference path value.
func refBase(ref string) string {
	if ref == "" {
		return ""
	}
	return arxml.Path(ref).Base()
}

func refBases(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, refBase(r))
	}
	return out
}
