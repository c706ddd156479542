package export

import (
	"fmt"
	"strings"

	"github.com/triskellib/vscode/pkg/cfg"
)

// armLabel is the short edge label for conditional arms.
func armLabel(t cfg.EdgeType) string {
	switch t {
	case cfg.EdgeTypeTrue:
		return "T"
	case cfg.EdgeTypeFalse:
		return "F"
	default:
		return ""
	}
}

// Mermaid produces a Mermaid graph TD diagram of fn. Blocks become nodes
// labelled with their name; successors become arrows, with T and F on the
// arms of a conditional branch. Edges to undefined blocks point at a
// placeholder node.
func Mermaid(fn *cfg.Function) string {
	// Mermaid ids must be alphanumeric.
	nodeIDs := make(map[string]string)
	getID := func(name string) string {
		if id, ok := nodeIDs[name]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", len(nodeIDs))
		nodeIDs[name] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, bb := range fn.Blocks {
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", getID(bb.Name), mermaidEscape(bb.Name)))
	}

	for _, bb := range fn.Blocks {
		for _, e := range bb.Successors {
			if !fn.HasBlock(e.To) {
				if _, ok := nodeIDs[e.To]; !ok {
					sb.WriteString(fmt.Sprintf("  %s[/\"%s?\"/]\n", getID(e.To), mermaidEscape(e.To)))
				}
			}
			if l := armLabel(e.Type); l != "" {
				sb.WriteString(fmt.Sprintf("  %s -->|%s| %s\n", getID(e.From), l, getID(e.To)))
			} else {
				sb.WriteString(fmt.Sprintf("  %s --> %s\n", getID(e.From), getID(e.To)))
			}
		}
	}

	return sb.String()
}

func mermaidEscape(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
