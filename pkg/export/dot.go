package export

import (
	"fmt"
	"strings"

	"github.com/triskellib/vscode/pkg/cfg"
)

// DOT produces a Graphviz digraph of fn. Each node shows the block name
// followed by its instructions, left-aligned.
func DOT(fn *cfg.Function) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("digraph %s {\n", dotQuote(fn.Name)))
	sb.WriteString("  node [shape=box, fontname=\"monospace\"];\n")

	for _, bb := range fn.Blocks {
		lines := []string{bb.Name + ":"}
		for _, inst := range bb.Instructions {
			lines = append(lines, strings.Split(inst.Content(), "\n")...)
		}
		var label strings.Builder
		for _, l := range lines {
			label.WriteString(dotEscape(l))
			label.WriteString(`\l`)
		}
		sb.WriteString(fmt.Sprintf("  %s [label=\"%s\"];\n", dotQuote(bb.Name), label.String()))
	}

	for _, bb := range fn.Blocks {
		for _, e := range bb.Successors {
			attrs := ""
			switch e.Type {
			case cfg.EdgeTypeTrue:
				attrs = ` [label="T", color="darkgreen"]`
			case cfg.EdgeTypeFalse:
				attrs = ` [label="F", color="red"]`
			}
			if !fn.HasBlock(e.To) {
				attrs = ` [style="dashed"]`
			}
			sb.WriteString(fmt.Sprintf("  %s -> %s%s;\n", dotQuote(e.From), dotQuote(e.To), attrs))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func dotEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func dotQuote(s string) string {
	return `"` + dotEscape(s) + `"`
}
