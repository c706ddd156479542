package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/triskellib/vscode/pkg/cfg"
)

// Sizer measures the box a block is drawn in.
type Sizer interface {
	Size(bb *cfg.BasicBlock) (width, height float64)
}

// TextSizer sizes a block from its rendered text: a header line with the
// block name followed by one line per physical instruction line, in a
// monospace font.
type TextSizer struct {
	CharWidth  float64
	LineHeight float64
	Padding    float64
}

// DefaultTextSizer matches a 14px monospace editor font.
func DefaultTextSizer() TextSizer {
	return TextSizer{CharWidth: 8.4, LineHeight: 19, Padding: 8}
}

// Size implements Sizer.
func (s TextSizer) Size(bb *cfg.BasicBlock) (width, height float64) {
	lines := []string{bb.Name + ":"}
	if text := bb.Text(); text != "" {
		lines = append(lines, strings.Split(text, "\n")...)
	}

	cols := 0
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\t", "    ")
		if w := runewidth.StringWidth(line); w > cols {
			cols = w
		}
	}

	width = float64(cols)*s.CharWidth + 2*s.Padding
	height = float64(len(lines))*s.LineHeight + 2*s.Padding
	return width, height
}
