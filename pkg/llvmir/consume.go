package llvmir

import (
	"strings"

	"github.com/triskellib/vscode/pkg/cfg"
)

// Successor is an outgoing edge produced by an instruction before it is
// attached to a block.
type Successor struct {
	To   string
	Type cfg.EdgeType
}

// Consumed is the outcome of reading one instruction starting at a line.
type Consumed struct {
	Instruction cfg.Instruction
	Successors  []Successor
	// Lines is the number of physical lines the instruction spans, at least 1.
	Lines int
	// Unterminated is set when a bracketed list ran into the end of the
	// document without its closing `]`.
	Unterminated bool
}

// Consume reads the instruction that starts at lines[i]. Switch and
// indirectbr lists continue over the following lines until a `]` is seen;
// invoke and callbr pick up a `to label ...` tail on the next line. The
// scan never reads past the end of lines.
func Consume(lines []string, i int) Consumed {
	line := StripComment(lines[i])
	src := cfg.Source{Text: line, Line: i + 1}
	form := Classify(line)

	switch form.Kind {
	case FormCondBranch:
		return Consumed{
			Instruction: &cfg.ConditionalBranch{
				Source:    src,
				Condition: form.Condition,
				IfTrue:    cfg.Label{Name: form.IfTrue},
				IfFalse:   cfg.Label{Name: form.IfFalse},
			},
			Successors: []Successor{
				{To: form.IfTrue, Type: cfg.EdgeTypeTrue},
				{To: form.IfFalse, Type: cfg.EdgeTypeFalse},
			},
			Lines: 1,
		}

	case FormUncondBranch:
		return Consumed{
			Instruction: &cfg.UnconditionalBranch{Source: src, Target: cfg.Label{Name: form.Target}},
			Successors:  []Successor{{To: form.Target, Type: cfg.EdgeTypeNone}},
			Lines:       1,
		}

	case FormSwitchHeader:
		content, list, n, closed := continueList(lines, i, line, form.ListStart)
		src.Text = content

		sw := &cfg.Switch{
			Source:        src,
			Value:         form.Value,
			DefaultTarget: cfg.Label{Name: form.Default},
		}
		succs := []Successor{{To: form.Default, Type: cfg.EdgeTypeNone}}
		for _, m := range switchCaseRe.FindAllStringSubmatch(list, -1) {
			target := NormalizeLabel(group(switchCaseRe, m, "target"))
			sw.Cases = append(sw.Cases, cfg.SwitchCase{
				Value:  group(switchCaseRe, m, "value"),
				Target: cfg.Label{Name: target},
			})
			succs = append(succs, Successor{To: target, Type: cfg.EdgeTypeNone})
		}
		return Consumed{Instruction: sw, Successors: succs, Lines: n, Unterminated: !closed}

	case FormIndirectBrHeader:
		content, list, n, closed := continueList(lines, i, line, form.ListStart)
		src.Text = content

		ibr := &cfg.IndirectBranch{Source: src, Value: form.Value}
		var succs []Successor
		for _, m := range indirectBrLabelRe.FindAllStringSubmatch(list, -1) {
			target := NormalizeLabel(group(indirectBrLabelRe, m, "target"))
			ibr.Targets = append(ibr.Targets, cfg.Label{Name: target})
			succs = append(succs, Successor{To: target, Type: cfg.EdgeTypeNone})
		}
		return Consumed{Instruction: ibr, Successors: succs, Lines: n, Unterminated: !closed}

	case FormOtherTerminator:
		n := 1
		if form.Opcode == cfg.OpInvoke || form.Opcode == cfg.OpCallBr {
			if i+1 < len(lines) && unwindTailRe.MatchString(lines[i+1]) {
				src.Text += "\n" + lines[i+1]
				n = 2
			}
		}
		return Consumed{Instruction: &cfg.Terminator{Source: src, Op: form.Opcode}, Lines: n}

	default:
		return Consumed{Instruction: &cfg.Plain{Source: src}, Lines: 1}
	}
}

// continueList gathers a bracketed list that opens on lines[i]. It returns
// the joined instruction text, the comment-free list body up to the closing
// `]`, the number of lines spanned and whether the list was closed.
func continueList(lines []string, i int, first string, start int) (content, list string, n int, closed bool) {
	content = first
	list = first[start:]
	n = 1
	for !strings.Contains(list, "]") {
		if i+n >= len(lines) {
			return content, list, n, false
		}
		raw := lines[i+n]
		content += "\n" + raw
		list += "\n" + StripComment(raw)
		n++
	}
	list = list[:strings.Index(list, "]")]
	return content, list, n, true
}
