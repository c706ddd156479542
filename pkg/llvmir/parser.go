package llvmir

import (
	"fmt"
	"strings"

	"github.com/triskellib/vscode/pkg/cfg"
)

// EntryBlock is the name given to a function's implicit, unlabeled entry
// block.
const EntryBlock = "entry"

// DiagnosticKind classifies a structural violation found while parsing.
type DiagnosticKind string

const (
	LabelOutsideFunction    DiagnosticKind = "label_outside_function"
	LabelInOpenBlock        DiagnosticKind = "label_in_open_block"
	CloseInOpenBlock        DiagnosticKind = "close_in_open_block"
	CloseOutsideFunction    DiagnosticKind = "close_outside_function"
	InstructionOutsideBlock DiagnosticKind = "instruction_outside_block"
	UnterminatedList        DiagnosticKind = "unterminated_list"
	DuplicateFunction       DiagnosticKind = "duplicate_function"
	DuplicateBlock          DiagnosticKind = "duplicate_block"
	UnclosedFunction        DiagnosticKind = "unclosed_function"
)

// Diagnostic records a malformed-input condition. Parsing always continues
// past it.
type Diagnostic struct {
	Line     int            `json:"line"` // 1-based
	Kind     DiagnosticKind `json:"kind"`
	Function string         `json:"function,omitempty"`
	Message  string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Result is the output of a parse.
type Result struct {
	Module      *cfg.Module
	Diagnostics []Diagnostic
}

// Parse builds the control flow graph of every function defined in text.
// CRLF line endings are accepted. Parse never fails; malformed input yields
// a partial graph and diagnostics.
func Parse(text string) *Result {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return ParseLines(strings.Split(text, "\n"))
}

// ParseLines is Parse over a document already split into lines.
func ParseLines(lines []string) *Result {
	p := &parser{
		lines:  lines,
		module: cfg.NewModule(),
	}
	p.run()
	return &Result{Module: p.module, Diagnostics: p.diags}
}

type parser struct {
	lines  []string
	module *cfg.Module
	diags  []Diagnostic

	fn    *cfg.Function
	block *cfg.BasicBlock

	// entry is the synthetic entry block while it can still be replaced by
	// a leading label.
	entry *cfg.BasicBlock
	// awaitBrace is set after a define header without its opening brace.
	awaitBrace bool
}

func (p *parser) run() {
	for i := 0; i < len(p.lines); i++ {
		line := StripComment(p.lines[i])
		if strings.TrimSpace(line) == "" {
			continue
		}

		if p.awaitBrace {
			p.awaitBrace = false
			if strings.TrimSpace(line) == "{" {
				continue
			}
		}

		switch form := Classify(line); form.Kind {
		case FormDefine:
			p.define(i, form.Name, line)
		case FormLabel:
			p.label(i, form.Name)
		case FormClose:
			p.close(i)
		default:
			i += p.instruction(i) - 1
		}
	}

	if p.fn != nil {
		p.report(len(p.lines), UnclosedFunction, "function %s is missing its closing brace", p.fn.Name)
	}
}

func (p *parser) define(i int, name, line string) {
	if p.fn != nil {
		p.report(i+1, UnclosedFunction, "function %s is missing its closing brace", p.fn.Name)
	}

	fn, replaced := p.module.NewFunction(name)
	p.fn = fn
	if replaced {
		p.report(i+1, DuplicateFunction, "function %s redefined, keeping the last definition", name)
	}

	p.block, _ = fn.NewBlock(EntryBlock)
	p.entry = p.block
	p.awaitBrace = !strings.HasSuffix(strings.TrimSpace(line), "{")
}

func (p *parser) label(i int, name string) {
	if p.fn == nil {
		p.report(i+1, LabelOutsideFunction, "label %s found outside of a function definition", name)
		return
	}

	if p.entry != nil && p.block == p.entry && len(p.entry.Instructions) == 0 {
		// The function starts with a labeled block: it is the real entry.
		p.fn.ResetEntry()
	} else if p.block != nil {
		p.report(i+1, LabelInOpenBlock, "label %s found before the terminator of block %s", name, p.block.Name)
	}
	p.entry = nil

	bb, replaced := p.fn.NewBlock(name)
	if replaced {
		p.report(i+1, DuplicateBlock, "block %s redefined, keeping the last definition", name)
	}
	p.block = bb
}

func (p *parser) close(i int) {
	if p.fn == nil {
		p.report(i+1, CloseOutsideFunction, "function end found outside of a function definition")
		return
	}
	if p.block != nil {
		p.report(i+1, CloseInOpenBlock, "function ended before the terminator of block %s", p.block.Name)
	}

	p.fn = nil
	p.block = nil
	p.entry = nil
}

// instruction consumes the instruction at line i and returns how many
// lines it spanned.
func (p *parser) instruction(i int) int {
	if p.fn == nil {
		// Top-level entities are not part of any graph.
		return 1
	}

	c := Consume(p.lines, i)
	if c.Unterminated {
		p.report(i+1, UnterminatedList, "%s list is missing its closing ']'", c.Instruction.Opcode())
	}

	if p.block == nil {
		p.report(i+1, InstructionOutsideBlock, "instruction found after a terminator without a label")
		return c.Lines
	}

	if err := p.block.Append(c.Instruction); err != nil {
		p.report(i+1, InstructionOutsideBlock, "%v", err)
		return c.Lines
	}
	for _, s := range c.Successors {
		p.block.AddEdge(s.To, s.Type)
	}

	if c.Instruction.Group() == cfg.GroupTerminator {
		p.block = nil
	}
	return c.Lines
}

func (p *parser) report(line int, kind DiagnosticKind, format string, args ...interface{}) {
	d := Diagnostic{
		Line:    line,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
	if p.fn != nil {
		d.Function = p.fn.Name
	}
	p.diags = append(p.diags, d)
}
