package cfg

// Instruction is one instruction of a basic block. The concrete type tells
// which terminator, if any, it is.
type Instruction interface {
	// Opcode is the mnemonic, or "" for unclassified instructions.
	Opcode() string
	// Content is the raw text; multi-line instructions keep their newlines.
	Content() string
	// Address is the 1-based source line of the first physical line.
	Address() int
	Group() Group
}

// Source locates an instruction in the document.
type Source struct {
	Text string `json:"content" msgpack:"content"`
	Line int    `json:"address" msgpack:"address"`
}

// Content returns the raw instruction text.
func (s Source) Content() string { return s.Text }

// Address returns the 1-based line of the instruction.
func (s Source) Address() int { return s.Line }

// Plain is any instruction that does not end a block.
type Plain struct {
	Source
}

func (*Plain) Opcode() string { return "" }
func (*Plain) Group() Group   { return GroupOther }

// Terminator is a recognized terminator that carries no structured
// successor data (ret, invoke, resume, unreachable, ...).
type Terminator struct {
	Source
	Op string
}

func (t *Terminator) Opcode() string { return t.Op }
func (*Terminator) Group() Group     { return GroupTerminator }

// ConditionalBranch is `br i1 <cond>, label %t, label %f`.
type ConditionalBranch struct {
	Source
	Condition string
	IfTrue    Label
	IfFalse   Label
}

func (*ConditionalBranch) Opcode() string { return OpBr }
func (*ConditionalBranch) Group() Group   { return GroupTerminator }

// UnconditionalBranch is `br label %t`.
type UnconditionalBranch struct {
	Source
	Target Label
}

func (*UnconditionalBranch) Opcode() string { return OpBr }
func (*UnconditionalBranch) Group() Group   { return GroupTerminator }

// SwitchCase is one `<type> <value>, label %target` entry of a switch.
type SwitchCase struct {
	Value  string
	Target Label
}

// Switch is `switch <ty> <value>, label %default [ cases... ]`.
// Cases keep textual order and may repeat.
type Switch struct {
	Source
	Value         string
	DefaultTarget Label
	Cases         []SwitchCase
}

func (*Switch) Opcode() string { return OpSwitch }
func (*Switch) Group() Group   { return GroupTerminator }

// IndirectBranch is `indirectbr ptr <address>, [ label %a, ... ]`.
type IndirectBranch struct {
	Source
	Value   string
	Targets []Label
}

func (*IndirectBranch) Opcode() string { return OpIndirectBr }
func (*IndirectBranch) Group() Group   { return GroupTerminator }

// Targets returns the control-flow targets named by inst, in edge order.
// Terminators without structured successor data return nil.
func Targets(inst Instruction) []Label {
	switch v := inst.(type) {
	case *ConditionalBranch:
		return []Label{v.IfTrue, v.IfFalse}
	case *UnconditionalBranch:
		return []Label{v.Target}
	case *Switch:
		labels := make([]Label, 0, len(v.Cases)+1)
		labels = append(labels, v.DefaultTarget)
		for _, c := range v.Cases {
			labels = append(labels, c.Target)
		}
		return labels
	case *IndirectBranch:
		return v.Targets
	default:
		return nil
	}
}
