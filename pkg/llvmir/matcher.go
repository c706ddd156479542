package llvmir

import "strings"

// FormKind enumerates the syntactic forms a line can take.
type FormKind int

const (
	FormEmpty FormKind = iota
	FormDefine
	FormLabel
	FormClose
	FormCondBranch
	FormUncondBranch
	FormSwitchHeader
	FormIndirectBrHeader
	FormOtherTerminator
	FormPlain
)

var formNames = [...]string{
	FormEmpty:            "empty",
	FormDefine:           "define",
	FormLabel:            "label",
	FormClose:            "close",
	FormCondBranch:       "cond-branch",
	FormUncondBranch:     "uncond-branch",
	FormSwitchHeader:     "switch",
	FormIndirectBrHeader: "indirectbr",
	FormOtherTerminator:  "terminator",
	FormPlain:            "plain",
}

func (k FormKind) String() string {
	if int(k) < len(formNames) {
		return formNames[k]
	}
	return "unknown"
}

// Form is the classification of one comment-free line. Only the fields
// relevant to Kind are set; block and function names are already
// normalized.
type Form struct {
	Kind FormKind

	// Name is the function name (FormDefine) or block name (FormLabel).
	Name string

	// Condition is the i1 operand of a conditional branch.
	Condition string
	IfTrue    string
	IfFalse   string

	// Target is the destination of an unconditional branch.
	Target string

	// Value is the switch condition or the indirectbr address.
	Value string
	// Default is the switch default destination.
	Default string
	// ListStart is the offset just past the `[` that opens a switch or
	// indirectbr list.
	ListStart int

	// Opcode is set for FormOtherTerminator.
	Opcode string
}

// Classify matches line against the known forms in priority order and
// returns the first that applies. Comments must be stripped beforehand.
func Classify(line string) Form {
	if strings.TrimSpace(line) == "" {
		return Form{Kind: FormEmpty}
	}

	if m := defineRe.FindStringSubmatch(line); m != nil {
		return Form{Kind: FormDefine, Name: NormalizeGlobal(group(defineRe, m, "funcid"))}
	}

	if m := labelRe.FindStringSubmatch(line); m != nil {
		return Form{Kind: FormLabel, Name: NormalizeLabel(group(labelRe, m, "label"))}
	}

	if closeRe.MatchString(line) {
		return Form{Kind: FormClose}
	}

	if m := condBranchRe.FindStringSubmatch(line); m != nil {
		return Form{
			Kind:      FormCondBranch,
			Condition: strings.TrimSpace(group(condBranchRe, m, "condition")),
			IfTrue:    NormalizeLabel(group(condBranchRe, m, "iftrue")),
			IfFalse:   NormalizeLabel(group(condBranchRe, m, "iffalse")),
		}
	}

	if m := uncondBranchRe.FindStringSubmatch(line); m != nil {
		return Form{Kind: FormUncondBranch, Target: NormalizeLabel(group(uncondBranchRe, m, "target"))}
	}

	if loc := switchRe.FindStringSubmatchIndex(line); loc != nil {
		m := submatches(line, loc)
		return Form{
			Kind:      FormSwitchHeader,
			Value:     strings.TrimSpace(group(switchRe, m, "value")),
			Default:   NormalizeLabel(group(switchRe, m, "default")),
			ListStart: loc[1],
		}
	}

	if loc := indirectBrRe.FindStringSubmatchIndex(line); loc != nil {
		m := submatches(line, loc)
		return Form{
			Kind:      FormIndirectBrHeader,
			Value:     strings.TrimSpace(group(indirectBrRe, m, "value")),
			ListStart: loc[1],
		}
	}

	if m := otherTerminatorRe.FindStringSubmatch(line); m != nil {
		return Form{Kind: FormOtherTerminator, Opcode: group(otherTerminatorRe, m, "opcode")}
	}

	return Form{Kind: FormPlain}
}

// submatches turns a FindStringSubmatchIndex result into strings.
func submatches(s string, loc []int) []string {
	m := make([]string, len(loc)/2)
	for i := range m {
		if loc[2*i] >= 0 {
			m[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return m
}
