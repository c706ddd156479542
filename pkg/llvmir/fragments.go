// Package llvmir extracts control flow graphs from LLVM IR assembly text.
// It scans the document line by line, classifies every line with a fixed set
// of regular expressions and builds a cfg.Module.
package llvmir

import "regexp"

// Identifier fragments, see https://llvm.org/docs/LangRef.html#identifiers.
const (
	// named identifiers, bare or quoted
	identifierFrag = `(?:[-a-zA-Z$._][-a-zA-Z$._0-9]*|"[^"]*")`

	// anonymous identifiers
	anonymousFrag = `\d+`

	globalFrag = `@(?:` + identifierFrag + `|` + anonymousFrag + `)`
	localFrag  = `%(?:` + identifierFrag + `|` + anonymousFrag + `)`

	// label definitions carry no sigil
	labelDefFrag = `(?:` + identifierFrag + `|` + anonymousFrag + `)`

	// the value of an assignment, `%x = ` or `@x = `
	assignFrag = `(?:(?:` + localFrag + `|` + globalFrag + `)\s*=\s*)?`

	// operand tokens inside a case list
	tokenFrag = `[^\s,\[\]]+`
)

var (
	defineRe = regexp.MustCompile(
		`^define.*(?P<funcid>` + globalFrag + `)\((?P<args>.*)\)(?P<funcmeta>.*)\s*$`)

	labelRe = regexp.MustCompile(`^(?P<label>` + labelDefFrag + `):`)

	closeRe = regexp.MustCompile(`^\s*}\s*$`)

	condBranchRe = regexp.MustCompile(
		`^\s*br\s+i1\s+(?P<condition>.*)\s*,\s*label\s+(?P<iftrue>` + localFrag + `)\s*,\s*label\s+(?P<iffalse>` + localFrag + `).*`)

	uncondBranchRe = regexp.MustCompile(
		`^\s*br\s+label\s+(?P<target>` + localFrag + `).*`)

	switchRe = regexp.MustCompile(
		`^\s*switch\s+.*\s+(?P<value>.*)\s*,\s*label\s+(?P<default>` + localFrag + `)\s*\[`)

	// Accepts the opaque `ptr` type and typed pointers such as `i8*`.
	indirectBrRe = regexp.MustCompile(
		`^\s*indirectbr\s+(?:ptr|\S+\*)\s+(?P<value>.*)\s*,\s*\[`)

	otherTerminatorRe = regexp.MustCompile(
		`^\s*` + assignFrag + `(?P<opcode>ret|indirectbr|invoke|callbr|resume|catchswitch|catchret|cleanupret|unreachable)\b`)

	switchCaseRe = regexp.MustCompile(
		`(?P<type>` + tokenFrag + `)\s+(?P<value>` + tokenFrag + `)\s*,\s*label\s+(?P<target>` + localFrag + `)`)

	indirectBrLabelRe = regexp.MustCompile(`label\s+(?P<target>` + localFrag + `)\s*,?`)

	// the tail of an invoke or callbr printed on its own line
	unwindTailRe = regexp.MustCompile(`^\s*to\s+label\s+`)
)

// group returns the named capture of re in a submatch slice.
func group(re *regexp.Regexp, m []string, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return ""
	}
	return m[i]
}
