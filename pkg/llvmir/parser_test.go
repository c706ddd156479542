package llvmir

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triskellib/vscode/pkg/cfg"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "ll", name))
	require.NoError(t, err)
	return string(data)
}

func blockNames(fn *cfg.Function) []string {
	names := make([]string, len(fn.Blocks))
	for i, bb := range fn.Blocks {
		names[i] = bb.Name
	}
	return names
}

func mustFunction(t *testing.T, m *cfg.Module, name string) *cfg.Function {
	t.Helper()
	fn, err := m.Function(name)
	require.NoError(t, err)
	return fn
}

func mustBlock(t *testing.T, fn *cfg.Function, name string) *cfg.BasicBlock {
	t.Helper()
	bb, err := fn.Block(name)
	require.NoError(t, err)
	return bb
}

func TestParse_Fixture(t *testing.T) {
	res := Parse(loadFixture(t, "factorial.ll"))

	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, []string{"factorial", "classify"}, res.Module.Names())
}

func TestParse_EntryReplacement(t *testing.T) {
	res := Parse(loadFixture(t, "factorial.ll"))
	fn := mustFunction(t, res.Module, "classify")

	assert.Equal(t, []string{"start", "zero", "one", "other", "done"}, blockNames(fn))
	assert.Equal(t, "start", fn.Root)
	assert.False(t, fn.HasBlock(EntryBlock))
}

func TestParse_EntryRetention(t *testing.T) {
	res := Parse(loadFixture(t, "factorial.ll"))
	fn := mustFunction(t, res.Module, "factorial")

	assert.Equal(t, []string{EntryBlock, "base", "recurse"}, blockNames(fn))
	assert.Equal(t, EntryBlock, fn.Root)

	entry := mustBlock(t, fn, EntryBlock)
	require.Len(t, entry.Instructions, 2)
	assert.Equal(t, "  %1 = icmp sle i32 %n, 1", entry.Instructions[0].Content())
	assert.Equal(t, 5, entry.Instructions[0].Address())
	assert.Equal(t, 5, entry.FirstAddress)
}

func TestParse_ConditionalBranchEdges(t *testing.T) {
	res := Parse("define void @f(i1 %c) {\n  br i1 %c, label %A, label %B\nA:\n  ret void\nB:\n  ret void\n}\n")
	entry := mustBlock(t, mustFunction(t, res.Module, "f"), EntryBlock)

	assert.Equal(t, []cfg.Edge{
		{From: EntryBlock, To: "A", Type: cfg.EdgeTypeTrue},
		{From: EntryBlock, To: "B", Type: cfg.EdgeTypeFalse},
	}, entry.Successors)

	br, ok := entry.Terminator().(*cfg.ConditionalBranch)
	require.True(t, ok)
	assert.Equal(t, "%c", br.Condition)
	assert.Equal(t, "A", br.IfTrue.Name)
	assert.Equal(t, "B", br.IfFalse.Name)
}

func TestParse_SwitchEdges(t *testing.T) {
	res := Parse(loadFixture(t, "factorial.ll"))
	start := mustBlock(t, mustFunction(t, res.Module, "classify"), "start")

	want := []string{"other", "zero", "one", "one"}
	require.Len(t, start.Successors, len(want))
	for i, e := range start.Successors {
		assert.Equal(t, "start", e.From)
		assert.Equal(t, want[i], e.To)
		assert.Equal(t, cfg.EdgeTypeNone, e.Type)
	}
}

func TestParse_MultiLineSwitch(t *testing.T) {
	res := Parse(loadFixture(t, "factorial.ll"))
	start := mustBlock(t, mustFunction(t, res.Module, "classify"), "start")

	require.Len(t, start.Instructions, 1)
	sw, ok := start.Instructions[0].(*cfg.Switch)
	require.True(t, ok)

	assert.Equal(t, 20, sw.Address())
	assert.Equal(t, 5, strings.Count(sw.Content(), "\n")+1)
	assert.Equal(t, "%x", sw.Value)
	assert.Equal(t, "other", sw.DefaultTarget.Name)
	assert.Equal(t, []cfg.SwitchCase{
		{Value: "0", Target: cfg.Label{Name: "zero"}},
		{Value: "1", Target: cfg.Label{Name: "one"}},
		{Value: "2", Target: cfg.Label{Name: "one"}},
	}, sw.Cases)

	// The line after the closing bracket starts a new block.
	zero := mustBlock(t, mustFunction(t, res.Module, "classify"), "zero")
	assert.Equal(t, 27, zero.FirstAddress)
}

func TestParse_SealingInvariant(t *testing.T) {
	for _, fixture := range []string{"factorial.ll", "dispatch.ll"} {
		t.Run(fixture, func(t *testing.T) {
			res := Parse(loadFixture(t, fixture))
			require.Empty(t, res.Diagnostics)

			for _, fn := range res.Module.Functions {
				for _, bb := range fn.Blocks {
					term := bb.Terminator()
					require.NotNil(t, term, "block %s.%s is not terminated", fn.Name, bb.Name)

					switch term.Opcode() {
					case cfg.OpBr, cfg.OpSwitch, cfg.OpIndirectBr:
						assert.NotEmpty(t, bb.Successors, "block %s.%s", fn.Name, bb.Name)
					default:
						assert.Empty(t, bb.Successors, "block %s.%s", fn.Name, bb.Name)
					}
				}
			}
		})
	}
}

func TestParse_IndirectBranchAndInvoke(t *testing.T) {
	res := Parse(loadFixture(t, "dispatch.ll"))
	fn := mustFunction(t, res.Module, "dispatch")

	assert.Equal(t, []string{EntryBlock, "first", "second", "lpad"}, blockNames(fn))

	entry := mustBlock(t, fn, EntryBlock)
	require.Len(t, entry.Instructions, 3)
	ibr, ok := entry.Terminator().(*cfg.IndirectBranch)
	require.True(t, ok)
	assert.Equal(t, 7, ibr.Address())
	assert.Equal(t, "%addr", ibr.Value)
	assert.Equal(t, []cfg.Label{{Name: "first"}, {Name: "second"}}, ibr.Targets)
	assert.Equal(t, []cfg.Edge{
		{From: EntryBlock, To: "first", Type: cfg.EdgeTypeNone},
		{From: EntryBlock, To: "second", Type: cfg.EdgeTypeNone},
	}, entry.Successors)

	first := mustBlock(t, fn, "first")
	require.Len(t, first.Instructions, 1)
	assert.Equal(t, cfg.OpInvoke, first.Instructions[0].Opcode())
	assert.Contains(t, first.Instructions[0].Content(), "unwind label %lpad")
	assert.Empty(t, first.Successors)

	lpad := mustBlock(t, fn, "lpad")
	assert.Equal(t, cfg.OpResume, lpad.Terminator().Opcode())
}

func TestParse_Idempotent(t *testing.T) {
	text := loadFixture(t, "factorial.ll") + loadFixture(t, "dispatch.ll")

	summarize := func(m *cfg.Module) []string {
		var out []string
		for _, fn := range m.Functions {
			out = append(out, "fn "+fn.Name+" root="+fn.Root)
			for _, bb := range fn.Blocks {
				out = append(out, "bb "+bb.Name)
				for _, inst := range bb.Instructions {
					out = append(out, strings.Join([]string{inst.Opcode(), inst.Content()}, "|"))
				}
				for _, e := range bb.Successors {
					out = append(out, e.From+"->"+e.To+":"+string(e.Type))
				}
			}
		}
		return out
	}

	first := Parse(text)
	second := Parse(text)
	assert.Equal(t, summarize(first.Module), summarize(second.Module))
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestParse_LabelNormalizationRoundTrip(t *testing.T) {
	text := `define void @"quoted fn"() {
  br label %"loop body"

"loop body":
  br label %exit

exit:
  ret void
}
`
	res := Parse(text)
	require.Empty(t, res.Diagnostics)
	fn := mustFunction(t, res.Module, "quoted fn")

	entry := mustBlock(t, fn, EntryBlock)
	require.Len(t, entry.Successors, 1)
	target := entry.Successors[0].To

	bb, err := fn.Block(target)
	require.NoError(t, err)
	assert.Equal(t, "loop body", bb.Name)
}

func TestParse_AnonymousLabels(t *testing.T) {
	text := `define i32 @f(i1 %c) {
  br i1 %c, label %2, label %3

2:
  ret i32 0

3:
  ret i32 1
}
`
	res := Parse(text)
	require.Empty(t, res.Diagnostics)
	fn := mustFunction(t, res.Module, "f")
	assert.Equal(t, []string{EntryBlock, "2", "3"}, blockNames(fn))
	assert.Equal(t, fn.Root, EntryBlock)
}

func TestParse_CRLFAndComments(t *testing.T) {
	text := "define void @f() { ; header comment\r\n" +
		"  call void @log(ptr @\"semi;colon\") ; trailing\r\n" +
		"; a full-line comment\r\n" +
		"   \t \r\n" +
		"  ret void\r\n" +
		"}\r\n"

	res := Parse(text)
	require.Empty(t, res.Diagnostics)
	entry := mustBlock(t, mustFunction(t, res.Module, "f"), EntryBlock)

	require.Len(t, entry.Instructions, 2)
	assert.Equal(t, `  call void @log(ptr @"semi;colon")`, entry.Instructions[0].Content())
	assert.Equal(t, cfg.GroupOther, entry.Instructions[0].Group())
	assert.Equal(t, 2, entry.Instructions[0].Address())
	assert.Equal(t, 5, entry.Instructions[1].Address())
}

func TestParse_Diagnostics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []DiagnosticKind
	}{
		{
			name: "label before terminator",
			text: "define void @f() {\n  %a = add i32 1, 2\nnext:\n  ret void\n}\n",
			want: []DiagnosticKind{LabelInOpenBlock},
		},
		{
			name: "close before terminator",
			text: "define void @f() {\n  %a = add i32 1, 2\n}\n",
			want: []DiagnosticKind{CloseInOpenBlock},
		},
		{
			name: "label outside function",
			text: "orphan:\n  ret void\n",
			want: []DiagnosticKind{LabelOutsideFunction},
		},
		{
			name: "close outside function",
			text: "}\n",
			want: []DiagnosticKind{CloseOutsideFunction},
		},
		{
			name: "instruction after terminator",
			text: "define void @f() {\n  ret void\n  %dead = add i32 1, 2\n}\n",
			want: []DiagnosticKind{InstructionOutsideBlock},
		},
		{
			name: "duplicate function",
			text: "define void @f() {\n  ret void\n}\ndefine void @f() {\n  unreachable\n}\n",
			want: []DiagnosticKind{DuplicateFunction},
		},
		{
			name: "duplicate block",
			text: "define void @f() {\na:\n  br label %a\na:\n  ret void\n}\n",
			want: []DiagnosticKind{DuplicateBlock},
		},
		{
			name: "missing closing brace",
			text: "define void @f() {\n  ret void\n",
			want: []DiagnosticKind{UnclosedFunction},
		},
		{
			name: "unterminated switch",
			text: "define void @f(i32 %x) {\n  switch i32 %x, label %d [\n    i32 0, label %z\n",
			want: []DiagnosticKind{UnterminatedList, UnclosedFunction},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.text)
			require.NotNil(t, res.Module)

			var got []DiagnosticKind
			for _, d := range res.Diagnostics {
				got = append(got, d.Kind)
				assert.Greater(t, d.Line, 0)
				assert.NotEmpty(t, d.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_LabelInOpenBlockKeepsInstructionsInPlace(t *testing.T) {
	res := Parse("define void @f() {\n  %a = add i32 1, 2\nnext:\n  ret void\n}\n")
	fn := mustFunction(t, res.Module, "f")

	entry := mustBlock(t, fn, EntryBlock)
	next := mustBlock(t, fn, "next")
	require.Len(t, entry.Instructions, 1)
	require.Len(t, next.Instructions, 1)
	assert.Empty(t, entry.Successors)
	assert.Equal(t, "  ret void", next.Instructions[0].Content())
}

func TestParse_DuplicateFunctionLastWins(t *testing.T) {
	res := Parse("define void @f() {\n  ret void\n}\ndefine void @g() {\n  ret void\n}\ndefine void @f() {\n  unreachable\n}\n")

	assert.Equal(t, []string{"f", "g"}, res.Module.Names())
	entry := mustBlock(t, mustFunction(t, res.Module, "f"), EntryBlock)
	assert.Equal(t, cfg.OpUnreachable, entry.Terminator().Opcode())
}

func TestParse_UnterminatedSwitchKeepsAccumulatedCases(t *testing.T) {
	res := Parse("define void @f(i32 %x) {\n  switch i32 %x, label %d [\n    i32 0, label %z\n    i32 1, label %o")
	entry := mustBlock(t, mustFunction(t, res.Module, "f"), EntryBlock)

	sw, ok := entry.Terminator().(*cfg.Switch)
	require.True(t, ok)
	assert.Len(t, sw.Cases, 2)
	assert.Len(t, entry.Successors, 3)
}

func TestParse_BraceOnNextLine(t *testing.T) {
	res := Parse("define void @f()\n{\nstart:\n  ret void\n}\n")
	require.Empty(t, res.Diagnostics)

	fn := mustFunction(t, res.Module, "f")
	assert.Equal(t, []string{"start"}, blockNames(fn))
	assert.Equal(t, "start", fn.Root)
}

func TestParse_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "\n\n", "; only a comment\n"} {
		res := Parse(text)
		assert.Empty(t, res.Module.Functions)
		assert.Empty(t, res.Diagnostics)
	}
}
