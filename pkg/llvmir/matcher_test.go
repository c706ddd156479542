package llvmir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Form
	}{
		{"blank", "   ", Form{Kind: FormEmpty}},
		{
			"define",
			"define dso_local i32 @main(i32 noundef %argc, ptr noundef %argv) #0 {",
			Form{Kind: FormDefine, Name: "main"},
		},
		{"define anonymous", "define internal void @0() {", Form{Kind: FormDefine, Name: "0"}},
		{"label", "for.body:", Form{Kind: FormLabel, Name: "for.body"}},
		{"numeric label", "12:", Form{Kind: FormLabel, Name: "12"}},
		{"quoted label", `"my block":`, Form{Kind: FormLabel, Name: "my block"}},
		{"close", "  }  ", Form{Kind: FormClose}},
		{
			"conditional branch",
			"  br i1 %cmp, label %if.then, label %if.else, !prof !3",
			Form{Kind: FormCondBranch, Condition: "%cmp", IfTrue: "if.then", IfFalse: "if.else"},
		},
		{
			"conditional branch on constant",
			"  br i1 true, label %1, label %2",
			Form{Kind: FormCondBranch, Condition: "true", IfTrue: "1", IfFalse: "2"},
		},
		{
			"unconditional branch",
			"  br label %for.cond, !llvm.loop !7",
			Form{Kind: FormUncondBranch, Target: "for.cond"},
		},
		{"ret", "  ret i32 0", Form{Kind: FormOtherTerminator, Opcode: "ret"}},
		{"ret void", "  ret void", Form{Kind: FormOtherTerminator, Opcode: "ret"}},
		{"unreachable", "  unreachable", Form{Kind: FormOtherTerminator, Opcode: "unreachable"}},
		{
			"invoke with result",
			"  %call = invoke i32 @f() to label %ok unwind label %bad",
			Form{Kind: FormOtherTerminator, Opcode: "invoke"},
		},
		{
			"catchswitch",
			"  %cs = catchswitch within none [label %handler] unwind to caller",
			Form{Kind: FormOtherTerminator, Opcode: "catchswitch"},
		},
		{"call whose callee looks like ret", "  %v = call i32 @return_value()", Form{Kind: FormPlain}},
		{"store", "  store i32 0, ptr %retval, align 4", Form{Kind: FormPlain}},
		{"phi", "  %r = phi i32 [ 0, %a ], [ 1, %b ]", Form{Kind: FormPlain}},
		{"indented label text is an instruction", "  entry:", Form{Kind: FormPlain}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestClassify_ListHeaders(t *testing.T) {
	t.Run("switch", func(t *testing.T) {
		line := "  switch i32 %x, label %sw.default ["
		f := Classify(line)
		assert.Equal(t, FormSwitchHeader, f.Kind)
		assert.Equal(t, "%x", f.Value)
		assert.Equal(t, "sw.default", f.Default)
		assert.Equal(t, len(line), f.ListStart)
	})

	t.Run("switch on one line", func(t *testing.T) {
		line := "  switch i8 %c, label %d [ i8 1, label %a ]"
		f := Classify(line)
		assert.Equal(t, FormSwitchHeader, f.Kind)
		assert.Equal(t, "%c", f.Value)
		assert.Equal(t, "d", f.Default)
		assert.Equal(t, " i8 1, label %a ]", line[f.ListStart:])
	})

	t.Run("indirectbr", func(t *testing.T) {
		f := Classify("  indirectbr ptr %addr, [label %a, label %b]")
		assert.Equal(t, FormIndirectBrHeader, f.Kind)
		assert.Equal(t, "%addr", f.Value)
	})

	t.Run("indirectbr with typed pointer", func(t *testing.T) {
		f := Classify("  indirectbr i8* %addr, [label %a]")
		assert.Equal(t, FormIndirectBrHeader, f.Kind)
	})
}

func TestClassify_DefineBeatsLabel(t *testing.T) {
	// A define header never reads as a label even when it contains a colon.
	f := Classify(`define void @"a:b"() {`)
	assert.Equal(t, FormDefine, f.Kind)
	assert.Equal(t, "a:b", f.Name)
}

func TestFormKind_String(t *testing.T) {
	assert.Equal(t, "switch", FormSwitchHeader.String())
	assert.Equal(t, "plain", FormPlain.String())
	assert.Equal(t, "unknown", FormKind(99).String())
}
