package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(text string, line int) *Plain {
	return &Plain{Source: Source{Text: text, Line: line}}
}

func TestModule_NewFunctionReplacesInPlace(t *testing.T) {
	m := NewModule()
	m.NewFunction("a")
	m.NewFunction("b")

	fn, replaced := m.NewFunction("a")
	assert.True(t, replaced)
	assert.Equal(t, []string{"a", "b"}, m.Names())

	got, err := m.Function("a")
	require.NoError(t, err)
	assert.Same(t, fn, got)

	_, err = m.Function("missing")
	assert.ErrorIs(t, err, ErrFunctionNotFound)
}

func TestModule_Filter(t *testing.T) {
	m := NewModule()
	for _, name := range []string{"main", "parseHeader", "ParseBody", "emit"} {
		m.NewFunction(name)
	}

	names := func(fns []*Function) []string {
		var out []string
		for _, fn := range fns {
			out = append(out, fn.Name)
		}
		return out
	}

	assert.Equal(t, []string{"parseHeader", "ParseBody"}, names(m.Filter("PARSE")))
	assert.Len(t, m.Filter(""), 4)
	assert.Empty(t, m.Filter("zzz"))
}

func TestFunction_Blocks(t *testing.T) {
	m := NewModule()
	fn, _ := m.NewFunction("f")

	fn.NewBlock("entry")
	fn.NewBlock("exit")
	assert.Equal(t, "entry", fn.Root)

	_, replaced := fn.NewBlock("exit")
	assert.True(t, replaced)
	assert.Len(t, fn.Blocks, 2)

	_, err := fn.Block("nope")
	assert.ErrorIs(t, err, ErrBlockNotFound)

	fn.ResetEntry()
	assert.Empty(t, fn.Blocks)
	assert.False(t, fn.HasBlock("entry"))

	fn.NewBlock("start")
	assert.Equal(t, "start", fn.Root)
}

func TestBasicBlock_Append(t *testing.T) {
	bb := &BasicBlock{Name: "b"}

	require.NoError(t, bb.Append(plain("  %x = add i32 1, 2", 7)))
	require.NoError(t, bb.Append(plain("  %y = add i32 %x, 2", 8)))
	assert.False(t, bb.Terminated())
	assert.Nil(t, bb.Terminator())

	ret := &Terminator{Source: Source{Text: "  ret i32 %y", Line: 9}, Op: OpRet}
	require.NoError(t, bb.Append(ret))
	assert.True(t, bb.Terminated())
	assert.Equal(t, ret, bb.Terminator())
	assert.Equal(t, 7, bb.FirstAddress)

	err := bb.Append(plain("  unreachable", 10))
	assert.ErrorIs(t, err, ErrBlockSealed)
	assert.Len(t, bb.Instructions, 3)

	assert.Equal(t, "  %x = add i32 1, 2\n  %y = add i32 %x, 2\n  ret i32 %y", bb.Text())
}

func TestBasicBlock_EmptyHasNoAddress(t *testing.T) {
	bb := &BasicBlock{Name: "b"}
	assert.Zero(t, bb.FirstAddress)
	assert.Empty(t, bb.Text())
}

func TestFunction_Reachable(t *testing.T) {
	m := NewModule()
	fn, _ := m.NewFunction("f")

	entry, _ := fn.NewBlock("entry")
	left, _ := fn.NewBlock("left")
	right, _ := fn.NewBlock("right")
	join, _ := fn.NewBlock("join")
	fn.NewBlock("orphan")

	entry.AddEdge("left", EdgeTypeTrue)
	entry.AddEdge("right", EdgeTypeFalse)
	left.AddEdge("join", EdgeTypeNone)
	right.AddEdge("join", EdgeTypeNone)
	right.AddEdge("ghost", EdgeTypeNone)
	join.AddEdge("entry", EdgeTypeNone)

	assert.Equal(t, []string{"entry", "left", "join", "right"}, fn.Reachable())
	assert.Equal(t, Edge{From: "entry", To: "left", Type: EdgeTypeTrue}, entry.Successors[0])
}

func TestFunction_ReachableWithoutBlocks(t *testing.T) {
	fn, _ := NewModule().NewFunction("f")
	assert.Nil(t, fn.Reachable())
}

func TestTargets(t *testing.T) {
	tests := []struct {
		name string
		inst Instruction
		want []Label
	}{
		{
			"conditional",
			&ConditionalBranch{IfTrue: Label{Name: "t"}, IfFalse: Label{Name: "f"}},
			[]Label{{Name: "t"}, {Name: "f"}},
		},
		{"unconditional", &UnconditionalBranch{Target: Label{Name: "x"}}, []Label{{Name: "x"}}},
		{
			"switch",
			&Switch{DefaultTarget: Label{Name: "d"}, Cases: []SwitchCase{{Value: "1", Target: Label{Name: "a"}}}},
			[]Label{{Name: "d"}, {Name: "a"}},
		},
		{"indirectbr", &IndirectBranch{Targets: []Label{{Name: "a"}}}, []Label{{Name: "a"}}},
		{"ret", &Terminator{Op: OpRet}, nil},
		{"plain", &Plain{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Targets(tt.inst))
		})
	}
}

func TestLabel_String(t *testing.T) {
	assert.Equal(t, "%if.then", Label{Name: "if.then"}.String())
}
