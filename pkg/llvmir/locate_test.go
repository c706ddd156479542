package llvmir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	text := loadFixture(t, "factorial.ll")

	tests := []struct {
		name string
		line int
		want Location
	}{
		{"define line", 4, Location{Function: "factorial"}},
		{"implicit entry", 5, Location{Function: "factorial"}},
		{"label line", 8, Location{Function: "factorial", Block: "base"}},
		{"inside block", 13, Location{Function: "factorial", Block: "recurse"}},
		{"closing brace", 16, Location{Function: "factorial", Block: "recurse"}},
		{"switch continuation", 22, Location{Function: "classify", Block: "start"}},
		{"blank line between blocks", 25, Location{Function: "classify", Block: "start"}},
		{"last block", 37, Location{Function: "classify", Block: "done"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := Locate(text, tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc)
		})
	}
}

func TestLocate_Outside(t *testing.T) {
	text := loadFixture(t, "factorial.ll")

	for _, line := range []int{0, 1, 2, 17, 40, 1000} {
		_, err := Locate(text, line)
		assert.ErrorIs(t, err, ErrNoBlockAtLine, "line %d", line)
	}
}

func TestLocate_MatchesParsedBlock(t *testing.T) {
	text := loadFixture(t, "factorial.ll")
	res := Parse(text)

	loc, err := Locate(text, 6)
	require.NoError(t, err)

	fn := mustFunction(t, res.Module, loc.Function)
	name := loc.Block
	if name == "" {
		name = fn.Root
	}
	bb := mustBlock(t, fn, name)
	assert.Equal(t, 5, bb.FirstAddress)
}
