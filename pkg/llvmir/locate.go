package llvmir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoBlockAtLine is returned by Locate when the line is not inside a
// function body.
var ErrNoBlockAtLine = errors.New("no block at line")

// Location names the block a source line belongs to.
type Location struct {
	Function string `json:"function"`
	// Block is empty when the line precedes the first label of the
	// function; the caller should use the function's root block.
	Block string `json:"block,omitempty"`
}

// Locate walks backwards from the 1-based line to find the enclosing
// function and the nearest preceding label. It only reads the text, so it
// works on the same snapshot the graph was built from.
func Locate(text string, line int) (Location, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if line < 1 || line > len(lines) {
		return Location{}, fmt.Errorf("%w %d: out of range (1-%d)", ErrNoBlockAtLine, line, len(lines))
	}

	var loc Location
	for i := line - 1; i >= 0; i-- {
		form := Classify(StripComment(lines[i]))
		switch form.Kind {
		case FormDefine:
			loc.Function = form.Name
			return loc, nil
		case FormLabel:
			if loc.Block == "" {
				loc.Block = form.Name
			}
		case FormClose:
			// The closing brace itself still belongs to its function.
			if i != line-1 {
				return Location{}, fmt.Errorf("%w %d: outside of any function", ErrNoBlockAtLine, line)
			}
		}
	}
	return Location{}, fmt.Errorf("%w %d: no enclosing define", ErrNoBlockAtLine, line)
}
