package cfg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBlockSealed is returned when appending to a block that already ends in
// a terminator.
var ErrBlockSealed = errors.New("block already terminated")

// Module is the top-level container produced by one parse. It owns its
// functions; declaration order is preserved.
type Module struct {
	Functions []*Function
	index     map[string]int
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{index: make(map[string]int)}
}

// NewFunction registers a function under name. If the name is already taken
// the new function replaces the old one in place (last definition wins) and
// replaced is true.
func (m *Module) NewFunction(name string) (fn *Function, replaced bool) {
	fn = &Function{
		Name:  name,
		index: make(map[string]int),
	}
	if i, ok := m.index[name]; ok {
		m.Functions[i] = fn
		return fn, true
	}
	m.index[name] = len(m.Functions)
	m.Functions = append(m.Functions, fn)
	return fn, false
}

// Function looks a function up by name.
func (m *Module) Function(name string) (*Function, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	return m.Functions[i], nil
}

// Names returns function names in declaration order.
func (m *Module) Names() []string {
	names := make([]string, len(m.Functions))
	for i, fn := range m.Functions {
		names[i] = fn.Name
	}
	return names
}

// Filter returns the functions whose name contains query, ignoring case.
// An empty query matches everything.
func (m *Module) Filter(query string) []*Function {
	query = strings.ToLower(query)
	var out []*Function
	for _, fn := range m.Functions {
		if strings.Contains(strings.ToLower(fn.Name), query) {
			out = append(out, fn)
		}
	}
	return out
}

// Function owns its basic blocks in first-seen order. Root names the entry
// block.
type Function struct {
	Name   string
	Root   string
	Blocks []*BasicBlock
	index  map[string]int
}

// NewBlock registers a block under name. The first block of a function
// becomes its root. A duplicate name replaces the earlier block in place.
func (f *Function) NewBlock(name string) (bb *BasicBlock, replaced bool) {
	bb = &BasicBlock{Function: f.Name, Name: name}
	if f.Root == "" {
		f.Root = name
	}
	if i, ok := f.index[name]; ok {
		f.Blocks[i] = bb
		return bb, true
	}
	f.index[name] = len(f.Blocks)
	f.Blocks = append(f.Blocks, bb)
	return bb, false
}

// ResetEntry discards every block and clears the root so the next block
// created becomes the entry.
func (f *Function) ResetEntry() {
	f.Blocks = nil
	f.index = make(map[string]int)
	f.Root = ""
}

// Block looks a block up by name.
func (f *Function) Block(name string) (*BasicBlock, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrBlockNotFound, name, f.Name)
	}
	return f.Blocks[i], nil
}

// HasBlock reports whether name resolves to a block of f.
func (f *Function) HasBlock(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Reachable returns the names of blocks reachable from the root, in
// depth-first preorder over successors. Edges to undefined blocks are
// skipped.
func (f *Function) Reachable() []string {
	if !f.HasBlock(f.Root) {
		return nil
	}

	visited := make(map[string]bool)
	var order []string
	stack := []string{f.Root}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[name] {
			continue
		}
		visited[name] = true
		order = append(order, name)

		bb := f.Blocks[f.index[name]]
		// Push in reverse so the first successor is visited first.
		for i := len(bb.Successors) - 1; i >= 0; i-- {
			to := bb.Successors[i].To
			if !visited[to] && f.HasBlock(to) {
				stack = append(stack, to)
			}
		}
	}
	return order
}

// BasicBlock is a straight-line run of instructions ending in a terminator.
// Function is the owning function's name.
type BasicBlock struct {
	Function     string
	Name         string
	Instructions []Instruction
	Successors   []Edge
	// FirstAddress is the smallest source line of any instruction, 0 when
	// the block is empty.
	FirstAddress int
}

// AddEdge appends an outgoing edge. The target need not exist yet.
func (b *BasicBlock) AddEdge(to string, typ EdgeType) {
	b.Successors = append(b.Successors, Edge{From: b.Name, To: to, Type: typ})
}

// Append adds inst to the end of the block.
func (b *BasicBlock) Append(inst Instruction) error {
	if b.Terminated() {
		return fmt.Errorf("%w: %s", ErrBlockSealed, b.Name)
	}
	b.Instructions = append(b.Instructions, inst)
	if b.FirstAddress == 0 || inst.Address() < b.FirstAddress {
		b.FirstAddress = inst.Address()
	}
	return nil
}

// Terminator returns the final instruction if it is a terminator.
func (b *BasicBlock) Terminator() Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	last := b.Instructions[len(b.Instructions)-1]
	if last.Group() != GroupTerminator {
		return nil
	}
	return last
}

// Terminated reports whether the block is sealed.
func (b *BasicBlock) Terminated() bool {
	return b.Terminator() != nil
}

// Text joins the instruction contents, one per line.
func (b *BasicBlock) Text() string {
	parts := make([]string, len(b.Instructions))
	for i, inst := range b.Instructions {
		parts[i] = inst.Content()
	}
	return strings.Join(parts, "\n")
}
