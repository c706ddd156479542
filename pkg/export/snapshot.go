// Package export renders parsed modules for consumers outside the process:
// JSON and msgpack snapshots for tools, Mermaid and Graphviz for humans.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/triskellib/vscode/pkg/cfg"
)

// ModuleSnapshot is a serializable copy of a module.
type ModuleSnapshot struct {
	Functions []FunctionSnapshot `json:"functions" msgpack:"functions"`
}

// FunctionSnapshot is a serializable copy of one function.
type FunctionSnapshot struct {
	Name   string          `json:"name" msgpack:"name"`
	Root   string          `json:"root" msgpack:"root"`
	Blocks []BlockSnapshot `json:"blocks" msgpack:"blocks"`
}

// BlockSnapshot is a serializable copy of one basic block.
type BlockSnapshot struct {
	Name         string                `json:"name" msgpack:"name"`
	FirstAddress int                   `json:"first_address" msgpack:"first_address"`
	Instructions []InstructionSnapshot `json:"instructions" msgpack:"instructions"`
	Successors   []cfg.Edge            `json:"successors" msgpack:"successors"`
}

// InstructionSnapshot flattens the instruction variants.
type InstructionSnapshot struct {
	Opcode  string    `json:"opcode,omitempty" msgpack:"opcode,omitempty"`
	Group   cfg.Group `json:"group" msgpack:"group"`
	Content string    `json:"content" msgpack:"content"`
	Address int       `json:"address" msgpack:"address"`
	Targets []string  `json:"targets,omitempty" msgpack:"targets,omitempty"`
}

// FunctionSummary is one row of the function selector.
type FunctionSummary struct {
	Name   string `json:"name" msgpack:"name"`
	Blocks int    `json:"blocks" msgpack:"blocks"`
}

// NewModuleSnapshot copies m.
func NewModuleSnapshot(m *cfg.Module) *ModuleSnapshot {
	s := &ModuleSnapshot{Functions: make([]FunctionSnapshot, 0, len(m.Functions))}
	for _, fn := range m.Functions {
		s.Functions = append(s.Functions, *NewFunctionSnapshot(fn))
	}
	return s
}

// NewFunctionSnapshot copies fn.
func NewFunctionSnapshot(fn *cfg.Function) *FunctionSnapshot {
	s := &FunctionSnapshot{
		Name:   fn.Name,
		Root:   fn.Root,
		Blocks: make([]BlockSnapshot, 0, len(fn.Blocks)),
	}
	for _, bb := range fn.Blocks {
		b := BlockSnapshot{
			Name:         bb.Name,
			FirstAddress: bb.FirstAddress,
			Instructions: make([]InstructionSnapshot, 0, len(bb.Instructions)),
			Successors:   append([]cfg.Edge{}, bb.Successors...),
		}
		for _, inst := range bb.Instructions {
			is := InstructionSnapshot{
				Opcode:  inst.Opcode(),
				Group:   inst.Group(),
				Content: inst.Content(),
				Address: inst.Address(),
			}
			for _, l := range cfg.Targets(inst) {
				is.Targets = append(is.Targets, l.Name)
			}
			b.Instructions = append(b.Instructions, is)
		}
		s.Blocks = append(s.Blocks, b)
	}
	return s
}

// Summaries lists the functions matching filter (case-insensitive
// substring, empty matches all) with their block counts.
func Summaries(m *cfg.Module, filter string) []FunctionSummary {
	fns := m.Filter(filter)
	out := make([]FunctionSummary, len(fns))
	for i, fn := range fns {
		out[i] = FunctionSummary{Name: fn.Name, Blocks: len(fn.Blocks)}
	}
	return out
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteMsgPack writes v in msgpack encoding.
func WriteMsgPack(w io.Writer, v any) error {
	if err := msgpack.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode msgpack: %w", err)
	}
	return nil
}

// ReadMsgPack decodes a module snapshot written by WriteMsgPack.
func ReadMsgPack(r io.Reader) (*ModuleSnapshot, error) {
	var s ModuleSnapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}
	return &s, nil
}
