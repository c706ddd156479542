// Package cfg defines data structures for representing Control Flow Graphs (CFGs)
// extracted from LLVM IR text. It provides types for modules, functions, basic
// blocks, edges and instructions.
package cfg

import "errors"

var (
	// ErrFunctionNotFound is returned when a function name does not resolve.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrBlockNotFound is returned when a block name does not resolve.
	ErrBlockNotFound = errors.New("block not found")
)

// EdgeType tags the arm of a control-flow transfer.
type EdgeType string

const (
	EdgeTypeTrue  EdgeType = "true"  // True arm of a conditional branch
	EdgeTypeFalse EdgeType = "false" // False arm of a conditional branch
	EdgeTypeNone  EdgeType = "none"  // Unconditional, switch and indirectbr targets
)

// Group is the coarse classification of an instruction.
type Group string

const (
	GroupTerminator Group = "Terminator"
	GroupOther      Group = "Other"
)

// Opcodes of the terminator instructions the parser recognizes.
const (
	OpRet         = "ret"
	OpBr          = "br"
	OpSwitch      = "switch"
	OpIndirectBr  = "indirectbr"
	OpInvoke      = "invoke"
	OpCallBr      = "callbr"
	OpResume      = "resume"
	OpCatchSwitch = "catchswitch"
	OpCatchRet    = "catchret"
	OpCleanupRet  = "cleanupret"
	OpUnreachable = "unreachable"
)

// Edge is a directed control-flow edge between two blocks of the same function.
// To is a block name; it may not resolve if the target was never defined.
type Edge struct {
	From string   `json:"from" msgpack:"from"`
	To   string   `json:"to" msgpack:"to"`
	Type EdgeType `json:"type" msgpack:"type"`
}

// Label names a control-flow target inside a terminator instruction.
type Label struct {
	Name string `json:"name" msgpack:"name"`
}

func (l Label) String() string {
	return "%" + l.Name
}
