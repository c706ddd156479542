package mcptools

import (
	"github.com/triskellib/vscode/pkg/export"
	"github.com/triskellib/vscode/pkg/layout"
	"github.com/triskellib/vscode/pkg/llvmir"
)

// Source names the document a tool runs against. Text wins over Path.
type Source struct {
	Text string `json:"text,omitempty" jsonschema:"LLVM IR text to analyze"`
	Path string `json:"path,omitempty" jsonschema:"path to a .ll file, used when text is empty"`
}

// ListFunctionsInput is the input for the list_functions MCP tool.
type ListFunctionsInput struct {
	Source
	Filter string `json:"filter,omitempty" jsonschema:"case-insensitive substring filter on function names"`
}

// ListFunctionsOutput is the result of the list_functions MCP tool.
type ListFunctionsOutput struct {
	Functions   []export.FunctionSummary `json:"functions"`
	Diagnostics int                      `json:"diagnostics"`
}

// GetCFGInput is the input for the get_cfg MCP tool.
type GetCFGInput struct {
	Source
	Function string `json:"function" jsonschema:"function name without the leading @"`
	Format   string `json:"format,omitempty" jsonschema:"json (default), mermaid or dot"`
}

// GetCFGOutput is the result of the get_cfg MCP tool. Graph is set for the
// json format; Rendered holds mermaid or dot source.
type GetCFGOutput struct {
	Format   string                   `json:"format"`
	Graph    *export.FunctionSnapshot `json:"graph,omitempty"`
	Rendered string                   `json:"rendered,omitempty"`
}

// LocateLineInput is the input for the locate_line MCP tool.
type LocateLineInput struct {
	Source
	Line int `json:"line" jsonschema:"1-based source line"`
}

// BlockInput names a block for copy_block.
type BlockInput struct {
	Source
	Function string `json:"function" jsonschema:"function name without the leading @"`
	Block    string `json:"block,omitempty" jsonschema:"block label; empty means the entry block"`
}

// FunctionInput names a function for layout_function.
type FunctionInput struct {
	Source
	Function string `json:"function" jsonschema:"function name without the leading @"`
}

// LayoutOutput is the result of the layout_function MCP tool.
type LayoutOutput struct {
	Layout layout.FunctionLayout `json:"layout"`
}

// DiagnosticsInput is the input for the diagnostics MCP tool.
type DiagnosticsInput struct {
	Source
}

// DiagnosticsOutput is the result of the diagnostics MCP tool.
type DiagnosticsOutput struct {
	Diagnostics []llvmir.Diagnostic `json:"diagnostics"`
	Count       int                 `json:"count"`
}

