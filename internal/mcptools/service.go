package mcptools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/triskellib/vscode/internal/host"
	"github.com/triskellib/vscode/internal/log"
	"github.com/triskellib/vscode/pkg/cache"
	"github.com/triskellib/vscode/pkg/export"
	"github.com/triskellib/vscode/pkg/layout"
	"github.com/triskellib/vscode/pkg/llvmir"
)

// CFGService answers MCP tool calls. Every call gets its own host session;
// sessions share the parse cache.
type CFGService struct {
	cache  *cache.Modules
	logger log.Logger
	sizer  layout.TextSizer
	space  layout.LayeredOptions
}

// NewCFGService creates a CFGService. A nil cache creates a private one.
func NewCFGService(c *cache.Modules, logger log.Logger) *CFGService {
	if c == nil {
		c = cache.NewModules(0)
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &CFGService{
		cache:  c,
		logger: logger,
		sizer:  layout.DefaultTextSizer(),
		space:  layout.DefaultLayeredOptions(),
	}
}

// SetLayout overrides the block sizer and spacing used by layout_function.
func (s *CFGService) SetLayout(sizer layout.TextSizer, space layout.LayeredOptions) {
	s.sizer = sizer
	s.space = space
}

func (s *CFGService) open(src Source) (*host.Session, host.LoadResult, error) {
	text := src.Text
	if text == "" {
		if src.Path == "" {
			return nil, host.LoadResult{}, fmt.Errorf("text or path is required")
		}
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, host.LoadResult{}, fmt.Errorf("cannot read path: %w", err)
		}
		text = string(data)
	}

	sess := host.NewSession(host.Options{
		Logger: s.logger,
		Cache:  s.cache,
		Sizer:  s.sizer,
		Space:  s.space,
	})
	res := sess.Load(src.Path, text)
	return sess, res, nil
}

// ListFunctions lists the functions of a document with their block counts.
func (s *CFGService) ListFunctions(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListFunctionsInput,
) (*mcp.CallToolResult, ListFunctionsOutput, error) {
	sess, loaded, err := s.open(input.Source)
	if err != nil {
		return nil, ListFunctionsOutput{}, err
	}
	fns, err := sess.Functions(input.Filter)
	if err != nil {
		return nil, ListFunctionsOutput{}, err
	}
	if fns == nil {
		fns = []export.FunctionSummary{}
	}
	return nil, ListFunctionsOutput{Functions: fns, Diagnostics: len(loaded.Diagnostics)}, nil
}

// GetCFG returns one function's graph as a snapshot or rendered text.
func (s *CFGService) GetCFG(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetCFGInput,
) (*mcp.CallToolResult, GetCFGOutput, error) {
	format := strings.ToLower(input.Format)
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "mermaid" && format != "dot" {
		return nil, GetCFGOutput{}, fmt.Errorf("unsupported format %q (want json, mermaid or dot)", input.Format)
	}

	sess, _, err := s.open(input.Source)
	if err != nil {
		return nil, GetCFGOutput{}, err
	}
	fn, err := sess.Function(input.Function)
	if err != nil {
		return nil, GetCFGOutput{}, err
	}

	out := GetCFGOutput{Format: format}
	switch format {
	case "mermaid":
		out.Rendered = export.Mermaid(fn)
	case "dot":
		out.Rendered = export.DOT(fn)
	default:
		out.Graph = export.NewFunctionSnapshot(fn)
	}
	return nil, out, nil
}

// LocateLine finds the block that owns a source line.
func (s *CFGService) LocateLine(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input LocateLineInput,
) (*mcp.CallToolResult, host.SyncResult, error) {
	sess, _, err := s.open(input.Source)
	if err != nil {
		return nil, host.SyncResult{}, err
	}
	res, err := sess.SyncLine(input.Line)
	if err != nil {
		return nil, host.SyncResult{}, err
	}
	return nil, res, nil
}

// CopyBlock returns the instruction text of a block.
func (s *CFGService) CopyBlock(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input BlockInput,
) (*mcp.CallToolResult, host.CopyResult, error) {
	sess, _, err := s.open(input.Source)
	if err != nil {
		return nil, host.CopyResult{}, err
	}
	res, err := sess.Copy(input.Function, input.Block)
	if err != nil {
		return nil, host.CopyResult{}, err
	}
	return nil, res, nil
}

// LayoutFunction places the reachable blocks of a function.
func (s *CFGService) LayoutFunction(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input FunctionInput,
) (*mcp.CallToolResult, LayoutOutput, error) {
	sess, _, err := s.open(input.Source)
	if err != nil {
		return nil, LayoutOutput{}, err
	}
	l, err := sess.Layout(input.Function)
	if err != nil {
		return nil, LayoutOutput{}, err
	}
	return nil, LayoutOutput{Layout: *l}, nil
}

// Diagnostics reports the problems found while parsing a document.
func (s *CFGService) Diagnostics(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DiagnosticsInput,
) (*mcp.CallToolResult, DiagnosticsOutput, error) {
	_, loaded, err := s.open(input.Source)
	if err != nil {
		return nil, DiagnosticsOutput{}, err
	}
	diags := loaded.Diagnostics
	if diags == nil {
		diags = []llvmir.Diagnostic{}
	}
	return nil, DiagnosticsOutput{Diagnostics: diags, Count: len(diags)}, nil
}
