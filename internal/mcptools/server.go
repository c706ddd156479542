// Package mcptools exposes CFG extraction as Model Context Protocol tools.
package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewCFGMCPServer creates an MCP server with the CFG tools registered.
func NewCFGMCPServer(svc *CFGService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "llcfg",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_functions",
		Description: "List the functions defined in an LLVM IR module with their basic block counts. Optionally filter by a case-insensitive name substring.",
	}, svc.ListFunctions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_cfg",
		Description: "Return the control flow graph of one function: its blocks, instructions and typed successor edges as JSON, or rendered as Mermaid or Graphviz DOT.",
	}, svc.GetCFG)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "locate_line",
		Description: "Find the function and basic block that contain a 1-based line of the IR text.",
	}, svc.LocateLine)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "copy_block",
		Description: "Return the instruction text of a basic block, one instruction per line.",
	}, svc.CopyBlock)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "layout_function",
		Description: "Compute node positions and edge waypoints for drawing a function's control flow graph.",
	}, svc.LayoutFunction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "diagnostics",
		Description: "Report structural problems found while parsing the IR: misplaced labels, blocks left open, duplicate definitions and unterminated target lists.",
	}, svc.Diagnostics)

	return server
}

// RunStdio serves the tools over stdin/stdout until ctx is cancelled or the
// client disconnects.
func RunStdio(ctx context.Context, svc *CFGService) error {
	return NewCFGMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts an HTTP server exposing the tools over the streamable
// transport.
func RunHTTP(ctx context.Context, svc *CFGService, addr string) error {
	server := NewCFGMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
