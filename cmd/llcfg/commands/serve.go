package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/triskellib/vscode/internal/host"
	"github.com/triskellib/vscode/internal/mcptools"
	"github.com/triskellib/vscode/pkg/cache"
)

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var useClipboard bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor host protocol on stdin/stdout",
		Long: `Reads one JSON command per line from stdin and writes one JSON response
per line to stdout. An editor extension drives the graph view through
setFileContent, functions, cfg, sync, syncBlock, copy, gotoLine, layout,
diagnostics, status and stop. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			var clip func(string) error
			if useClipboard {
				clip = clipboard.WriteAll
			}
			sess := opts.newSession(clip)
			opts.logger.Debug("serving host protocol on stdio", "version", opts.version)
			return host.Serve(ctx, sess, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&useClipboard, "clipboard", false, "Also place copied block text on the system clipboard")
	return cmd
}

func newMCPCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the graph queries as MCP tools",
		Long: `Starts a Model Context Protocol server exposing list_functions, get_cfg,
locate_line, copy_block, layout_function and diagnostics. The server speaks
over stdio unless --http is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd)
			defer cancel()

			svc := mcptools.NewCFGService(cache.NewModules(opts.cfg.CacheSize), opts.logger)
			svc.SetLayout(opts.sizer(), opts.space())

			if addr != "" {
				opts.logger.Info("serving MCP over HTTP", "addr", addr)
				return mcptools.RunHTTP(ctx, svc, addr)
			}
			return mcptools.RunStdio(ctx, svc)
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "Listen address for the streamable HTTP transport (e.g. localhost:8765)")
	return cmd
}
