// Package commands provides the CLI commands for llcfg.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/triskellib/vscode/internal/config"
	"github.com/triskellib/vscode/internal/log"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
	jsonOutput bool
	useDaemon  bool
	socketPath string
	version    string

	// set by PersistentPreRunE
	cfg    *config.Config
	logger log.Logger
}

// NewRootCmd builds the llcfg command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	root := &cobra.Command{
		Use:   "llcfg",
		Short: "llcfg - control flow graphs from LLVM IR text",
		Long: `llcfg reads textual LLVM IR (.ll files) and extracts the control flow
graph of every function: basic blocks, their instructions and typed
successor edges.

Commands:
  functions   List functions with their block counts
  cfg         Print or export control flow graphs
  locate      Find the block containing a source line
  copy        Print the instructions of a block
  goto        Convert a view line to an editor line
  layout      Compute node coordinates for a function
  scan        Parse every .ll file under a directory
  serve       Run the editor host protocol on stdin/stdout
  mcp         Serve the graph queries as MCP tools
  init        Write a configuration file interactively
  daemon      Manage the llcfgd socket daemon
  doctor      Check configuration, daemon and clipboard

Use "llcfg [command] --help" for more information about a command.`,
		SilenceUsage: true,
		Version:      version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}
	root.SetVersionTemplate("llcfg version {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file path (default: project then global config)")
	pf.BoolVar(&opts.verbose, "verbose", false, "Debug logging")
	pf.BoolVarP(&opts.jsonOutput, "json", "j", false, "Output as JSON")
	pf.BoolVar(&opts.useDaemon, "daemon", false, "Route queries through a running llcfgd")
	pf.StringVar(&opts.socketPath, "socket", "", "llcfgd socket path (default from config)")

	root.AddCommand(
		newFunctionsCmd(opts),
		newCFGCmd(opts),
		newLocateCmd(opts),
		newCopyCmd(opts),
		newGotoCmd(opts),
		newLayoutCmd(opts),
		newScanCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
		newInitCmd(opts),
		newDaemonCmd(opts),
		newDoctorCmd(opts),
	)
	return root
}

// Execute runs the CLI.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

func (o *rootOptions) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if o.verbose {
		cfg.Verbose = true
	}
	if o.socketPath != "" {
		cfg.SocketPath = o.socketPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	o.cfg = cfg
	o.logger = log.New(log.LoggerConfig{
		Level:      cfg.Level(),
		JSONOutput: cfg.LogJSON,
	})
	return nil
}
