package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/triskellib/vscode/internal/daemon"
)

func newDaemonCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the llcfgd socket daemon",
		Long: `llcfgd keeps parsed documents cached and answers the host protocol on a
Unix socket. Query commands use it when --daemon is given.`,
	}
	cmd.AddCommand(newDaemonStartCmd(opts), newDaemonStopCmd(opts), newDaemonStatusCmd(opts))
	return cmd
}

func newDaemonStartCmd(opts *rootOptions) *cobra.Command {
	var (
		daemonPath string
		background bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start llcfgd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := daemon.Start(&daemon.StartOptions{
				DaemonPath:   daemonPath,
				SocketPath:   opts.cfg.SocketPath,
				ConfigPath:   opts.configPath,
				Verbose:      opts.cfg.Verbose,
				WaitForReady: true,
				ReadyTimeout: 10 * time.Second,
				Background:   background,
			})
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if !result.Success {
				if result.Error != "" {
					fmt.Fprintf(out, "Failed to start daemon: %s\n", result.Error)
				}
				if result.PID > 0 {
					fmt.Fprintf(out, "Daemon already running with PID %d\n", result.PID)
				}
				return nil
			}
			fmt.Fprintf(out, "Daemon started with PID %d\n", result.PID)
			return nil
		},
	}
	cmd.Flags().StringVar(&daemonPath, "bin", "", "Path to the llcfgd binary")
	cmd.Flags().BoolVarP(&background, "detach", "d", false, "Run in background")
	return cmd
}

func newDaemonStopCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop llcfgd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := daemon.Stop(opts.cfg.SocketPath)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if !result.Success {
				fmt.Fprintf(out, "Failed to stop daemon: %s\n", result.Error)
				return nil
			}
			fmt.Fprintf(out, "Daemon stopped (PID: %d)\n", result.PID)
			return nil
		},
	}
}

func newDaemonStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show llcfgd status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := daemon.GetStatus(opts.cfg.SocketPath)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s\n", result.Status)
			if result.Error != "" {
				fmt.Fprintf(out, "Error: %s\n", result.Error)
				return nil
			}
			if result.PID > 0 {
				fmt.Fprintf(out, "PID: %d\n", result.PID)
			}
			if result.Version != "" {
				fmt.Fprintf(out, "Version: %s\n", result.Version)
			}
			if !result.StartedAt.IsZero() {
				fmt.Fprintf(out, "Started: %s\n", result.StartedAt.Format(time.RFC3339))
			}
			if result.Running {
				fmt.Fprintf(out, "Cached documents: %d\n", result.Cached)
			}
			return nil
		},
	}
}
