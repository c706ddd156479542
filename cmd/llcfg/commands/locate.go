package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/triskellib/vscode/internal/host"
)

func parseLine(s string) (int, error) {
	line, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid line %q: %w", s, err)
	}
	return line, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func newLocateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "locate <file> <line>",
		Short: "Find the block containing a source line",
		Long: `Walks back from a 1-based source line to the nearest label and function
header and prints the owning function, block and the block's first line.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args[1])
			if err != nil {
				return err
			}
			b, _, err := opts.open(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer b.Close()

			res, err := b.SyncLine(line)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd, res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "@%s %%%s (line %d)\n", res.Function, res.Block, res.FirstAddress)
			return nil
		},
	}
}

func newCopyCmd(opts *rootOptions) *cobra.Command {
	var toClipboard bool

	cmd := &cobra.Command{
		Use:   "copy <file> <function> [block]",
		Short: "Print the instructions of a block",
		Long: `Prints the instruction text of a basic block, one instruction per line.
Without a block name the function's entry block is used. With --clipboard
the text is also placed on the system clipboard.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			block := ""
			if len(args) == 3 {
				block = args[2]
			}
			b, _, err := opts.open(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer b.Close()

			res, err := b.Copy(args[1], block)
			if err != nil {
				return err
			}
			if toClipboard {
				if err := clipboard.WriteAll(res.Text); err != nil {
					opts.logger.Warn("clipboard write failed", "error", err)
				}
			}
			if opts.jsonOutput {
				return printJSON(cmd, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&toClipboard, "clipboard", "c", false, "Also copy to the system clipboard")
	return cmd
}

func newGotoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "goto <line>",
		Short: "Convert a view line to an editor line",
		Long:  `Converts a 1-based line reported by the graph view into the 0-based line an editor reveals.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args[0])
			if err != nil {
				return err
			}
			res := host.GotoLine(line)
			if opts.jsonOutput {
				return printJSON(cmd, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Line)
			return nil
		},
	}
}

func newLayoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "layout <file> <function>",
		Short: "Compute node coordinates for a function",
		Long: `Lays out the blocks reachable from the function's entry block with the
built-in layered engine and prints node boxes and edge polylines.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := opts.open(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer b.Close()

			l, err := b.Layout(args[1])
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd, l)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "@%s %.0fx%.0f\n", l.Function, l.Width, l.Height)
			for _, n := range l.Nodes {
				fmt.Fprintf(out, "  %%%s at (%.1f, %.1f) size %.1fx%.1f\n", n.Block, n.X, n.Y, n.Width, n.Height)
			}
			for _, e := range l.Edges {
				fmt.Fprintf(out, "  %%%s -> %%%s [%s] %d points\n", e.From, e.To, e.Type, len(e.Points))
			}
			return nil
		},
	}
}
