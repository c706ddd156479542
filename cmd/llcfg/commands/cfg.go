package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/triskellib/vscode/internal/config"
	"github.com/triskellib/vscode/pkg/cfg"
	"github.com/triskellib/vscode/pkg/export"
)

func newCFGCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "cfg <file> [function]",
		Short: "Print or export control flow graphs",
		Long: `Extracts the control flow graph of one function, or of every function when
none is named, and prints it in the chosen format:

  text     blocks, instructions and colored true/false arms
  json     snapshot with blocks, instructions and typed edges
  mermaid  Mermaid "graph TD" source
  dot      Graphviz digraph source
  msgpack  binary snapshot of the whole module (use --output)

The graph is always built in process so every format sees the full module.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := config.Format(strings.ToLower(format))
			if f == "" {
				f = opts.cfg.Format
			}
			if opts.jsonOutput {
				f = config.FormatJSON
			}

			text, err := readSource(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			sess := opts.newSession(nil)
			loaded := sess.Load(args[0], text)

			var fns []*cfg.Function
			if len(args) == 2 {
				fn, err := sess.Function(args[1])
				if err != nil {
					return fmt.Errorf("function %q: %w", args[1], err)
				}
				fns = []*cfg.Function{fn}
			} else {
				all, err := sess.Functions("")
				if err != nil {
					return err
				}
				for _, s := range all {
					fn, err := sess.Function(s.Name)
					if err != nil {
						return err
					}
					fns = append(fns, fn)
				}
			}

			out := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating output: %w", err)
				}
				defer file.Close()
				out = file
			}

			if err := writeGraphs(out, f, fns); err != nil {
				return err
			}
			return opts.checkStrict(loaded)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format: text, json, mermaid, dot, msgpack (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func writeGraphs(w io.Writer, f config.Format, fns []*cfg.Function) error {
	switch f {
	case config.FormatText:
		for i, fn := range fns {
			if i > 0 {
				fmt.Fprintln(w)
			}
			printFunction(w, fn)
		}
		return nil

	case config.FormatJSON:
		if len(fns) == 1 {
			return export.WriteJSON(w, export.NewFunctionSnapshot(fns[0]))
		}
		return export.WriteJSON(w, snapshotOf(fns))

	case config.FormatMermaid, config.FormatDOT:
		for i, fn := range fns {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if f == config.FormatMermaid {
				fmt.Fprint(w, export.Mermaid(fn))
			} else {
				fmt.Fprint(w, export.DOT(fn))
			}
		}
		return nil

	case config.FormatMsgPack:
		return export.WriteMsgPack(w, snapshotOf(fns))

	default:
		return fmt.Errorf("unsupported format: %s", f)
	}
}

func snapshotOf(fns []*cfg.Function) *export.ModuleSnapshot {
	snap := &export.ModuleSnapshot{Functions: make([]export.FunctionSnapshot, 0, len(fns))}
	for _, fn := range fns {
		snap.Functions = append(snap.Functions, *export.NewFunctionSnapshot(fn))
	}
	return snap
}

var (
	headerColor   = color.New(color.Bold)
	labelColor    = color.New(color.FgCyan)
	trueColor     = color.New(color.FgGreen)
	falseColor    = color.New(color.FgRed)
	danglingColor = color.New(color.FgYellow)
)

// printFunction writes a human-readable listing of one function.
func printFunction(w io.Writer, fn *cfg.Function) {
	headerColor.Fprintf(w, "define @%s", fn.Name)
	fmt.Fprintf(w, "  (%d blocks, root %%%s)\n", len(fn.Blocks), fn.Root)

	for _, bb := range fn.Blocks {
		labelColor.Fprintf(w, "%s:\n", bb.Name)
		for _, inst := range bb.Instructions {
			fmt.Fprintf(w, "%6d  %s\n", inst.Address(), strings.TrimSpace(inst.Content()))
		}
		for _, e := range bb.Successors {
			fmt.Fprint(w, "        -> ")
			target := "%" + e.To
			if !fn.HasBlock(e.To) {
				danglingColor.Fprintf(w, "%s (undefined)", target)
			} else {
				fmt.Fprint(w, target)
			}
			switch e.Type {
			case cfg.EdgeTypeTrue:
				trueColor.Fprint(w, " [T]")
			case cfg.EdgeTypeFalse:
				falseColor.Fprint(w, " [F]")
			}
			fmt.Fprintln(w)
		}
	}
}
