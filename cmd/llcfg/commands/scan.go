package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/triskellib/vscode/internal/log"
	"github.com/triskellib/vscode/internal/scanner"
	"github.com/triskellib/vscode/pkg/dirty"
	"github.com/triskellib/vscode/pkg/llvmir"
)

// ScanEntry summarizes one parsed file.
type ScanEntry struct {
	Path        string              `json:"path"`
	Functions   int                 `json:"functions"`
	Blocks      int                 `json:"blocks"`
	Diagnostics []llvmir.Diagnostic `json:"diagnostics,omitempty"`
	Cached      bool                `json:"cached,omitempty"`
}

// ScanOutput is the result of the scan command.
type ScanOutput struct {
	Root        string      `json:"root"`
	Files       []ScanEntry `json:"files"`
	Functions   int         `json:"functions"`
	Diagnostics int         `json:"diagnostics"`
	Reused      int         `json:"reused,omitempty"`
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	var (
		jobs        int
		quiet       bool
		incremental bool
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Parse every .ll file under a directory",
		Long: `Walks a directory for LLVM IR files, honoring .llcfgignore files and the
default excludes, parses them concurrently and reports function, block and
diagnostic counts per file.

With --incremental, results are remembered in .llcfg/cache/scan.json under
the scanned directory and files whose content did not change are not parsed
again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			if jobs <= 0 {
				jobs = runtime.NumCPU()
			}

			sopts := scanner.DefaultOptions()
			sopts.Extensions = opts.cfg.Extensions
			sopts.IgnoreFileName = opts.cfg.IgnoreFile
			files, err := scanner.New(sopts).Scan(root)
			if err != nil {
				return fmt.Errorf("scanning directory: %w", err)
			}

			var tracker *dirty.Tracker
			if incremental {
				stateDir := dirty.WithCacheDir(filepath.Join(root, dirty.DefaultCacheDir))
				tracker, err = dirty.NewFromCache(stateDir)
				if err != nil {
					opts.logger.Warn("ignoring unreadable scan state", "error", err)
					tracker = dirty.New(stateDir)
				}
			}

			var spinner *log.ProgressSpinner
			if !quiet && !opts.jsonOutput {
				spinner = log.NewProgressSpinner(cmd.ErrOrStderr(), fmt.Sprintf("parsing %d files", len(files)))
				spinner.Start()
			}

			out, err := scanFiles(cmd.Context(), files, jobs, tracker, func(done int64) {
				if spinner != nil {
					spinner.Message(fmt.Sprintf("parsed %d/%d files", done, len(files)))
				}
			})
			if spinner != nil {
				spinner.Stop()
			}
			if err != nil {
				return err
			}
			out.Root = root

			if tracker != nil {
				keep := make([]string, len(files))
				for i, f := range files {
					keep[i] = f.Path
				}
				tracker.Prune(keep)
				if err := tracker.Save(); err != nil {
					opts.logger.Warn("could not save scan state", "error", err)
				}
				opts.logger.Debug("incremental scan", "reused", out.Reused, "parsed", len(files)-out.Reused)
			}

			for _, f := range out.Files {
				for _, d := range f.Diagnostics {
					opts.logger.Warn(d.Message, "path", f.Path, "line", d.Line, "function", d.Function, "kind", string(d.Kind))
				}
			}

			if opts.jsonOutput {
				if err := printJSON(cmd, out); err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, f := range out.Files {
					fmt.Fprintf(tw, "%s\t%d functions\t%d blocks\t%d diagnostics\n", f.Path, f.Functions, f.Blocks, len(f.Diagnostics))
				}
				fmt.Fprintf(tw, "total\t%d functions\t\t%d diagnostics\n", out.Functions, out.Diagnostics)
				tw.Flush()
			}

			if opts.cfg.Strict && out.Diagnostics > 0 {
				return fmt.Errorf("%w: %d across %d files", ErrDiagnostics, out.Diagnostics, len(out.Files))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&jobs, "jobs", 0, "Files parsed in parallel (default: number of CPUs)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress spinner")
	cmd.Flags().BoolVar(&incremental, "incremental", false, "Reuse results for files unchanged since the last incremental scan")
	return cmd
}

// scanFiles parses files with at most jobs goroutines. Results keep the
// scanner's order. A non-nil tracker supplies results for unchanged files
// and records the rest.
func scanFiles(ctx context.Context, files []scanner.FileInfo, jobs int, tracker *dirty.Tracker, progress func(done int64)) (*ScanOutput, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	entries := make([]ScanEntry, len(files))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f.FullPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", f.Path, err)
			}
			text := string(data)

			var hash string
			if tracker != nil {
				hash = dirty.Hash(text)
				if prev, ok := tracker.Lookup(f.Path, hash); ok {
					entries[i] = ScanEntry{
						Path:        f.Path,
						Functions:   prev.Functions,
						Blocks:      prev.Blocks,
						Diagnostics: prev.Diagnostics,
						Cached:      true,
					}
					if progress != nil {
						progress(done.Add(1))
					}
					return nil
				}
			}

			res := llvmir.Parse(text)
			entry := ScanEntry{Path: f.Path, Functions: len(res.Module.Functions), Diagnostics: res.Diagnostics}
			for _, fn := range res.Module.Functions {
				entry.Blocks += len(fn.Blocks)
			}
			entries[i] = entry

			if tracker != nil {
				tracker.Record(dirty.Entry{
					Path:        entry.Path,
					Hash:        hash,
					Functions:   entry.Functions,
					Blocks:      entry.Blocks,
					Diagnostics: entry.Diagnostics,
				})
			}

			if progress != nil {
				progress(done.Add(1))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ScanOutput{Files: entries}
	for _, e := range entries {
		out.Functions += e.Functions
		out.Diagnostics += len(e.Diagnostics)
		if e.Cached {
			out.Reused++
		}
	}
	return out, nil
}
