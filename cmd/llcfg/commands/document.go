package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/triskellib/vscode/internal/daemon"
	"github.com/triskellib/vscode/internal/host"
	"github.com/triskellib/vscode/pkg/cache"
	"github.com/triskellib/vscode/pkg/export"
	"github.com/triskellib/vscode/pkg/layout"
)

// ErrDiagnostics is returned in strict mode when parsing reported problems.
var ErrDiagnostics = errors.New("parse produced diagnostics")

// backend answers document queries either in process or through llcfgd.
type backend interface {
	Load(path, text string) (host.LoadResult, error)
	Functions(filter string) ([]export.FunctionSummary, error)
	SyncLine(line int) (host.SyncResult, error)
	Copy(function, block string) (host.CopyResult, error)
	Layout(function string) (*layout.FunctionLayout, error)
	Close() error
}

type localBackend struct {
	*host.Session
}

func (b localBackend) Load(path, text string) (host.LoadResult, error) {
	return b.Session.Load(path, text), nil
}

func (localBackend) Close() error { return nil }

type daemonBackend struct {
	client *daemon.Client
}

func (b daemonBackend) Load(path, text string) (host.LoadResult, error) {
	var res host.LoadResult
	err := b.client.Call(host.CmdSetFileContent, host.SetFileContentParams{Text: text, Path: path}, &res)
	return res, err
}

func (b daemonBackend) Functions(filter string) ([]export.FunctionSummary, error) {
	var res []export.FunctionSummary
	err := b.client.Call(host.CmdFunctions, host.FunctionsParams{Filter: filter}, &res)
	return res, err
}

func (b daemonBackend) SyncLine(line int) (host.SyncResult, error) {
	var res host.SyncResult
	err := b.client.Call(host.CmdSync, host.LineParams{Line: line}, &res)
	return res, err
}

func (b daemonBackend) Copy(function, block string) (host.CopyResult, error) {
	var res host.CopyResult
	err := b.client.Call(host.CmdCopy, host.BlockParams{Function: function, Block: block}, &res)
	return res, err
}

func (b daemonBackend) Layout(function string) (*layout.FunctionLayout, error) {
	var res layout.FunctionLayout
	if err := b.client.Call(host.CmdLayout, host.FunctionParams{Function: function}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (b daemonBackend) Close() error { return b.client.Close() }

// newSession builds an in-process host session from the loaded config.
func (o *rootOptions) newSession(clipboard func(string) error) *host.Session {
	return host.NewSession(host.Options{
		Version:   o.version,
		Logger:    o.logger,
		Cache:     cache.NewModules(o.cfg.CacheSize),
		Sizer:     o.sizer(),
		Space:     o.space(),
		Clipboard: clipboard,
	})
}

func (o *rootOptions) sizer() layout.TextSizer {
	return layout.TextSizer{
		CharWidth:  o.cfg.Layout.CharWidth,
		LineHeight: o.cfg.Layout.LineHeight,
		Padding:    o.cfg.Layout.Padding,
	}
}

func (o *rootOptions) space() layout.LayeredOptions {
	return layout.LayeredOptions{
		NodeSpacing:  o.cfg.Layout.NodeSpacing,
		LayerSpacing: o.cfg.Layout.LayerSpacing,
	}
}

// open reads path ("-" for stdin) and loads it into a backend. The daemon
// is used only when --daemon was given and it answers.
func (o *rootOptions) open(path string, stdin io.Reader) (backend, host.LoadResult, error) {
	text, err := readSource(path, stdin)
	if err != nil {
		return nil, host.LoadResult{}, err
	}

	var b backend = localBackend{o.newSession(nil)}
	if o.useDaemon {
		if c, err := daemon.Dial(o.cfg.SocketPath); err == nil {
			b = daemonBackend{client: c}
		} else {
			o.logger.Warn("daemon unavailable, parsing locally", "error", err)
		}
	}

	res, err := b.Load(path, text)
	if err != nil {
		b.Close()
		return nil, host.LoadResult{}, err
	}
	if _, remote := b.(daemonBackend); remote {
		for _, d := range res.Diagnostics {
			o.logger.Warn(d.Message, "path", path, "line", d.Line, "function", d.Function, "kind", string(d.Kind))
		}
	}
	return b, res, nil
}

// checkStrict fails when strict mode is on and the load reported problems.
func (o *rootOptions) checkStrict(res host.LoadResult) error {
	if o.cfg.Strict && len(res.Diagnostics) > 0 {
		return fmt.Errorf("%w: %d in %s", ErrDiagnostics, len(res.Diagnostics), res.Path)
	}
	return nil
}

func readSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, expected a file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}
