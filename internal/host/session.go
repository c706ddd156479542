package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/triskellib/vscode/internal/log"
	"github.com/triskellib/vscode/pkg/cache"
	"github.com/triskellib/vscode/pkg/cfg"
	"github.com/triskellib/vscode/pkg/export"
	"github.com/triskellib/vscode/pkg/layout"
	"github.com/triskellib/vscode/pkg/llvmir"
)

// ErrNoDocument is returned by queries issued before setFileContent.
var ErrNoDocument = errors.New("no document loaded")

// Options configures a Session.
type Options struct {
	Version string
	Logger  log.Logger
	// Cache is shared between sessions of one daemon. Nil creates a private
	// cache.
	Cache *cache.Modules
	Sizer layout.TextSizer
	Space layout.LayeredOptions
	// Clipboard, when set, also receives the text of copy commands.
	Clipboard func(text string) error
	// OnStop runs once when a stop command is handled.
	OnStop func()
}

// Session holds one document snapshot and answers host commands against it.
// Queries never mutate the parsed module. Safe for concurrent use.
type Session struct {
	opts Options

	mu     sync.RWMutex
	path   string
	text   string
	result *llvmir.Result

	stopOnce sync.Once
	done     chan struct{}
}

// NewSession creates a session with no document.
func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewModules(0)
	}
	if opts.Sizer == (layout.TextSizer{}) {
		opts.Sizer = layout.DefaultTextSizer()
	}
	if opts.Space == (layout.LayeredOptions{}) {
		opts.Space = layout.DefaultLayeredOptions()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Session{opts: opts, done: make(chan struct{})}
}

// Done is closed after a stop command.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Load replaces the document snapshot. The parse is served from the cache
// when the same text was seen before.
func (s *Session) Load(path, text string) LoadResult {
	res, hit := s.opts.Cache.Parse(text)
	for _, d := range res.Diagnostics {
		s.opts.Logger.Warn(d.Message, "path", path, "line", d.Line, "function", d.Function, "kind", string(d.Kind))
	}
	s.opts.Logger.Debug("document loaded", "path", path, "functions", len(res.Module.Functions), "cached", hit)

	s.mu.Lock()
	s.path, s.text, s.result = path, text, res
	s.mu.Unlock()

	diags := res.Diagnostics
	if diags == nil {
		diags = []llvmir.Diagnostic{}
	}
	return LoadResult{Path: path, Functions: len(res.Module.Functions), Diagnostics: diags, Cached: hit}
}

func (s *Session) snapshot() (string, *llvmir.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return "", nil, ErrNoDocument
	}
	return s.text, s.result, nil
}

// Functions lists functions matching filter with their block counts.
func (s *Session) Functions(filter string) ([]export.FunctionSummary, error) {
	_, res, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return export.Summaries(res.Module, filter), nil
}

// Function returns a parsed function by name.
func (s *Session) Function(name string) (*cfg.Function, error) {
	_, res, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return res.Module.Function(name)
}

// Diagnostics returns the diagnostics of the current snapshot.
func (s *Session) Diagnostics() ([]llvmir.Diagnostic, error) {
	_, res, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return res.Diagnostics, nil
}

// Block resolves a block by name; an empty name means the function root.
func (s *Session) Block(function, block string) (*cfg.BasicBlock, error) {
	fn, err := s.Function(function)
	if err != nil {
		return nil, err
	}
	if block == "" {
		block = fn.Root
	}
	return fn.Block(block)
}

// SyncLine finds the block containing a 1-based source line.
func (s *Session) SyncLine(line int) (SyncResult, error) {
	text, _, err := s.snapshot()
	if err != nil {
		return SyncResult{}, err
	}
	loc, err := llvmir.Locate(text, line)
	if err != nil {
		return SyncResult{}, err
	}
	return s.SyncBlock(loc.Function, loc.Block)
}

// SyncBlock resolves a function/block pair for the view.
func (s *Session) SyncBlock(function, block string) (SyncResult, error) {
	bb, err := s.Block(function, block)
	if err != nil {
		return SyncResult{}, err
	}
	return SyncResult{Function: function, Block: bb.Name, FirstAddress: bb.FirstAddress}, nil
}

// Copy returns a block's instruction text, one instruction per line.
func (s *Session) Copy(function, block string) (CopyResult, error) {
	bb, err := s.Block(function, block)
	if err != nil {
		return CopyResult{}, err
	}
	text := bb.Text()
	if s.opts.Clipboard != nil {
		if err := s.opts.Clipboard(text); err != nil {
			s.opts.Logger.Warn("clipboard write failed", "error", err)
		}
	}
	return CopyResult{Text: text}, nil
}

// GotoLine converts a 1-based line from the view to the 0-based line the
// editor reveals.
func GotoLine(line int) GotoResult {
	return GotoResult{Line: max(0, line-1)}
}

// Layout places the reachable blocks of a function.
func (s *Session) Layout(function string) (*layout.FunctionLayout, error) {
	fn, err := s.Function(function)
	if err != nil {
		return nil, err
	}
	return layout.Run(fn, s.opts.Sizer, layout.NewLayered(s.opts.Space))
}

// Status reports the session state.
func (s *Session) Status() StatusResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := StatusResult{
		Version: s.opts.Version,
		Status:  "running",
		Path:    s.path,
		Loaded:  s.result != nil,
		Cache:   s.opts.Cache.Stats(),
	}
	if s.result != nil {
		st.Functions = len(s.result.Module.Functions)
	}
	return st
}

// Stop marks the session done and runs OnStop once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.opts.OnStop != nil {
			s.opts.OnStop()
		}
	})
}

// Handle answers one command. Errors are reported in the response.
func (s *Session) Handle(cmd Command) Response {
	result, err := s.dispatch(cmd)
	if err != nil {
		return Response{ID: cmd.ID, Type: cmd.Type, Error: err.Error()}
	}
	data, err := json.Marshal(result)
	if err != nil {
		return Response{ID: cmd.ID, Type: cmd.Type, Error: fmt.Sprintf("marshal error: %v", err)}
	}
	return Response{ID: cmd.ID, Type: cmd.Type, Result: data}
}

func (s *Session) dispatch(cmd Command) (any, error) {
	switch cmd.Type {
	case CmdSetFileContent:
		var p SetFileContentParams
		if err := decodeParams(cmd, &p); err != nil {
			return nil, err
		}
		return s.Load(p.Path, p.Text), nil

	case CmdFunctions:
		var p FunctionsParams
		if err := decodeParams(cmd, &p); err != nil {
			return nil, err
		}
		return s.Functions(p.Filter)

	case CmdCFG:
		var p FunctionParams
		if err := decodeParams(cmd, &p); err != nil {
			return nil, err
		}
		fn, err := s.Function(p.Function)
		if err != nil {
			return nil, err
		}
		return export.NewFunctionSnapshot(fn), nil

	case CmdDiagnostics:
		return s.Diagnostics()

	case CmdSync:
		var p LineParams
		if err := decodeParams(cmd, &p); err != nil {
			return nil, err
		}
		return s.SyncLine(p.Line)

	case CmdSyncBlock:
		var p BlockParams
		if err := decodeParams(cmd, &p); err != nil {
			return nil, err
		}
		return s.SyncBlock(p.Function, p.Block)

	case CmdCopy:
		var p BlockParams
		if err := decodeParams(cmd, &p); err != nil {
			return nil, err
		}
		return s.Copy(p.Function, p.Block)

	case CmdGotoLine:
		var p LineParams
		if err := decodeParams(cmd, &p); err != nil {
			return nil, err
		}
		return GotoLine(p.Line), nil

	case CmdLayout:
		var p FunctionParams
		if err := decodeParams(cmd, &p); err != nil {
			return nil, err
		}
		return s.Layout(p.Function)

	case CmdStatus:
		return s.Status(), nil

	case CmdStop:
		s.Stop()
		return map[string]string{"status": "stopped"}, nil

	default:
		return nil, fmt.Errorf("unknown command: %s", cmd.Type)
	}
}

func decodeParams(cmd Command, v any) error {
	if len(cmd.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(cmd.Params, v); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}
