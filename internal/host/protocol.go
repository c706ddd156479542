// Package host implements the editor-host side of llcfg: a newline-delimited
// JSON request/response protocol over any reader/writer pair, backed by a
// Session holding the current document snapshot.
package host

import (
	"encoding/json"

	"github.com/triskellib/vscode/pkg/cache"
	"github.com/triskellib/vscode/pkg/llvmir"
)

// Command types understood by a Session.
const (
	CmdSetFileContent = "setFileContent"
	CmdFunctions      = "functions"
	CmdCFG            = "cfg"
	CmdDiagnostics    = "diagnostics"
	CmdSync           = "sync"
	CmdSyncBlock      = "syncBlock"
	CmdCopy           = "copy"
	CmdGotoLine       = "gotoLine"
	CmdLayout         = "layout"
	CmdStatus         = "status"
	CmdStop           = "stop"
)

// Command is one inbound request.
type Command struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
	ID     string          `json:"id,omitempty"`
}

// Response answers a Command with the same ID.
type Response struct {
	ID     string          `json:"id,omitempty"`
	Type   string          `json:"type,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SetFileContentParams replaces the document snapshot.
type SetFileContentParams struct {
	Text string `json:"text"`
	Path string `json:"path,omitempty"`
}

// FunctionsParams filters the function list.
type FunctionsParams struct {
	Filter string `json:"filter,omitempty"`
}

// FunctionParams names a function.
type FunctionParams struct {
	Function string `json:"function"`
}

// BlockParams names a block. An empty Block means the function root.
type BlockParams struct {
	Function string `json:"function"`
	Block    string `json:"block,omitempty"`
}

// LineParams carries a 1-based source line.
type LineParams struct {
	Line int `json:"line"`
}

// LoadResult summarizes a setFileContent.
type LoadResult struct {
	Path        string              `json:"path,omitempty"`
	Functions   int                 `json:"functions"`
	Diagnostics []llvmir.Diagnostic `json:"diagnostics"`
	Cached      bool                `json:"cached"`
}

// SyncResult tells the view which block to reveal.
type SyncResult struct {
	Function     string `json:"function"`
	Block        string `json:"block"`
	FirstAddress int    `json:"first_address"`
}

// CopyResult holds the text of a block.
type CopyResult struct {
	Text string `json:"text"`
}

// GotoResult is the 0-based line the editor should reveal.
type GotoResult struct {
	Line int `json:"line"`
}

// StatusResult describes the session.
type StatusResult struct {
	Version   string      `json:"version"`
	Status    string      `json:"status"`
	Path      string      `json:"path,omitempty"`
	Loaded    bool        `json:"loaded"`
	Functions int         `json:"functions"`
	Cache     cache.Stats `json:"cache"`
}
