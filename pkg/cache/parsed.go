package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/triskellib/vscode/pkg/llvmir"
)

// DefaultMaxModules is the number of parsed documents kept by default.
const DefaultMaxModules = 16

// Key hashes a document. Line endings are normalized first so a CRLF and an
// LF copy of the same text share an entry.
func Key(text string) string {
	sum := sha256.Sum256([]byte(strings.ReplaceAll(text, "\r\n", "\n")))
	return hex.EncodeToString(sum[:])
}

// Modules caches parse results by document content. A document that
// changes hashes to a new key, so every edit still triggers a full reparse.
type Modules struct {
	*LRU[*llvmir.Result]
}

// NewModules creates a module cache holding at most maxSize documents. A
// non-positive size falls back to DefaultMaxModules.
func NewModules(maxSize int) *Modules {
	if maxSize <= 0 {
		maxSize = DefaultMaxModules
	}
	return &Modules{LRU: New(Options[*llvmir.Result]{MaxSize: maxSize})}
}

// Parse returns the cached result for text, parsing it on a miss. Callers
// must treat the result as read-only.
func (m *Modules) Parse(text string) (res *llvmir.Result, hit bool) {
	key := Key(text)
	if res, ok := m.Get(key); ok {
		return res, true
	}
	res = llvmir.Parse(text)
	m.Set(key, res)
	return res, false
}
