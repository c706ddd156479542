// Package dirty remembers what a previous scan found in each file so an
// incremental scan only reparses files whose content changed.
package dirty

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/triskellib/vscode/pkg/cache"
	"github.com/triskellib/vscode/pkg/llvmir"
)

// DefaultCacheDir is the default directory for storing scan state.
const DefaultCacheDir = ".llcfg/cache"

// DefaultCacheFile is the default filename for scan state.
const DefaultCacheFile = "scan.json"

// stateVersion is bumped whenever Entry changes shape. Files written with
// another version are ignored.
const stateVersion = 1

// Entry is what a scan recorded about one file.
type Entry struct {
	Path        string              `json:"path"`
	Hash        string              `json:"hash"`
	Functions   int                 `json:"functions"`
	Blocks      int                 `json:"blocks"`
	Diagnostics []llvmir.Diagnostic `json:"diagnostics,omitempty"`
	ScannedAt   int64               `json:"scanned_at"`
}

type stateData struct {
	Version int     `json:"version"`
	Files   []Entry `json:"files"`
}

// Tracker holds scan entries keyed by path. It is safe for concurrent use.
type Tracker struct {
	mu        sync.RWMutex
	files     map[string]Entry
	cacheDir  string
	cacheFile string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCacheDir sets the directory the state file lives in.
func WithCacheDir(dir string) Option {
	return func(t *Tracker) {
		t.cacheDir = dir
	}
}

// WithCacheFile sets the state file name.
func WithCacheFile(name string) Option {
	return func(t *Tracker) {
		t.cacheFile = name
	}
}

// New creates an empty Tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		files:     make(map[string]Entry),
		cacheDir:  DefaultCacheDir,
		cacheFile: DefaultCacheFile,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewFromCache creates a Tracker and loads any saved state.
func NewFromCache(opts ...Option) (*Tracker, error) {
	t := New(opts...)
	if err := t.Load(); err != nil {
		return nil, err
	}
	return t, nil
}

// Hash returns the content key used to detect changes. It matches the key
// of the in-memory parse cache.
func Hash(text string) string {
	return cache.Key(text)
}

// Lookup returns the entry for path when its recorded hash equals hash.
func (t *Tracker) Lookup(path, hash string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.files[path]
	if !ok || e.Hash != hash {
		return Entry{}, false
	}
	return e, true
}

// Changed reports whether path is new or its content differs from the last
// recorded scan.
func (t *Tracker) Changed(path, hash string) bool {
	_, ok := t.Lookup(path, hash)
	return !ok
}

// Record stores the result of scanning a file.
func (t *Tracker) Record(e Entry) {
	if e.ScannedAt == 0 {
		e.ScannedAt = time.Now().Unix()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files[e.Path] = e
}

// Prune drops entries for paths not in keep and returns how many were
// removed.
func (t *Tracker) Prune(keep []string) int {
	seen := make(map[string]struct{}, len(keep))
	for _, p := range keep {
		seen[p] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for p := range t.files {
		if _, ok := seen[p]; !ok {
			delete(t.files, p)
			removed++
		}
	}
	return removed
}

// Remove removes a file from tracking.
func (t *Tracker) Remove(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.files, path)
}

// Clear removes all tracked files.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = make(map[string]Entry)
}

// Len returns the number of tracked files.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.files)
}

// CachePath returns the full path to the state file.
func (t *Tracker) CachePath() string {
	return filepath.Join(t.cacheDir, t.cacheFile)
}

// Save persists the state to the cache file.
func (t *Tracker) Save() error {
	if err := os.MkdirAll(t.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.Create(t.CachePath())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	return t.SaveTo(f)
}

// Load restores the state from the cache file. A missing file or one
// written by another version leaves the tracker empty.
func (t *Tracker) Load() error {
	f, err := os.Open(t.CachePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	return t.LoadFrom(f)
}

// SaveTo writes the state to w, sorted by path.
func (t *Tracker) SaveTo(w io.Writer) error {
	t.mu.RLock()
	files := make([]Entry, 0, len(t.files))
	for _, e := range t.files {
		files = append(files, e)
	}
	t.mu.RUnlock()

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stateData{Version: stateVersion, Files: files}); err != nil {
		return fmt.Errorf("failed to encode scan state: %w", err)
	}
	return nil
}

// LoadFrom reads the state from r, replacing what the tracker holds.
func (t *Tracker) LoadFrom(r io.Reader) error {
	var data stateData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode scan state: %w", err)
	}

	files := make(map[string]Entry, len(data.Files))
	if data.Version == stateVersion {
		for _, e := range data.Files {
			files[e.Path] = e
		}
	}

	t.mu.Lock()
	t.files = files
	t.mu.Unlock()
	return nil
}
