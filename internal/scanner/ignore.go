package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// IgnorePattern is one gitignore-style line.
type IgnorePattern struct {
	raw      string
	negate   bool // leading !
	dirOnly  bool // trailing /
	anchored bool // leading / or a slash inside the pattern
	g        glob.Glob
}

// ParseIgnorePattern compiles a gitignore-style pattern. `*` and `?` stay
// within one path segment, `**` crosses segments. A pattern without a slash
// matches at any depth; one with a slash is relative to the ignore file's
// directory.
func ParseIgnorePattern(line string) (IgnorePattern, error) {
	p := IgnorePattern{raw: line}
	pattern := line

	if strings.HasPrefix(pattern, "!") {
		p.negate = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		p.anchored = true
		pattern = pattern[1:]
	} else if strings.Contains(pattern, "/") {
		p.anchored = true
	}
	if pattern == "" {
		return p, fmt.Errorf("empty ignore pattern %q", line)
	}

	expr := pattern
	if !p.anchored && !strings.HasPrefix(pattern, "**") {
		expr = "{" + pattern + ",**/" + pattern + "}"
	}
	g, err := glob.Compile(expr, '/')
	if err != nil {
		return p, fmt.Errorf("compiling ignore pattern %q: %w", line, err)
	}
	p.g = g
	return p, nil
}

// Match reports whether the slash-separated relative path matches. Negation
// is left to the caller.
func (p IgnorePattern) Match(path string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	return p.g.Match(filepath.ToSlash(path))
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.negate
}

// String returns the pattern as written.
func (p IgnorePattern) String() string {
	return p.raw
}

// scopedPattern is a pattern read from an ignore file in base (relative to
// the scan root, "" for the root itself).
type scopedPattern struct {
	base string
	IgnorePattern
}

// ignoreSet evaluates patterns in order; a later match overrides an earlier
// one, so negations can re-include.
type ignoreSet []scopedPattern

func (s ignoreSet) ignored(relPath string, isDir bool) bool {
	ignored := false
	for _, sp := range s {
		rel := relPath
		if sp.base != "" {
			if !strings.HasPrefix(relPath, sp.base+"/") {
				continue
			}
			rel = strings.TrimPrefix(relPath, sp.base+"/")
		}
		if sp.Match(rel, isDir) {
			ignored = !sp.IsNegation()
		}
	}
	return ignored
}

// loadIgnoreFile reads patterns from path. A missing file yields no
// patterns. Blank lines and # comments are skipped.
func loadIgnoreFile(path, base string) (ignoreSet, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns ignoreSet
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := ParseIgnorePattern(line)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		patterns = append(patterns, scopedPattern{base: base, IgnorePattern: p})
	}
	return patterns, sc.Err()
}
