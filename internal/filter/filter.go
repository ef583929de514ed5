// Package filter decides whether filesystem entries are eligible for scanning.
package filter

import (
	"fmt"
	"path/filepath"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
)

// PathFilter prunes excluded directory subtrees and admits files by
// extension and size. The zero value admits everything.
type PathFilter struct {
	excludedRoots []string
	extensions    map[string]struct{} // lowercase, dot-prefixed; empty means all
	minSize       int64
	ignore        gitignore.GitIgnore
}

// New creates an empty PathFilter.
func New() *PathFilter {
	return &PathFilter{extensions: make(map[string]struct{})}
}

// AddExcludedRoot registers an absolute directory prefix to prune.
// Empty strings are dropped (unset environment lookups produce them).
func (f *PathFilter) AddExcludedRoot(root string) {
	if root == "" {
		return
	}
	f.excludedRoots = append(f.excludedRoots, filepath.Clean(root))
}

// SetExtensions replaces the extension allow-list. Each entry is lowercased
// and dot-prefixed if needed. An empty list means "match all".
func (f *PathFilter) SetExtensions(exts []string) {
	f.extensions = make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = struct{}{}
	}
}

// SetMinSize sets the minimum file size in bytes. Zero disables the floor.
func (f *PathFilter) SetMinSize(n int64) {
	f.minSize = n
}

// LoadIgnoreFile compiles gitignore-style patterns from path. Patterns are
// matched against paths relative to the scan root.
func (f *PathFilter) LoadIgnoreFile(path string) error {
	matcher, err := gitignore.NewFromFile(path)
	if err != nil {
		return fmt.Errorf("parse ignore file %s: %w", path, err)
	}
	f.ignore = matcher
	return nil
}

// AdmitDir reports whether the directory at path may be descended into.
// A directory is rejected when its path equals or is nested under any
// excluded root, so whole subtrees are pruned without enumeration.
func (f *PathFilter) AdmitDir(path string) bool {
	path = filepath.Clean(path)
	for _, root := range f.excludedRoots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return false
		}
	}
	if f.ignore != nil {
		if match := f.ignore.Match(path); match != nil && match.Ignore() {
			return false
		}
	}
	return true
}

// AdmitFile reports whether a regular file is eligible: its extension is in
// the allow-list (or the list is empty) and it meets the size floor.
func (f *PathFilter) AdmitFile(path string, size int64) bool {
	if f.minSize > 0 && size < f.minSize {
		return false
	}
	if len(f.extensions) > 0 {
		if _, ok := f.extensions[Extension(path)]; !ok {
			return false
		}
	}
	if f.ignore != nil {
		if match := f.ignore.Match(path); match != nil && match.Ignore() {
			return false
		}
	}
	return true
}

// Admit applies AdmitDir or AdmitFile depending on isDir. Size is ignored
// for directories.
func (f *PathFilter) Admit(path string, isDir bool, size int64) bool {
	if isDir {
		return f.AdmitDir(path)
	}
	return f.AdmitFile(path, size)
}

// Extension returns the lowercase extension of path including the leading
// dot, or "" when the base name has none.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
