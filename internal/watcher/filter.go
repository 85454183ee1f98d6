package watcher

import (
	"path/filepath"
	"strings"
)

// DefaultIgnorePatterns returns glob patterns for temporary and editor swap
// files that appear next to the fwdata file while it is being saved.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.partial",
		"*.swp",
		"*.swx",
		"*~",
		".~*",  // office lock files
		"4913", // vim checks directory writability with this file
	}
}

// FileFilter decides which file names the watcher ignores.
type FileFilter struct {
	patterns []string
}

// NewFileFilter creates a FileFilter. Nil or empty patterns select the defaults.
func NewFileFilter(patterns []string) *FileFilter {
	if len(patterns) == 0 {
		patterns = DefaultIgnorePatterns()
	}
	return &FileFilter{
		patterns: patterns,
	}
}

// ShouldIgnore reports whether the base name of path matches any pattern.
// Patterns use filepath.Match syntax; a pattern starting with "." and
// containing no "*" also matches as a case-insensitive suffix.
func (f *FileFilter) ShouldIgnore(path string) bool {
	filename := filepath.Base(path)

	for _, pattern := range f.patterns {
		if matched, err := filepath.Match(pattern, filename); err == nil && matched {
			return true
		}

		if strings.HasPrefix(pattern, ".") && !strings.Contains(pattern, "*") {
			if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(pattern)) {
				return true
			}
		}
	}
	return false
}

// Patterns returns a copy of the ignore patterns.
func (f *FileFilter) Patterns() []string {
	result := make([]string, len(f.patterns))
	copy(result, f.patterns)
	return result
}
