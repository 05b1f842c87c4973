// Package library lists pre-existing clips from a user directory so a run can skip remote search.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extensions is the set of file extensions treated as usable material (compared case-insensitively).
var Extensions = []string{".mp4", ".mov"}

// Scan returns absolute paths of the clips directly inside dir, in directory-listing order.
// Subdirectories are not descended into. A missing dir yields an error wrapping os.ErrNotExist.
func Scan(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsClip(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(abs, e.Name()))
	}
	return out, nil
}

// IsClip reports whether name has one of Extensions.
func IsClip(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
