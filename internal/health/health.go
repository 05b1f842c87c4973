// Package health runs preflight checks: catalog reachability, cache dir
// writability and local library readability.
package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/snapetech/clipstock/internal/aspect"
	"github.com/snapetech/clipstock/internal/library"
	"github.com/snapetech/clipstock/internal/material"
)

// ProbeTerm is the query used to check that a catalog answers.
const ProbeTerm = "nature"

// Searcher is the slice of provider.Searcher the provider check needs.
type Searcher interface {
	Name() string
	Search(ctx context.Context, term string, minDuration float64, a aspect.Aspect) ([]material.Candidate, error)
}

// Result is the outcome of one named check.
type Result struct {
	Name   string
	Detail string
	Err    error
}

func (r Result) OK() bool { return r.Err == nil }

// CheckProvider runs one catalog search for ProbeTerm. Returns nil if the catalog answered
// with a well-formed page (an empty page is fine), error with message if not.
func CheckProvider(ctx context.Context, s Searcher, a aspect.Aspect) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("no provider configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	found, err := s.Search(ctx, ProbeTerm, 0, a)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.Name(), err)
	}
	return len(found), nil
}

// CheckCacheDir creates dir if needed and verifies a file can be written and renamed in it,
// which is what every download does.
func CheckCacheDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("no cache dir configured")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".check-*.partial")
	if err != nil {
		return fmt.Errorf("cache dir not writable: %w", err)
	}
	tmp := f.Name()
	f.Close()
	final := filepath.Join(dir, ".check")
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache dir rename: %w", err)
	}
	return os.Remove(final)
}

// CheckLibrary scans dir and returns how many clips it holds.
func CheckLibrary(dir string) (int, error) {
	paths, err := library.Scan(dir)
	if err != nil {
		return 0, err
	}
	return len(paths), nil
}
