// Package filter decides which asset paths are left out of a bundle.
package filter

import (
	"fmt"
	"strings"

	"github.com/idelchi/assetpack/pkg/pathmatch"
)

// Filter excludes asset-relative paths matching any of its patterns.
// A nil *Filter excludes nothing.
type Filter struct {
	excludes pathmatch.Set
}

// New compiles exclude patterns into a reusable filter.
// Leading "./" is stripped so patterns match cleaned relative paths.
func New(excludes []string) (*Filter, error) {
	normalized := make([]string, len(excludes))

	for i, p := range excludes {
		normalized[i] = strings.TrimPrefix(p, "./")
	}

	set, err := pathmatch.NewSet(normalized)
	if err != nil {
		return nil, fmt.Errorf("compiling exclude patterns: %w", err)
	}

	return &Filter{excludes: set}, nil
}

// Excluded reports whether the slash-separated relative path is excluded.
func (f *Filter) Excluded(path string) bool {
	if f == nil {
		return false
	}

	return f.excludes.MatchAny(path)
}

// Len returns the number of patterns.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}

	return len(f.excludes)
}
