package discovery

import (
	"path/filepath"
	"strings"
)

// Filter narrows relative fixture paths by a wildcard pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByPattern keeps paths matching pattern.
// Supports patterns like "*/phase0/*" or "*BeaconState*"; a pattern without wildcards is a substring match.
func (f *Filter) FilterByPattern(paths []string, pattern string) []string {
	if pattern == "" {
		return paths
	}

	var filtered []string

	for _, p := range paths {
		// Try to match the whole path, then the base name (supports * and ? wildcards)
		if matched, err := filepath.Match(pattern, p); err == nil && matched {
			filtered = append(filtered, p)
			continue
		}
		if matched, err := filepath.Match(pattern, filepath.Base(p)); err == nil && matched {
			filtered = append(filtered, p)
			continue
		}

		// filepath.Match stops at separators, so fall back to matching the literal parts in order
		if strings.ContainsAny(pattern, "*?") {
			if matchParts(p, pattern) {
				filtered = append(filtered, p)
			}
			continue
		}

		if strings.Contains(p, pattern) {
			filtered = append(filtered, p)
		}
	}

	return filtered
}

func matchParts(p, pattern string) bool {
	parts := strings.FieldsFunc(pattern, func(r rune) bool { return r == '*' || r == '?' })
	if len(parts) == 0 {
		return false
	}
	rest := p
	for _, part := range parts {
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}
	return true
}
