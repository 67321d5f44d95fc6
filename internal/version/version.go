// Package version validates fixture release identifiers and maintains the version registry.
package version

import (
	"fmt"
	"regexp"
	"sort"
)

// Pattern matches v<major>.<minor>.<patch> with an optional suffix such as -beta.0.
var Pattern = regexp.MustCompile(`^v(\d+)\.(\d+)\.(\d+)([0-9A-Za-z.+-]*)$`)

// Validate checks that a version identifier is well formed.
func Validate(version string) error {
	if !Pattern.MatchString(version) {
		return fmt.Errorf("invalid version format: %q (expected v<major>.<minor>.<patch>[suffix])", version)
	}
	return nil
}

// Registry is the persisted list of prepared versions.
type Registry struct {
	Versions []string `json:"versions"`
}

// Add merges a version into the registry and re-sorts the whole set.
// It reports whether the version was new.
func (r *Registry) Add(version string) (bool, error) {
	if err := Validate(version); err != nil {
		return false, err
	}
	added := !r.Contains(version)
	if added {
		r.Versions = append(r.Versions, version)
	}
	r.Versions = Sort(r.Versions)
	return added, nil
}

// Contains reports whether version is registered.
func (r *Registry) Contains(version string) bool {
	for _, v := range r.Versions {
		if v == version {
			return true
		}
	}
	return false
}

// Latest returns the first version in registry order, or "" when empty.
func (r *Registry) Latest() string {
	if len(r.Versions) == 0 {
		return ""
	}
	return r.Versions[0]
}

// Sort removes duplicates and orders versions by descending string comparison.
// This is not semver precedence: v1.10.0 sorts after v1.9.0 and v1.6.0-beta.0 before v1.6.0.
func Sort(versions []string) []string {
	seen := make(map[string]bool, len(versions))
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}
