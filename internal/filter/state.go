// Package filter narrows a tree by preset, fork and runner facets plus a free-text search.
package filter

import "strings"

// Facet identifies one of the three single-select dimensions.
type Facet int

const (
	FacetPreset Facet = iota
	FacetFork
	FacetRunner
)

// Facets lists every facet in display order.
var Facets = []Facet{FacetPreset, FacetFork, FacetRunner}

func (f Facet) String() string {
	switch f {
	case FacetPreset:
		return "preset"
	case FacetFork:
		return "fork"
	default:
		return "runner"
	}
}

// Choice is an optional facet value.
type Choice struct {
	value string
	set   bool
}

// Some returns a Choice holding v.
func Some(v string) Choice {
	return Choice{value: v, set: true}
}

// None is the empty Choice.
var None = Choice{}

// Get returns the value and whether one is set.
func (c Choice) Get() (string, bool) {
	return c.value, c.set
}

// IsSet reports whether a value is selected.
func (c Choice) IsSet() bool {
	return c.set
}

// Is reports whether the choice holds exactly v.
func (c Choice) Is(v string) bool {
	return c.set && c.value == v
}

// Admits reports whether a tag passes this choice. An unset choice admits everything,
// a set choice admits only an equal tag, so untagged nodes never match an active facet.
func (c Choice) Admits(tag string) bool {
	return !c.set || c.value == tag
}

// State is the user's current filter selection.
type State struct {
	Preset Choice
	Fork   Choice
	Runner Choice
	Search string
}

// Choice returns the selection of one facet.
func (s State) Choice(f Facet) Choice {
	switch f {
	case FacetPreset:
		return s.Preset
	case FacetFork:
		return s.Fork
	default:
		return s.Runner
	}
}

func (s *State) set(f Facet, c Choice) {
	switch f {
	case FacetPreset:
		s.Preset = c
	case FacetFork:
		s.Fork = c
	default:
		s.Runner = c
	}
}

// Toggle selects value in a facet, replacing any previous value; selecting the current value clears the facet.
func (s *State) Toggle(f Facet, value string) {
	if s.Choice(f).Is(value) {
		s.set(f, None)
		return
	}
	s.set(f, Some(value))
}

// Clear removes every facet selection and the search term.
func (s *State) Clear() {
	*s = State{}
}

// Active reports whether any predicate narrows the tree.
func (s State) Active() bool {
	return s.Preset.IsSet() || s.Fork.IsSet() || s.Runner.IsSet() || strings.TrimSpace(s.Search) != ""
}
