package filter

import (
	"strings"

	"fixview/internal/tree"
)

// Result summarizes a filter pass.
type Result struct {
	VisibleLeaves int
	VisibleNodes  int
}

// Matches reports whether a node passes every active predicate on its own label and tags.
func Matches(n *tree.Node, s State) bool {
	term := strings.ToLower(strings.TrimSpace(s.Search))
	if term != "" && !strings.Contains(strings.ToLower(n.Label), term) {
		return false
	}
	return s.Preset.Admits(n.Tags.Preset) &&
		s.Fork.Admits(n.Tags.Fork) &&
		s.Runner.Admits(n.Tags.Runner)
}

// Apply recomputes visibility for every node of ix.
// A leaf is visible when it matches; an inner node is visible exactly when it has a visible leaf below it.
// While a filter is active, every ancestor of a visible leaf is expanded.
func Apply(ix *tree.Index, s State) Result {
	ix.Walk(func(n *tree.Node) bool {
		n.Visible = false
		return true
	})

	active := s.Active()
	var res Result
	for _, leaf := range ix.Leaves {
		if !Matches(leaf, s) {
			continue
		}
		leaf.Visible = true
		res.VisibleLeaves++
		for _, a := range leaf.Ancestors() {
			a.Visible = true
			if active {
				a.Expanded = true
			}
		}
	}

	ix.Walk(func(n *tree.Node) bool {
		if n.Visible {
			res.VisibleNodes++
		}
		return true
	})
	return res
}

// Button is the render state of one facet value.
type Button struct {
	Facet    Facet
	Value    string
	Selected bool
	Enabled  bool
}

// Available reports whether selecting value in facet f would still leave at least one manifest
// combination compatible with the selections of the other two facets.
func Available(ix *tree.Index, s State, f Facet, value string) bool {
	for t := range ix.Triples {
		if tripleValue(t, f) != value {
			continue
		}
		ok := true
		for _, other := range Facets {
			if other != f && !s.Choice(other).Admits(tripleValue(t, other)) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func tripleValue(t tree.Triple, f Facet) string {
	switch f {
	case FacetPreset:
		return t.Preset
	case FacetFork:
		return t.Fork
	default:
		return t.Runner
	}
}

// Buttons returns the button states of one facet in display order.
// A selected value stays selected even when it is no longer available.
func Buttons(ix *tree.Index, s State, f Facet) []Button {
	var values []string
	switch f {
	case FacetPreset:
		values = ix.Presets
	case FacetFork:
		values = ix.Forks
	default:
		values = ix.Runners
	}

	buttons := make([]Button, 0, len(values))
	for _, v := range values {
		buttons = append(buttons, Button{
			Facet:    f,
			Value:    v,
			Selected: s.Choice(f).Is(v),
			Enabled:  Available(ix, s, f, v),
		})
	}
	return buttons
}

// VisibleLeaves returns the visible test case nodes in display order.
func VisibleLeaves(ix *tree.Index) []*tree.Node {
	var out []*tree.Node
	for _, leaf := range ix.Leaves {
		if leaf.Visible {
			out = append(out, leaf)
		}
	}
	return out
}
