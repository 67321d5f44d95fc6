// Package tree rebuilds the preset/fork/type/suite/config/case hierarchy of a manifest as records
// that the filter computes visibility over and the renderer observes.
package tree

import (
	"sort"

	"fixview/internal/domain"
	"fixview/internal/manifest"
)

// Level is the depth of a node in the hierarchy.
type Level int

const (
	LevelPreset Level = iota
	LevelFork
	LevelTestType
	LevelTestSuite
	LevelConfig
	LevelTestCase
)

var levelNames = [...]string{"preset", "fork", "test type", "test suite", "config", "test case"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// Tags are the facet values a node carries. An empty value means the node is not tagged for that facet.
// Preset nodes carry only a preset, fork nodes a preset and fork, deeper nodes all three.
type Tags struct {
	Preset string
	Fork   string
	Runner string
}

// LeafRef is everything needed to load a test case.
type LeafRef struct {
	Version string
	Key     domain.HierarchyKey
	Path    string
	Files   []string
}

// Node is one record of the tree.
type Node struct {
	Label    string
	Level    Level
	Tags     Tags
	Parent   *Node
	Children []*Node
	Leaf     *LeafRef // non-nil on test case nodes
	Count    int      // test cases at or below this node

	Visible  bool
	Expanded bool
}

// IsLeaf reports whether the node is a test case.
func (n *Node) IsLeaf() bool {
	return n.Leaf != nil
}

// Triple is one preset/fork/runner combination present in the manifest.
type Triple struct {
	Preset string
	Fork   string
	Runner string
}

// Index is a tree built from one manifest.
type Index struct {
	Version string
	Roots   []*Node
	Leaves  []*Node

	Presets []string
	Forks   []string
	Runners []string
	Triples map[Triple]bool
}

// Build constructs the tree for a manifest. Every node starts visible and collapsed.
func Build(m *manifest.Manifest) *Index {
	ix := &Index{Version: m.Version, Triples: make(map[Triple]bool)}
	root := &Node{}
	byPath := make(map[string]*Node)

	child := func(parent *Node, path, label string, level Level, tags Tags) *Node {
		if n, ok := byPath[path]; ok {
			return n
		}
		n := &Node{Label: label, Level: level, Tags: tags, Visible: true}
		if parent != root {
			n.Parent = parent
		}
		parent.Children = append(parent.Children, n)
		byPath[path] = n
		return n
	}

	m.Walk(func(key domain.HierarchyKey, entry manifest.TestCaseEntry) {
		full := Tags{Preset: key.Preset, Fork: key.Fork, Runner: key.TestType}
		ix.Triples[Triple{Preset: key.Preset, Fork: key.Fork, Runner: key.TestType}] = true

		p := "\x00" + key.Preset
		preset := child(root, p, key.Preset, LevelPreset, Tags{Preset: key.Preset})
		p += "\x00" + key.Fork
		fork := child(preset, p, key.Fork, LevelFork, Tags{Preset: key.Preset, Fork: key.Fork})
		p += "\x00" + key.TestType
		testType := child(fork, p, key.TestType, LevelTestType, full)
		p += "\x00" + key.TestSuite
		suite := child(testType, p, key.TestSuite, LevelTestSuite, full)
		p += "\x00" + key.Config
		config := child(suite, p, key.Config, LevelConfig, full)

		leaf := &Node{
			Label:   key.TestCase,
			Level:   LevelTestCase,
			Tags:    full,
			Parent:  config,
			Visible: true,
			Count:   1,
			Leaf: &LeafRef{
				Version: m.Version,
				Key:     key,
				Path:    entry.Path,
				Files:   append([]string(nil), entry.Files...),
			},
		}
		config.Children = append(config.Children, leaf)
		ix.Leaves = append(ix.Leaves, leaf)
	})

	ix.Roots = root.Children
	sortChildren(ix.Roots, LevelPreset)
	for _, n := range ix.Roots {
		countLeaves(n)
	}
	ix.Leaves = ix.Leaves[:0]
	ix.Walk(func(n *Node) bool {
		if n.IsLeaf() {
			ix.Leaves = append(ix.Leaves, n)
		}
		return true
	})

	ix.Presets, ix.Forks, ix.Runners = facetValues(ix.Triples)
	return ix
}

func sortChildren(nodes []*Node, level Level) {
	switch level {
	case LevelTestCase:
		// Test cases keep manifest order.
	case LevelFork:
		sort.SliceStable(nodes, func(i, j int) bool {
			return CompareForks(nodes[i].Label, nodes[j].Label) < 0
		})
	default:
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].Label < nodes[j].Label
		})
	}
	for _, n := range nodes {
		if len(n.Children) > 0 {
			sortChildren(n.Children, level+1)
		}
	}
}

func countLeaves(n *Node) int {
	if n.IsLeaf() {
		return n.Count
	}
	n.Count = 0
	for _, c := range n.Children {
		n.Count += countLeaves(c)
	}
	return n.Count
}

func facetValues(triples map[Triple]bool) (presets, forks, runners []string) {
	seen := map[string]bool{}
	add := func(list *[]string, facet, v string) {
		if !seen[facet+"\x00"+v] {
			seen[facet+"\x00"+v] = true
			*list = append(*list, v)
		}
	}
	for t := range triples {
		add(&presets, "preset", t.Preset)
		add(&forks, "fork", t.Fork)
		add(&runners, "runner", t.Runner)
	}
	sort.Strings(presets)
	SortForks(forks)
	sort.Strings(runners)
	return presets, forks, runners
}

// Walk visits nodes depth-first in display order; returning false skips a node's children.
func (ix *Index) Walk(fn func(n *Node) bool) {
	var visit func(nodes []*Node)
	visit = func(nodes []*Node) {
		for _, n := range nodes {
			if fn(n) {
				visit(n.Children)
			}
		}
	}
	visit(ix.Roots)
}

// Ancestors returns the node's parents from nearest to the root.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Find returns the leaf for a key, if present.
func (ix *Index) Find(key domain.HierarchyKey) (*Node, bool) {
	for _, leaf := range ix.Leaves {
		if leaf.Leaf.Key == key {
			return leaf, true
		}
	}
	return nil, false
}
