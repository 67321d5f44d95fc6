package tree

import (
	"sort"
	"strings"
)

// CanonicalForks lists recognized forks in protocol order.
var CanonicalForks = []string{"phase0", "altair", "bellatrix", "capella", "deneb", "electra", "fulu"}

var forkIndex = func() map[string]int {
	m := make(map[string]int, len(CanonicalForks))
	for i, f := range CanonicalForks {
		m[f] = i
	}
	return m
}()

// CompareForks orders fork names: known forks by protocol order first, then unknown names
// alphabetically, then eip* feature forks alphabetically.
func CompareForks(a, b string) int {
	aEIP, bEIP := strings.HasPrefix(a, "eip"), strings.HasPrefix(b, "eip")
	switch {
	case aEIP && bEIP:
		return strings.Compare(a, b)
	case aEIP:
		return 1
	case bEIP:
		return -1
	}

	ai, aKnown := forkIndex[a]
	bi, bKnown := forkIndex[b]
	switch {
	case aKnown && bKnown:
		return ai - bi
	case aKnown:
		return -1
	case bKnown:
		return 1
	}
	return strings.Compare(a, b)
}

// SortForks sorts fork names in place with CompareForks.
func SortForks(forks []string) {
	sort.SliceStable(forks, func(i, j int) bool {
		return CompareForks(forks[i], forks[j]) < 0
	})
}
