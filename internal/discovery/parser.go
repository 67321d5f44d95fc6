package discovery

import (
	"strings"

	"fixview/internal/domain"
)

// KeySegments is the number of path segments of a test case directory:
// the root marker followed by preset, fork, test type, suite, config and case.
const KeySegments = 7

// ParseKey maps a test case directory path onto the hierarchy.
// Segment 0 is the extraction root marker and is ignored.
func ParseKey(segments []string) (domain.HierarchyKey, error) {
	if len(segments) != KeySegments {
		return domain.HierarchyKey{}, &domain.ParseError{
			Path:     strings.Join(segments, "/"),
			Segments: len(segments),
			Want:     KeySegments,
		}
	}

	return domain.HierarchyKey{
		Preset:    segments[1],
		Fork:      segments[2],
		TestType:  segments[3],
		TestSuite: segments[4],
		Config:    segments[5],
		TestCase:  segments[6],
	}, nil
}

// SplitPath splits a slash-separated relative path into non-empty segments
func SplitPath(rel string) []string {
	var segments []string
	for _, part := range strings.Split(strings.TrimPrefix(rel, "./"), "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
