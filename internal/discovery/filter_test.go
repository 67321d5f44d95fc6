package discovery

import (
	"testing"
)

func TestFilter_FilterByPattern(t *testing.T) {
	filter := NewFilter()
	paths := []string{
		"tests/mainnet/phase0/ssz_static/Validator/ssz_random/case_0/serialized.ssz_snappy",
		"tests/mainnet/altair/ssz_static/BeaconState/ssz_random/case_0/serialized.ssz_snappy",
		"tests/minimal/phase0/operations/deposit/pyspec_tests/new_deposit/pre.ssz_snappy",
	}

	tests := []struct {
		name     string
		pattern  string
		expected int
	}{
		{name: "empty pattern returns all", pattern: "", expected: 3},
		{name: "wildcard across separators", pattern: "*/phase0/*", expected: 2},
		{name: "base name wildcard", pattern: "pre.*", expected: 1},
		{name: "multiple wildcards", pattern: "*mainnet*BeaconState*", expected: 1},
		{name: "simple contains match", pattern: "Validator", expected: 1},
		{name: "no matches", pattern: "*capella*", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByPattern(paths, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d: %v", tt.expected, len(result), result)
			}
		})
	}
}

func TestFilter_FilterByPattern_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty path list", func(t *testing.T) {
		result := filter.FilterByPattern([]string{}, "*.ssz_snappy")
		if len(result) != 0 {
			t.Errorf("expected empty result, got %d items", len(result))
		}
	})

	t.Run("pattern of only wildcards", func(t *testing.T) {
		result := filter.FilterByPattern([]string{"a/b"}, "**")
		if len(result) != 1 {
			t.Errorf("expected match through filepath.Match, got %v", result)
		}
	})
}
