// Package manifest folds discovered test case directories into the per-version index.
package manifest

import (
	"fixview/internal/domain"
)

// Manifest is the persisted index of one version
type Manifest struct {
	Version string        `json:"version"`
	Presets *Map[*Preset] `json:"presets"`
	Stats   Stats         `json:"stats"`
}

// Preset maps fork names to their test types
type Preset = Map[*Fork]

// Fork maps test type names to their suites
type Fork = Map[*TestType]

// TestType groups the suites of one runner
type TestType struct {
	TestSuites *Map[*TestSuite] `json:"testSuites"`
}

// TestSuite groups configs and counts every test case below it
type TestSuite struct {
	Configs   *Map[*Config] `json:"configs"`
	TestCount int           `json:"testCount"`
}

// Config holds test cases in discovery order
type Config struct {
	Tests []TestCaseEntry `json:"tests"`
}

// TestCaseEntry is one leaf of the manifest
type TestCaseEntry struct {
	Name  string   `json:"name"`
	Path  string   `json:"path"`
	Files []string `json:"files"`
}

// Stats summarizes a manifest
type Stats struct {
	TotalTests  int    `json:"totalTests"`
	GeneratedAt string `json:"generatedAt"`
}

// Walk visits every test case in manifest order
func (m *Manifest) Walk(fn func(key domain.HierarchyKey, entry TestCaseEntry)) {
	if m == nil || m.Presets == nil {
		return
	}
	for _, presetName := range m.Presets.keys {
		preset := m.Presets.values[presetName]
		for _, forkName := range preset.keys {
			fork := preset.values[forkName]
			for _, typeName := range fork.keys {
				testType := fork.values[typeName]
				for _, suiteName := range testType.TestSuites.keys {
					suite := testType.TestSuites.values[suiteName]
					for _, configName := range suite.Configs.keys {
						for _, entry := range suite.Configs.values[configName].Tests {
							fn(domain.HierarchyKey{
								Preset:    presetName,
								Fork:      forkName,
								TestType:  typeName,
								TestSuite: suiteName,
								Config:    configName,
								TestCase:  entry.Name,
							}, entry)
						}
					}
				}
			}
		}
	}
}

// Suite returns the suite record for a key, if present
func (m *Manifest) Suite(key domain.HierarchyKey) (*TestSuite, bool) {
	if m == nil || m.Presets == nil {
		return nil, false
	}
	preset, ok := m.Presets.Get(key.Preset)
	if !ok {
		return nil, false
	}
	fork, ok := preset.Get(key.Fork)
	if !ok {
		return nil, false
	}
	testType, ok := fork.Get(key.TestType)
	if !ok {
		return nil, false
	}
	return testType.TestSuites.Get(key.TestSuite)
}
