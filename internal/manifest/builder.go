package manifest

import (
	"time"

	"go.uber.org/zap"

	"fixview/internal/discovery"
	"fixview/internal/domain"
)

// Builder folds classified test case directories into a Manifest.
// Intermediate levels are created lazily on first encounter.
type Builder struct {
	version string
	presets *Map[*Preset]
	total   int
	skipped int
	logger  *zap.Logger
	now     func() time.Time
}

// NewBuilder creates a Builder for one version
func NewBuilder(version string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		version: version,
		presets: NewMap[*Preset](),
		logger:  logger,
		now:     time.Now,
	}
}

// Add records one test case directory.
// A path with the wrong number of segments returns a *domain.ParseError and leaves the builder unchanged.
func (b *Builder) Add(dir domain.TestCaseDirectory) error {
	key, err := discovery.ParseKey(dir.Segments)
	if err != nil {
		return err
	}

	preset := getOrCreate(b.presets, key.Preset, NewMap[*Fork])
	fork := getOrCreate(preset, key.Fork, NewMap[*TestType])
	testType := getOrCreate(fork, key.TestType, func() *TestType {
		return &TestType{TestSuites: NewMap[*TestSuite]()}
	})
	suite := getOrCreate(testType.TestSuites, key.TestSuite, func() *TestSuite {
		return &TestSuite{Configs: NewMap[*Config]()}
	})
	config := getOrCreate(suite.Configs, key.Config, func() *Config {
		return &Config{Tests: []TestCaseEntry{}}
	})

	files := append([]string{}, dir.Files...)
	config.Tests = append(config.Tests, TestCaseEntry{
		Name:  key.TestCase,
		Path:  dir.RelPath(),
		Files: files,
	})
	suite.TestCount++
	b.total++
	return nil
}

// AddAll records every directory, skipping unparsable paths with a warning.
// It returns the number of skipped directories.
func (b *Builder) AddAll(dirs []domain.TestCaseDirectory) int {
	skipped := 0
	for _, dir := range dirs {
		if err := b.Add(dir); err != nil {
			b.logger.Warn("skipping test case directory", zap.String("path", dir.RelPath()), zap.Error(err))
			skipped++
		}
	}
	b.skipped += skipped
	return skipped
}

// Skipped returns the number of directories skipped by AddAll
func (b *Builder) Skipped() int {
	return b.skipped
}

// Build returns the manifest accumulated so far
func (b *Builder) Build() *Manifest {
	return &Manifest{
		Version: b.version,
		Presets: b.presets,
		Stats: Stats{
			TotalTests:  b.total,
			GeneratedAt: b.now().UTC().Format(time.RFC3339),
		},
	}
}
