// Package prepare downloads, extracts and indexes one fixture release.
package prepare

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"fixview/internal/config"
	"fixview/internal/discovery"
	"fixview/internal/domain"
	"fixview/internal/manifest"
	"fixview/internal/storage"
	"fixview/internal/version"
)

// IndexResult is the outcome of indexing one extracted version.
type IndexResult struct {
	Manifest *manifest.Manifest
	Skipped  int // directories that looked like test cases but had the wrong depth
}

// Indexer rebuilds manifest.json from an extracted tree.
type Indexer struct {
	config  *config.Config
	storage storage.Storage
	scanner *discovery.Scanner
	logger  *zap.Logger
}

// NewIndexer creates an Indexer.
func NewIndexer(cfg *config.Config, st storage.Storage, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		config:  cfg,
		storage: st,
		scanner: discovery.NewScanner(nil),
		logger:  logger,
	}
}

// Build scans data/<version>/tests and folds every test case into a manifest without persisting it.
func (ix *Indexer) Build(v string) (*IndexResult, error) {
	if err := version.Validate(v); err != nil {
		return nil, domain.Setupf(err, "cannot index %s", v)
	}
	root := ix.config.GetTestsDir(v)
	if _, err := os.Stat(filepath.Join(root, ix.config.TestsMarker)); err != nil {
		return nil, domain.Setupf(err, "no extracted fixtures for %s", v)
	}

	dirs, err := ix.scanner.Scan(root)
	if err != nil {
		return nil, err
	}

	builder := manifest.NewBuilder(v, ix.logger)
	builder.AddAll(dirs)
	m := builder.Build()
	ix.logger.Info("indexed fixtures",
		zap.String("version", v),
		zap.Int("test_cases", m.Stats.TotalTests),
		zap.Int("skipped", builder.Skipped()))

	return &IndexResult{Manifest: m, Skipped: builder.Skipped()}, nil
}

// Index builds the manifest and writes it, replacing any previous manifest of that version.
func (ix *Indexer) Index(v string) (*IndexResult, error) {
	res, err := ix.Build(v)
	if err != nil {
		return nil, err
	}
	if err := ix.storage.SaveManifest(res.Manifest); err != nil {
		return nil, domain.Setupf(err, "cannot write manifest for %s", v)
	}
	return res, nil
}
