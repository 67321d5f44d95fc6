package storage

import (
	"fixview/internal/config"
	"fixview/internal/domain"
	"fixview/internal/manifest"
	"fixview/internal/version"
)

// Storage persists manifests, the version registry and decode reports.
type Storage interface {
	SaveManifest(m *manifest.Manifest) error
	LoadManifest(version string) (*manifest.Manifest, error)
	LoadVersions() (*version.Registry, error)
	// RegisterVersion merges one version into versions.json and rewrites the file.
	RegisterVersion(v string) (*version.Registry, error)
	SaveDecodeReport(version string, report *DecodeReport) error
}

// DecodeReport is the persisted outcome of a companion backfill run
type DecodeReport struct {
	Meta     DecodeMeta             `json:"meta"`
	Failures []domain.DecodeFailure `json:"failures"`
}

// DecodeMeta contains metadata about a backfill run
type DecodeMeta struct {
	domain.DecodeStats
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// JSONStorage stores everything as JSON files under the configured data directory.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage rooted at the config's data directory.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
