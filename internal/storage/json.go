package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fixview/internal/domain"
	"fixview/internal/manifest"
	"fixview/internal/version"
)

// SaveManifest writes manifest.json for the manifest's version, replacing any previous one.
func (s *JSONStorage) SaveManifest(m *manifest.Manifest) error {
	if err := version.Validate(m.Version); err != nil {
		return err
	}
	return writeJSON(s.cfg.GetManifestPath(m.Version), m)
}

// LoadManifest reads a version's manifest.json.
func (s *JSONStorage) LoadManifest(v string) (*manifest.Manifest, error) {
	data, err := os.ReadFile(s.cfg.GetManifestPath(v))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// LoadVersions reads versions.json; a missing file is an empty registry.
func (s *JSONStorage) LoadVersions() (*version.Registry, error) {
	data, err := os.ReadFile(s.cfg.GetVersionsPath())
	if errors.Is(err, os.ErrNotExist) {
		return &version.Registry{Versions: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read versions: %w", err)
	}
	var r version.Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse versions: %w", err)
	}
	r.Versions = version.Sort(r.Versions)
	return &r, nil
}

// RegisterVersion merges v into the registry and overwrites versions.json as a whole.
func (s *JSONStorage) RegisterVersion(v string) (*version.Registry, error) {
	r, err := s.LoadVersions()
	if err != nil {
		return nil, err
	}
	if _, err := r.Add(v); err != nil {
		return nil, err
	}
	if err := writeJSON(s.cfg.GetVersionsPath(), r); err != nil {
		return nil, err
	}
	return r, nil
}

// SaveDecodeReport writes decode-report.json next to the version's manifest.
func (s *JSONStorage) SaveDecodeReport(v string, report *DecodeReport) error {
	if report.Failures == nil {
		report.Failures = []domain.DecodeFailure{}
	}
	return writeJSON(filepath.Join(s.cfg.GetVersionDir(v), "decode-report.json"), report)
}

// writeJSON replaces path atomically: the data goes to a temp file that is renamed over the target.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
