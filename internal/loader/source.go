// Package loader fetches versions, manifests and test case files for the browser.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"fixview/internal/domain"
	"fixview/internal/manifest"
	"fixview/internal/version"
)

// Source resolves slash-separated paths relative to a data root.
// A missing resource returns a *domain.FetchError wrapping domain.ErrNotFound.
type Source interface {
	Fetch(ctx context.Context, p string) ([]byte, error)
}

// HTTPSource reads from a base URL such as http://host:8080/data.
type HTTPSource struct {
	base   string
	client *http.Client
}

// NewHTTPSource creates an HTTPSource. A nil client uses http.DefaultClient.
func NewHTTPSource(base string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{base: strings.TrimRight(base, "/"), client: client}
}

// Fetch performs GET <base>/<p>.
func (s *HTTPSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/"+strings.TrimLeft(p, "/"), nil)
	if err != nil {
		return nil, &domain.FetchError{Path: p, Cause: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Path: p, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &domain.FetchError{Path: p, Status: resp.StatusCode, Cause: domain.ErrNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{Path: p, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Path: p, Status: resp.StatusCode, Cause: err}
	}
	return data, nil
}

// DirSource reads from a local data directory.
type DirSource struct {
	root string
}

// NewDirSource creates a DirSource rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir}
}

// Fetch reads <root>/<p>. Paths escaping the root are rejected.
func (s *DirSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.FetchError{Path: p, Cause: err}
	}

	clean := path.Clean("/" + p)
	if clean != "/"+strings.TrimLeft(p, "/") {
		return nil, &domain.FetchError{Path: p, Cause: fmt.Errorf("invalid path")}
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(clean)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, &domain.FetchError{Path: p, Cause: domain.ErrNotFound}
	}
	if err != nil {
		return nil, &domain.FetchError{Path: p, Cause: err}
	}
	return data, nil
}

// FetchVersions loads versions.json.
func FetchVersions(ctx context.Context, src Source) (*version.Registry, error) {
	data, err := src.Fetch(ctx, "versions.json")
	if err != nil {
		return nil, err
	}

	var reg version.Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, &domain.FetchError{Path: "versions.json", Cause: err}
	}
	return &reg, nil
}

// FetchManifest loads <version>/manifest.json.
func FetchManifest(ctx context.Context, src Source, v string) (*manifest.Manifest, error) {
	p := path.Join(v, "manifest.json")
	data, err := src.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}

	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &domain.FetchError{Path: p, Cause: err}
	}
	return &m, nil
}

// extractDir is the directory under data/<version> that archives are unpacked into.
const extractDir = "tests"

// FilePath returns the data-relative path of one file of a test case:
// <version>/tests/<casePath>/<name>, where casePath is the manifest entry path.
func FilePath(v, casePath, name string) string {
	return path.Join(v, extractDir, casePath, name)
}
