package prepare

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fixview/internal/config"
	"fixview/internal/domain"
	"fixview/internal/storage"
	"fixview/internal/version"
)

// Meter observes archive bytes as they are downloaded.
type Meter interface {
	Wrap(r io.Reader) io.Reader
}

// Result describes a finished prepare run.
type Result struct {
	Version  string
	Presets  []string
	Bytes    int64
	Index    *IndexResult
	Versions *version.Registry
}

// Preparer runs download, extract, index and register for one version.
// Nothing under data/<version>/tests is replaced unless every archive extracted cleanly.
type Preparer struct {
	config  *config.Config
	storage storage.Storage
	indexer *Indexer
	client  *http.Client
	meter   Meter
	logger  *zap.Logger
}

// NewPreparer creates a Preparer. A nil client uses http.DefaultClient.
func NewPreparer(cfg *config.Config, st storage.Storage, client *http.Client, logger *zap.Logger) *Preparer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Preparer{
		config:  cfg,
		storage: st,
		indexer: NewIndexer(cfg, st, logger),
		client:  client,
		logger:  logger,
	}
}

// SetMeter attaches a download meter
func (p *Preparer) SetMeter(m Meter) {
	p.meter = m
}

// Prepare fetches every configured preset archive of v in parallel and publishes the result.
func (p *Preparer) Prepare(ctx context.Context, v string) (*Result, error) {
	if err := version.Validate(v); err != nil {
		return nil, domain.Setupf(err, "cannot prepare %s", v)
	}
	if len(p.config.Presets) == 0 {
		return nil, domain.Setupf(nil, "no presets configured")
	}

	versionDir := p.config.GetVersionDir(v)
	if err := os.MkdirAll(versionDir, 0755); err != nil {
		return nil, domain.Setupf(err, "cannot create %s", versionDir)
	}
	staging, err := os.MkdirTemp(versionDir, ".staging-")
	if err != nil {
		return nil, domain.Setupf(err, "cannot create staging directory")
	}
	defer os.RemoveAll(staging)

	var total int64
	g, gctx := errgroup.WithContext(ctx)
	for _, preset := range p.config.Presets {
		preset := preset
		g.Go(func() error {
			n, err := p.fetchPreset(gctx, v, preset, staging)
			if err != nil {
				return domain.Setupf(err, "download %s/%s.tar.gz", v, preset)
			}
			atomic.AddInt64(&total, n)
			p.logger.Info("extracted archive", zap.String("version", v), zap.String("preset", preset), zap.Int64("bytes", n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := p.publish(staging, v); err != nil {
		return nil, err
	}

	idx, err := p.indexer.Index(v)
	if err != nil {
		return nil, err
	}
	reg, err := p.storage.RegisterVersion(v)
	if err != nil {
		return nil, domain.Setupf(err, "cannot register %s", v)
	}

	return &Result{
		Version:  v,
		Presets:  p.config.Presets,
		Bytes:    total,
		Index:    idx,
		Versions: reg,
	}, nil
}

// Indexer returns the indexer used after extraction
func (p *Preparer) Indexer() *Indexer {
	return p.indexer
}

// publish swaps the staging directory into place as data/<version>/tests.
// Archives carry their own tests/ root, so fixtures land under tests/tests/<preset>.
func (p *Preparer) publish(staging, v string) error {
	staged := filepath.Join(staging, p.config.TestsMarker)
	if _, err := os.Stat(staged); err != nil {
		return domain.Setupf(err, "archives for %s contain no %s/ directory", v, p.config.TestsMarker)
	}

	target := p.config.GetTestsDir(v)
	if err := os.RemoveAll(target); err != nil {
		return domain.Setupf(err, "cannot replace %s", target)
	}
	if err := os.Rename(staging, target); err != nil {
		return domain.Setupf(err, "cannot move fixtures into %s", target)
	}
	return nil
}

func (p *Preparer) fetchPreset(ctx context.Context, v, preset, dest string) (int64, error) {
	url := p.config.GetArchiveURL(v, preset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, &domain.FetchError{Path: url, Status: resp.StatusCode}
	}

	body := io.Reader(resp.Body)
	if p.meter != nil {
		body = p.meter.Wrap(body)
	}
	counter := &countingReader{r: body}
	if err := extract(counter, dest); err != nil {
		return counter.n, err
	}
	return counter.n, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.n += int64(n)
	return n, err
}

// extract unpacks a gzip-compressed tarball below dest, refusing entries that would escape it.
func extract(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}

		name := filepath.FromSlash(strings.TrimPrefix(hdr.Name, "./"))
		target := filepath.Join(dest, name)
		if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes the extraction root", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr); err != nil {
				return err
			}
		default:
			// links and devices never appear in fixture archives
		}
	}
}

func writeFile(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("extract %s: %w", filepath.Base(target), err)
	}
	return f.Close()
}
