package loader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fixview/internal/domain"
	"fixview/internal/tree"
)

func ignoreHTTP() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	}
}

const casePath = "tests/mainnet/deneb/ssz_static/BeaconBlock/ssz_random/case_0"

func leaf(files ...string) *tree.LeafRef {
	return &tree.LeafRef{Version: "v1.5.0", Path: casePath, Files: files}
}

// orderedServer serves proof.ssz_snappy only after proof.ssz_snappy.yaml has been written.
func orderedServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	yamlServed := make(chan struct{})
	base := "/data/v1.5.0/tests/" + casePath + "/"

	mux := http.NewServeMux()
	mux.HandleFunc(base+"proof.ssz_snappy.yaml", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Write([]byte("root: 0x01\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		close(yamlServed)
	})
	mux.HandleFunc(base+"proof.ssz_snappy", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		<-yamlServed
		w.Write([]byte{0xde, 0xad})
	})
	mux.HandleFunc(base+"meta.yaml", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Write([]byte("blocks_count: 1\n"))
	})
	return httptest.NewServer(mux)
}

// gatedSource holds back every fixture until release is closed.
type gatedSource struct {
	files   map[string][]byte
	release chan struct{}
}

func (s *gatedSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if domain.IsFixture(p) {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, &domain.FetchError{Path: p, Cause: ctx.Err()}
		}
	}
	data, ok := s.files[filepath.Base(p)]
	if !ok {
		return nil, &domain.FetchError{Path: p, Status: http.StatusNotFound, Cause: domain.ErrNotFound}
	}
	return data, nil
}

func TestLoader_PairsRegardlessOfArrivalOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &gatedSource{
		files: map[string][]byte{
			"proof.ssz_snappy":      {0xde, 0xad},
			"proof.ssz_snappy.yaml": []byte("root: 0x01\n"),
		},
		release: make(chan struct{}),
	}
	l, err := New(src, 4, nil)
	require.NoError(t, err)

	var updates []Update
	res, err := l.Load(context.Background(), leaf("proof.ssz_snappy", "proof.ssz_snappy.yaml"), func(u Update) {
		updates = append(updates, u)
		if len(updates) == 1 {
			close(src.release)
		}
	})
	require.NoError(t, err)

	require.Len(t, updates, 2)
	assert.True(t, updates[0].Created)
	assert.True(t, updates[0].Unit.HasDecoded)
	assert.False(t, updates[0].Unit.HasRaw)
	assert.False(t, updates[1].Created, "second half of the pair updates the unit in place")
	assert.True(t, updates[1].Unit.Paired())

	require.Len(t, res.Units, 1)
	u := res.Units[0]
	assert.Equal(t, "proof.ssz_snappy", u.Name)
	assert.Equal(t, []byte{0xde, 0xad}, u.Raw)
	assert.Equal(t, "root: 0x01\n", string(u.Decoded))
	assert.True(t, res.Complete())
	assert.Len(t, res.Records, 2)
}

func TestLoader_CachesCompleteCases(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreHTTP()...)

	var hits int32
	srv := orderedServer(t, &hits)
	defer srv.Close()

	l, err := New(NewHTTPSource(srv.URL+"/data", srv.Client()), 4, nil)
	require.NoError(t, err)

	ref := leaf("meta.yaml", "proof.ssz_snappy")
	first, err := l.Load(context.Background(), ref, nil)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "unlisted companion is fetched alongside its fixture")
	require.Len(t, first.Units, 2)
	assert.Equal(t, "meta.yaml", first.Units[0].Name)
	assert.True(t, first.Units[1].Paired())

	var replayed int
	second, err := l.Load(context.Background(), ref, func(Update) { replayed++ })
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 2, replayed)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits), "cached case must not refetch")
	srv.Client().CloseIdleConnections()
}

func TestLoader_FailuresAreIsolated(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	dir := filepath.Join(root, "v1.5.0", "tests", filepath.FromSlash(casePath))
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.yaml"), []byte("a: 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pre.ssz_snappy"), []byte{1}, 0644))

	l, err := New(NewDirSource(root), 4, nil)
	require.NoError(t, err)

	ref := leaf("data.yaml", "pre.ssz_snappy", "post.ssz_snappy")
	res, err := l.Load(context.Background(), ref, nil)
	require.NoError(t, err)

	assert.False(t, res.Complete())
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Units, 3)
	assert.True(t, res.Units[1].HasRaw)
	assert.False(t, res.Units[1].HasDecoded, "missing optional companion is not a failure")

	post := res.Units[2]
	assert.Equal(t, "post.ssz_snappy", post.Name)
	var fe *domain.FetchError
	require.True(t, errors.As(post.Err, &fe))
	assert.ErrorIs(t, post.Err, domain.ErrNotFound)

	again, err := l.Load(context.Background(), ref, nil)
	require.NoError(t, err)
	assert.False(t, again.Cached, "incomplete cases are not cached")
}

func TestCaseResult_WriteArchive(t *testing.T) {
	res := &CaseResult{
		Path: casePath,
		Records: []Record{
			{Name: "proof.ssz_snappy.yaml", Data: []byte("root: 0x01\n")},
			{Name: "missing.ssz_snappy", Err: domain.ErrNotFound},
			{Name: "proof.ssz_snappy", Data: []byte{0xde, 0xad}},
		},
	}
	assert.Equal(t, "case_0.zip", res.ArchiveName())

	var buf bytes.Buffer
	require.NoError(t, res.WriteArchive(&buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"case_0/proof.ssz_snappy", "case_0/proof.ssz_snappy.yaml"}, names)
}

func TestDirSource_RejectsEscapes(t *testing.T) {
	src := NewDirSource(t.TempDir())
	_, err := src.Fetch(context.Background(), "../secret")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestFetchVersionsAndManifest(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "versions.json"), []byte(`{"versions":["v1.6.0","v1.5.0"]}`), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "v1.6.0"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "v1.6.0", "manifest.json"),
		[]byte(`{"version":"v1.6.0","presets":{"minimal":{},"general":{}},"stats":{"totalTests":0,"generatedAt":"2024-01-01T00:00:00Z"}}`), 0644))

	src := NewDirSource(root)
	reg, err := FetchVersions(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.6.0", "v1.5.0"}, reg.Versions)

	m, err := FetchManifest(context.Background(), src, "v1.6.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"minimal", "general"}, m.Presets.Keys())

	_, err = FetchManifest(context.Background(), src, "v9.9.9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHTTPSource_StatusErrors(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreHTTP()...)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", srv.Client())
	_, err := src.Fetch(context.Background(), "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = src.Fetch(context.Background(), "broken")
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	srv.Client().CloseIdleConnections()
}

func TestFilePath(t *testing.T) {
	assert.Equal(t,
		"v1.5.0/tests/tests/mainnet/deneb/ssz_static/BeaconBlock/ssz_random/case_0/serialized.ssz_snappy",
		FilePath("v1.5.0", casePath, "serialized.ssz_snappy"))
}
