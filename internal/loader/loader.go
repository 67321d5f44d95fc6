package loader

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"fixview/internal/domain"
	"fixview/internal/tree"
)

// CaseResult is the full outcome of loading one test case.
type CaseResult struct {
	Version string
	Path    string
	Units   []Unit
	Records []Record // Every resolved file: listed files plus companions found alongside them
	Failed  int      // Listed files that could not be fetched
	Cached  bool
}

// Complete reports whether every listed file arrived.
func (r *CaseResult) Complete() bool {
	return r.Failed == 0
}

// Loader fetches every file of a test case concurrently and pairs fixtures with their companions.
type Loader struct {
	src    Source
	cache  *lru.Cache[string, *CaseResult]
	logger *zap.Logger
}

// New creates a Loader that keeps up to cacheSize fully loaded cases.
func New(src Source, cacheSize int, logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, *CaseResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create case cache: %w", err)
	}
	return &Loader{src: src, cache: cache, logger: logger}, nil
}

// Source returns the loader's data source.
func (l *Loader) Source() Source {
	return l.src
}

type fetched struct {
	rec      Record
	optional bool
}

// Load resolves every file of a leaf. onUpdate is called once per arriving file, from a single
// goroutine, as soon as that file's unit changes; sibling fetches are not awaited.
// A fixture whose companion is not listed also gets an optional companion fetch; its absence is not a failure.
// Cases that loaded without failures are cached and replayed without fetching.
func (l *Loader) Load(ctx context.Context, leaf *tree.LeafRef, onUpdate func(Update)) (*CaseResult, error) {
	if leaf == nil {
		return nil, errors.New("no test case selected")
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}

	key := leaf.Version + "/" + leaf.Path
	if cached, ok := l.cache.Get(key); ok {
		for _, u := range cached.Units {
			onUpdate(Update{Unit: u, Created: true})
		}
		res := *cached
		res.Cached = true
		return &res, nil
	}

	listed := make(map[string]bool, len(leaf.Files))
	for _, f := range leaf.Files {
		listed[f] = true
	}

	type request struct {
		name     string
		optional bool
	}
	var requests []request
	for _, f := range leaf.Files {
		requests = append(requests, request{name: f})
	}
	for _, f := range leaf.Files {
		if domain.IsFixture(f) && !listed[domain.CompanionName(f)] {
			requests = append(requests, request{name: domain.CompanionName(f), optional: true})
		}
	}

	results := make(chan fetched, len(requests))
	for _, req := range requests {
		go func(req request) {
			data, err := l.src.Fetch(ctx, FilePath(leaf.Version, leaf.Path, req.name))
			results <- fetched{rec: Record{Name: req.name, Data: data, Err: err}, optional: req.optional}
		}(req)
	}

	col := newCollector(leaf.Files)
	res := &CaseResult{Version: leaf.Version, Path: leaf.Path}
	for range requests {
		f := <-results
		if f.rec.Err != nil {
			if f.optional {
				if !errors.Is(f.rec.Err, domain.ErrNotFound) {
					l.logger.Debug("companion unavailable", zap.String("file", f.rec.Name), zap.Error(f.rec.Err))
				}
				continue
			}
			res.Failed++
			l.logger.Warn("failed to load file",
				zap.String("case", leaf.Path),
				zap.String("file", f.rec.Name),
				zap.Error(f.rec.Err))
		}
		res.Records = append(res.Records, f.rec)
		onUpdate(col.add(f.rec))
	}

	res.Units = col.list()
	if res.Complete() {
		l.cache.Add(key, res)
	}
	return res, ctx.Err()
}
