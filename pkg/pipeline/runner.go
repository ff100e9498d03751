package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/render/jsonout"
	"github.com/matzehuels/kintree/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, store and logger; it doesn't
// keep pipeline results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store // optional; needed for store:<id> inputs
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	data, fetchHit, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Family = data
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.PersonCount = len(data.People)
	result.CacheInfo.FetchHit = fetchHit

	r.Logger.Info("loaded family",
		"people", len(data.People),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.ComputeLayout(ctx, data, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(res.Nodes)
	result.Stats.EdgeCount = len(res.Edges)
	result.CacheInfo.LayoutHit = layoutHit
	if body, err := family.Marshal(data); err == nil {
		result.FamilyHash = cache.Hash(body)
	}

	r.Logger.Info("computed layout",
		"nodes", len(res.Nodes),
		"edges", len(res.Edges),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.Render(ctx, data, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load fetches the family snapshot named by opts.Input. Remote documents are
// cached for [cache.FetchTTL] unless opts.Refresh is set. The boolean reports
// a fetch cache hit.
func (r *Runner) Load(ctx context.Context, opts Options) (*family.FamilyData, bool, error) {
	src, err := Source(opts.Input, r.Store)
	if err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, src.String())
	start := time.Now()

	data, hit, err := r.load(ctx, src, opts)

	people := 0
	if data != nil {
		people = len(data.People)
	}
	hooks.OnLoadComplete(ctx, src.String(), people, time.Since(start), err)
	return data, hit, err
}

func (r *Runner) load(ctx context.Context, src family.Source, opts Options) (*family.FamilyData, bool, error) {
	if ClassifyInput(opts.Input) != InputURL {
		data, err := family.Load(ctx, src)
		return data, false, err
	}

	key := r.Keyer.FetchKey(opts.Input)
	if !opts.Refresh {
		if body, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if data, err := family.Unmarshal(body); err == nil {
				observability.Cache().OnCacheHit(ctx, "fetch")
				return data, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "fetch")
	}

	data, err := family.Load(ctx, src)
	if err != nil {
		return nil, false, err
	}
	if body, err := family.Marshal(data); err == nil {
		r.set(ctx, "fetch", key, body, cache.FetchTTL)
	}
	return data, false, nil
}

// ComputeLayout lays out data with caching and returns cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, data *family.FamilyData, opts Options) (layout.Result, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(data.People))
	start := time.Now()

	res, hit, err := r.computeLayout(ctx, data, opts)
	hooks.OnLayoutComplete(ctx, len(res.Nodes), len(res.Edges), time.Since(start), err)
	return res, hit, err
}

func (r *Runner) computeLayout(ctx context.Context, data *family.FamilyData, opts Options) (layout.Result, bool, error) {
	body, err := family.Marshal(data)
	if err != nil {
		return layout.Result{}, false, fmt.Errorf("serialize family for cache key: %w", err)
	}
	key := r.Keyer.LayoutKey(cache.Hash(body), opts.LayoutKeyOpts())

	if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if res, _, err := jsonout.Parse(cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return res, true, nil
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	res := layout.Compute(data.People, opts.Layout)

	if encoded, err := jsonout.Render(res, jsonout.WithCompact()); err == nil {
		r.set(ctx, "layout", key, encoded, cache.LayoutTTL)
	}
	return res, false, nil
}

// Render generates artifacts with caching and returns cache hit info. The
// boolean is true only when every requested format came from the cache.
func (r *Runner) Render(ctx context.Context, data *family.FamilyData, res layout.Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.render(ctx, data, res, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

func (r *Runner) render(ctx context.Context, data *family.FamilyData, res layout.Result, opts Options) (map[string][]byte, bool, error) {
	// The artifact depends on the people as well as their positions.
	layoutData, err := jsonout.Render(res, jsonout.WithCompact(), jsonout.WithPeople(data.People), jsonout.WithRoot(data.RootPersonID))
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if out, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = out
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		allCached = false

		out, err := RenderFormat(ctx, format, data, res, opts)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", format, err)
		}
		artifacts[format] = out
		r.set(ctx, "artifact", key, out, cache.ArtifactTTL)
	}
	return artifacts, allCached, nil
}

// set writes to the cache. Cache failures are logged and otherwise ignored.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (the cache and the store).
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(); err == nil {
			err = serr
		}
	}
	return err
}
