package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/threadline/pkg/cache"
	"github.com/matzehuels/threadline/pkg/feed"
	"github.com/matzehuels/threadline/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
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

// Execute runs the complete load → thread → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Source)
	f, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	result.Stats.LoadTime = time.Since(loadStart)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, opts.Source, 0, result.Stats.LoadTime, err)
		return nil, fmt.Errorf("load: %w", err)
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Source, f.Len(), result.Stats.LoadTime, nil)
	result.Feed = f
	result.Stats.RecordCount = f.Len()
	result.CacheInfo.LoadHit = loadHit

	// Compute feed hash for cache keys and API responses
	if feedData, err := feed.Marshal(f); err == nil {
		result.FeedHash = cache.Hash(feedData)
	}

	r.Logger.Info("loaded feed",
		"records", f.Len(),
		"top_level", f.TopLevel(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Thread
	threadStart := time.Now()
	observability.Pipeline().OnThreadStart(ctx, opts.Order, f.Len())
	res, threadHit, err := r.ThreadWithCacheInfo(ctx, f, opts)
	result.Stats.ThreadTime = time.Since(threadStart)
	observability.Pipeline().OnThreadComplete(ctx, opts.Order, result.Stats.ThreadTime, err)
	if err != nil {
		return nil, fmt.Errorf("thread: %w", err)
	}
	result.Entries = res.Entries
	result.Report = res.Report
	result.Stats.EntryCount = len(res.Entries)
	result.CacheInfo.ThreadHit = threadHit

	r.Logger.Info("threaded records",
		"entries", len(res.Entries),
		"dropped", res.Report.Dropped(),
		"duration", result.Stats.ThreadTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, f, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo fetches the feed with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*feed.Feed, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	cacheKey := r.Keyer.FeedKey(opts.Source, opts.FeedKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			f, err := feed.Unmarshal(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "feed")
				return f, true, nil // Cache hit
			}
			// Corrupt entry - evict so the next run skips the decode
			_ = r.Cache.Delete(ctx, cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, "feed")
	}

	// Load
	f, err := Load(ctx, r.Cache, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result so a later run skips the fetch
	if data, err := feed.Marshal(f); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLFeed)
		observability.Cache().OnCacheSet(ctx, "feed", len(data))
	}

	return f, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*feed.Feed, error) {
	f, _, err := r.LoadWithCacheInfo(ctx, opts)
	return f, err
}

// ThreadWithCacheInfo threads a feed with caching and returns cache hit info.
func (r *Runner) ThreadWithCacheInfo(ctx context.Context, f *feed.Feed, opts Options) (ThreadResult, bool, error) {
	if err := opts.ValidateForThread(); err != nil {
		return ThreadResult{}, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	feedData, _ := feed.Marshal(f)
	feedHash := cache.Hash(feedData)
	cacheKey := r.Keyer.ThreadKey(feedHash, opts.ThreadKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var cached ThreadResult
		if err := json.Unmarshal(data, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, "thread")
			return cached, true, nil // Cache hit
		}
		// Corrupt entry - evict and recompute
		_ = r.Cache.Delete(ctx, cacheKey)
	}
	observability.Cache().OnCacheMiss(ctx, "thread")

	// Thread
	res := Thread(f, opts)

	// Cache the result
	if data, err := json.Marshal(res); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLThread)
		observability.Cache().OnCacheSet(ctx, "thread", len(data))
	}

	return res, false, nil // Cache miss
}

// Thread is a convenience wrapper that calls ThreadWithCacheInfo and discards the cache hit info.
func (r *Runner) Thread(ctx context.Context, f *feed.Feed, opts Options) (ThreadResult, error) {
	res, _, err := r.ThreadWithCacheInfo(ctx, f, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res ThreadResult, f *feed.Feed, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from thread data
	threadData, err := json.Marshal(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize thread for cache key: %w", err)
	}
	threadHash := cache.Hash(threadData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(threadHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := RenderFromEntries(f, res.Entries, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(threadHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, res ThreadResult, f *feed.Feed, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, f, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
