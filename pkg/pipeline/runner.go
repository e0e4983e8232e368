package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/squaremap/pkg/cache"
	"github.com/matzehuels/squaremap/pkg/document"
	"github.com/matzehuels/squaremap/pkg/holdings"
	"github.com/matzehuels/squaremap/pkg/observability"
)

// Key types reported to the cache hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner puts the layout and render stages behind a cache. It keeps no
// per-run state, so one Runner serves concurrent requests with different
// options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner builds a Runner. A nil cache disables caching, a nil keyer
// selects [cache.DefaultKeyer] and a nil logger selects log.Default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute loads opts.Input, lays it out and renders every requested
// format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{}
	start := time.Now()
	f, err := Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Holdings, res.HoldingsHash = f, HashHoldings(f)
	res.Stats.ItemCount = len(f.Holdings)
	res.Stats.LoadTime = time.Since(start)
	r.Logger.Info("loaded holdings", "items", res.Stats.ItemCount, "duration", res.Stats.LoadTime)

	start = time.Now()
	doc, hit, err := r.GenerateLayoutWithCacheInfo(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout, res.CacheInfo.LayoutHit = doc, hit
	res.Stats.CellCount, res.Stats.Dropped = len(doc.Cells), doc.Dropped
	res.Stats.LayoutTime = time.Since(start)
	r.Logger.Info("computed layout",
		"cells", res.Stats.CellCount,
		"dropped", res.Stats.Dropped,
		"cache", hit,
		"duration", res.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts, res.CacheInfo.RenderHit = artifacts, hit
	res.Stats.RenderTime = time.Since(start)
	r.Logger.Info("rendered outputs", "formats", opts.Formats, "cache", hit, "duration", res.Stats.RenderTime)

	return res, nil
}

// GenerateLayoutWithCacheInfo lays out f, serving it from cache when an
// entry for the same holdings and layout options exists. The bool reports
// a cache hit.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, f holdings.File, opts Options) (document.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return document.Layout{}, false, err
	}

	key := r.Keyer.LayoutKey(HashHoldings(f), opts.LayoutKeyOpts())
	if !opts.Refresh {
		if doc, ok := r.cachedLayout(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, keyTypeLayout)
			return doc, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeLayout)

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(f.Holdings))
	start := time.Now()
	doc, err := GenerateLayout(f, opts)
	hooks.OnLayoutComplete(ctx, len(doc.Cells), time.Since(start), err)
	if err != nil {
		return document.Layout{}, false, err
	}

	if data, err := document.MarshalLayout(doc); err == nil {
		r.store(ctx, key, keyTypeLayout, data, cache.TTLLayout)
	}
	return doc, false, nil
}

// GenerateLayout is GenerateLayoutWithCacheInfo without the hit flag.
func (r *Runner) GenerateLayout(ctx context.Context, f holdings.File, opts Options) (document.Layout, error) {
	doc, _, err := r.GenerateLayoutWithCacheInfo(ctx, f, opts)
	return doc, err
}

// RenderWithCacheInfo renders doc in every format of opts. Cached
// artifacts are used only when all formats are cached; otherwise all are
// rendered again and stored.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc document.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	data, err := document.MarshalLayout(doc)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(data)
	keyFor := func(format string) string {
		return r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
	}

	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, opts.Formats, keyFor); ok {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			return artifacts, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderFromLayout(ctx, doc, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, out := range rendered {
		r.store(ctx, keyFor(format), keyTypeArtifact, out, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, doc document.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, opts)
	return artifacts, err
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

// HashHoldings is the content hash of f used in layout keys.
func HashHoldings(f holdings.File) string {
	data, _ := json.Marshal(f)
	return cache.Hash(data)
}

// cachedLayout reads key. Read errors and undecodable entries are logged
// and treated as misses.
func (r *Runner) cachedLayout(ctx context.Context, key string) (document.Layout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	switch {
	case err != nil:
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return document.Layout{}, false
	case !hit:
		return document.Layout{}, false
	}
	doc, err := document.UnmarshalLayout(data)
	if err != nil {
		r.Logger.Debug("discarding unreadable cached layout", "key", key, "err", err)
		return document.Layout{}, false
	}
	return doc, true
}

// cachedArtifacts returns the cached artifact of every format, or false as
// soon as one is missing.
func (r *Runner) cachedArtifacts(ctx context.Context, formats []string, keyFor func(string) string) (map[string][]byte, bool) {
	out := make(map[string][]byte, len(formats))
	for _, format := range formats {
		data, hit, err := r.Cache.Get(ctx, keyFor(format))
		if err != nil || !hit {
			return nil, false
		}
		out[format] = data
	}
	return out, true
}

// store writes to the cache. A failed write is logged and otherwise
// ignored; the next run recomputes.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
