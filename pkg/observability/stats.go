package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Stats counts events from every hook interface. The zero value is ready
// to use and safe for concurrent use; register it with [Register].
type Stats struct {
	layouts       atomic.Int64
	layoutErrors  atomic.Int64
	layoutNanos   atomic.Int64
	renders       atomic.Int64
	renderErrors  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	cacheBytes    atomic.Int64
	requests      atomic.Int64
	serverErrors  atomic.Int64
	hovers        atomic.Int64
	hoverMisses   atomic.Int64
	cellsComputed atomic.Int64
}

// Snapshot is a point-in-time copy of [Stats].
type Snapshot struct {
	Layouts      int64         `json:"layouts"`
	LayoutErrors int64         `json:"layout_errors"`
	LayoutTime   time.Duration `json:"layout_time_ns"`
	Cells        int64         `json:"cells"`
	Renders      int64         `json:"renders"`
	RenderErrors int64         `json:"render_errors"`
	CacheHits    int64         `json:"cache_hits"`
	CacheMisses  int64         `json:"cache_misses"`
	CacheBytes   int64         `json:"cache_bytes_written"`
	Requests     int64         `json:"requests"`
	ServerErrors int64         `json:"server_errors"`
	Hovers       int64         `json:"hovers"`
	HoverMisses  int64         `json:"hover_misses"`
}

// HitRate returns the share of cache lookups that hit, or 0 with no
// lookups.
func (s Snapshot) HitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}

// Register installs s as the pipeline, cache and server hooks.
func Register(s *Stats) {
	update(func(h *hookSet) {
		h.pipeline, h.cache, h.server = s, s, s
	})
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Layouts:      s.layouts.Load(),
		LayoutErrors: s.layoutErrors.Load(),
		LayoutTime:   time.Duration(s.layoutNanos.Load()),
		Cells:        s.cellsComputed.Load(),
		Renders:      s.renders.Load(),
		RenderErrors: s.renderErrors.Load(),
		CacheHits:    s.cacheHits.Load(),
		CacheMisses:  s.cacheMisses.Load(),
		CacheBytes:   s.cacheBytes.Load(),
		Requests:     s.requests.Load(),
		ServerErrors: s.serverErrors.Load(),
		Hovers:       s.hovers.Load(),
		HoverMisses:  s.hoverMisses.Load(),
	}
}

func (s *Stats) OnLayoutStart(context.Context, int) {}

func (s *Stats) OnLayoutComplete(_ context.Context, cells int, d time.Duration, err error) {
	if err != nil {
		s.layoutErrors.Add(1)
		return
	}
	s.layouts.Add(1)
	s.cellsComputed.Add(int64(cells))
	s.layoutNanos.Add(int64(d))
}

func (s *Stats) OnRenderStart(context.Context, []string) {}

func (s *Stats) OnRenderComplete(_ context.Context, _ []string, _ time.Duration, err error) {
	if err != nil {
		s.renderErrors.Add(1)
		return
	}
	s.renders.Add(1)
}

func (s *Stats) OnCacheHit(context.Context, string)  { s.cacheHits.Add(1) }
func (s *Stats) OnCacheMiss(context.Context, string) { s.cacheMisses.Add(1) }

func (s *Stats) OnCacheSet(_ context.Context, _ string, size int) {
	s.cacheBytes.Add(int64(size))
}

func (s *Stats) OnRequest(_ context.Context, _, _ string, status int, _ time.Duration) {
	s.requests.Add(1)
	if status >= 500 {
		s.serverErrors.Add(1)
	}
}

func (s *Stats) OnHover(_ context.Context, hit bool) {
	s.hovers.Add(1)
	if !hit {
		s.hoverMisses.Add(1)
	}
}
