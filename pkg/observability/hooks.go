// Package observability lets callers watch squaremap at work without the
// library depending on a metrics backend.
//
// Three hook interfaces cover the places where work happens: the layout
// and render pipeline, the layout and artifact caches, and the HTTP API.
// Each starts out as a no-op. A program swaps in its own implementation
// once, before serving or rendering:
//
//	st := &observability.Stats{}
//	observability.Register(st)
//	defer observability.Reset()
//
// Instrumented code fetches the current hooks at the call site:
//
//	observability.Pipeline().OnLayoutStart(ctx, len(items))
//	doc, err := pipeline.GenerateLayout(f, opts)
//	observability.Pipeline().OnLayoutComplete(ctx, len(doc.Cells), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks observes layout and render runs. For layouts, items is
// the number of holdings read and cells the number placed after zero and
// invalid values were dropped.
type PipelineHooks interface {
	OnLayoutStart(ctx context.Context, items int)
	OnLayoutComplete(ctx context.Context, cells int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks observes cache lookups. keyType is "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks observes the HTTP API.
type ServerHooks interface {
	// OnRequest fires after the handler returns. route is the chi pattern,
	// such as /api/layouts/{id}, so ids do not explode label sets.
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)

	// OnHover fires for every hit test, with hit false when the point
	// lies outside every cell.
	OnHover(ctx context.Context, hit bool)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks ignores every event.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string, int, time.Duration) {}
func (NoopServerHooks) OnHover(context.Context, bool)                                 {}

// hookSet is the process-wide registration, guarded by registry.mu.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	server   ServerHooks
}

func noopSet() hookSet {
	return hookSet{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		server:   NoopServerHooks{},
	}
}

var registry = struct {
	mu    sync.RWMutex
	hooks hookSet
}{hooks: noopSet()}

func update(fn func(*hookSet)) {
	registry.mu.Lock()
	fn(&registry.hooks)
	registry.mu.Unlock()
}

func current() hookSet {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.hooks
}

// SetPipelineHooks installs h. A nil h leaves the current hooks in place.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks installs h. A nil h leaves the current hooks in place.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetServerHooks installs h. A nil h leaves the current hooks in place.
func SetServerHooks(h ServerHooks) {
	if h != nil {
		update(func(s *hookSet) { s.server = h })
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return current().pipeline }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return current().cache }

// Server returns the installed server hooks.
func Server() ServerHooks { return current().server }

// Reset puts the no-op hooks back.
func Reset() {
	update(func(s *hookSet) { *s = noopSet() })
}
