package observability

import (
	"context"
	"testing"
	"time"
)

type countingPipeline struct {
	NoopPipelineHooks
	starts int
}

func (c *countingPipeline) OnLayoutStart(context.Context, int) { c.starts++ }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	// Every default must accept events without a registered backend.
	Pipeline().OnLayoutComplete(ctx, 3, time.Millisecond, nil)
	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, nil)
	Cache().OnCacheSet(ctx, "artifact", 512)
	Server().OnRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
	Server().OnHover(ctx, false)

	tests := []struct {
		name string
		ok   bool
	}{
		{"pipeline", isType[NoopPipelineHooks](Pipeline())},
		{"cache", isType[NoopCacheHooks](Cache())},
		{"server", isType[NoopServerHooks](Server())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.ok {
				t.Errorf("%s hooks are not the no-op default", tt.name)
			}
		})
	}
}

func isType[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

func TestSetHooks(t *testing.T) {
	Reset()
	defer Reset()

	p := &countingPipeline{}
	SetPipelineHooks(p)
	Pipeline().OnLayoutStart(context.Background(), 4)
	if p.starts != 1 {
		t.Errorf("starts = %d, want 1", p.starts)
	}

	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(p) {
		t.Error("SetPipelineHooks(nil) replaced the installed hooks")
	}

	// Installing one kind leaves the others alone.
	if !isType[NoopCacheHooks](Cache()) || !isType[NoopServerHooks](Server()) {
		t.Error("SetPipelineHooks touched cache or server hooks")
	}

	Reset()
	if !isType[NoopPipelineHooks](Pipeline()) {
		t.Error("Reset() did not restore the pipeline no-op")
	}
}
