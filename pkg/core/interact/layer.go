package interact

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/squaremap/pkg/core/treemap"
)

// Default tooltip geometry in canvas pixels.
const (
	DefaultTooltipWidth  = 160
	DefaultTooltipHeight = 48
	DefaultOffset        = 12
)

// Hit is the result of a successful hover.
type Hit struct {
	// Position is the node's index in Layout.Nodes, which is also its
	// color index.
	Position int          `json:"position"`
	Node     treemap.Node `json:"node"`
	Share    float64      `json:"share"`
	Tooltip  Point        `json:"tooltip"`
}

// Overlay is a tooltip surface owned by a Layer while acquired.
type Overlay interface {
	Show(Hit)
	Hide()
	Release()
}

// OverlayFactory creates overlays on demand.
type OverlayFactory interface {
	Acquire() (Overlay, error)
}

// OverlayFactoryFunc adapts a function to OverlayFactory.
type OverlayFactoryFunc func() (Overlay, error)

func (f OverlayFactoryFunc) Acquire() (Overlay, error) { return f() }

// Layer tracks the current layout and the overlay that describes it.
// All methods are safe for concurrent use; Swap is expected to have a
// single caller at a time.
type Layer struct {
	current atomic.Pointer[treemap.Layout]

	factory OverlayFactory
	tooltip Size
	offset  float64
	logger  *log.Logger

	mu      sync.Mutex
	overlay Overlay
	closed  bool
}

// LayerOption configures a Layer.
type LayerOption func(*Layer)

// WithOverlays sets the factory used to acquire tooltip overlays.
func WithOverlays(f OverlayFactory) LayerOption { return func(l *Layer) { l.factory = f } }

// WithTooltip sets the tooltip size and pointer offset used for placement.
func WithTooltip(size Size, offset float64) LayerOption {
	return func(l *Layer) { l.tooltip, l.offset = size, offset }
}

// WithLogger sets the logger for overlay failures.
func WithLogger(logger *log.Logger) LayerOption { return func(l *Layer) { l.logger = logger } }

// NewLayer returns an empty layer. Hover misses until the first Swap.
func NewLayer(opts ...LayerOption) *Layer {
	l := &Layer{
		tooltip: Size{W: DefaultTooltipWidth, H: DefaultTooltipHeight},
		offset:  DefaultOffset,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Swap installs a new layout and releases any acquired overlay. The store
// and the overlay detach happen under one lock, so a concurrent Hover
// sees either the old layout with the old overlay or the new layout.
func (l *Layer) Swap(layout treemap.Layout) {
	l.mu.Lock()
	l.current.Store(&layout)
	ov := l.detach()
	l.mu.Unlock()
	if ov != nil {
		ov.Release()
	}
}

// Layout returns the current layout, if any.
func (l *Layer) Layout() (treemap.Layout, bool) {
	p := l.current.Load()
	if p == nil {
		return treemap.Layout{}, false
	}
	return *p, true
}

// HitTest returns the node under (x, y) in the current layout.
func (l *Layer) HitTest(x, y float64) (treemap.Node, bool) {
	p := l.current.Load()
	if p == nil {
		return treemap.Node{}, false
	}
	i, ok := HitTest(*p, x, y)
	if !ok {
		return treemap.Node{}, false
	}
	return p.Nodes[i], true
}

// Hover hit-tests (x, y) and places the tooltip within viewport. A zero,
// negative or non-finite viewport means the layout's own canvas. On a hit
// the overlay is shown, acquiring it first if needed; on a miss it is
// hidden.
func (l *Layer) Hover(x, y float64, viewport Size) (Hit, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.current.Load()
	if l.closed || p == nil {
		return Hit{}, false
	}

	i, ok := HitTest(*p, x, y)
	if !ok {
		if l.overlay != nil {
			l.overlay.Hide()
		}
		return Hit{}, false
	}

	if !viewport.usable() {
		viewport = Size{W: float64(p.Bounds.Width()), H: float64(p.Bounds.Height())}
	}
	hit := Hit{
		Position: i,
		Node:     p.Nodes[i],
		Share:    p.Share(i),
		Tooltip:  PlaceTooltip(Point{X: x, Y: y}, l.tooltip, viewport, l.offset),
	}

	if l.overlay == nil && l.factory != nil {
		ov, err := l.factory.Acquire()
		if err != nil {
			if l.logger != nil {
				l.logger.Warn("overlay unavailable", "err", err)
			}
			return hit, true
		}
		l.overlay = ov
	}
	if l.overlay != nil {
		l.overlay.Show(hit)
	}
	return hit, true
}

// Close releases the overlay. Later hovers miss; Swap still updates the
// layout for readers of Layout and HitTest.
func (l *Layer) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.release()
	return nil
}

func (l *Layer) release() {
	l.mu.Lock()
	ov := l.detach()
	l.mu.Unlock()
	if ov != nil {
		ov.Release()
	}
}

// detach takes the overlay out of the layer. l.mu must be held.
func (l *Layer) detach() Overlay {
	ov := l.overlay
	l.overlay = nil
	return ov
}
