package content

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/squaremap/pkg/core/treemap"
)

const (
	ellipsis       = "…"
	defaultGlyph   = "•"
	minNameColumns = 2
)

// Content is the plan for a single cell. Hidden parts have zero values.
type Content struct {
	ShowIcon  bool `json:"show_icon" bson:"show_icon"`
	ShowName  bool `json:"show_name" bson:"show_name"`
	ShowValue bool `json:"show_value" bson:"show_value"`

	// TruncatedName is the name cut to the available width with "…".
	TruncatedName string `json:"name,omitempty" bson:"name,omitempty"`
	ValueText     string `json:"value,omitempty" bson:"value,omitempty"`

	Icon     Icon `json:"icon,omitempty" bson:"icon,omitempty"`
	IconSize int  `json:"icon_size,omitempty" bson:"icon_size,omitempty"`

	// Lines is the number of text lines the inner cell can hold.
	Lines int `json:"lines" bson:"lines"`
}

// Planner plans cell content. It is safe for concurrent use as long as
// its resolver is.
type Planner struct {
	cfg      Config
	resolver IconResolver
	logger   *log.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithResolver sets the icon resolver. Without one every icon is a
// placeholder.
func WithResolver(r IconResolver) Option { return func(p *Planner) { p.resolver = r } }

// WithLogger sets a logger for resolver failures.
func WithLogger(l *log.Logger) Option { return func(p *Planner) { p.logger = l } }

// NewPlanner returns a planner for cfg. Unusable config values are
// replaced with defaults.
func NewPlanner(cfg Config, opts ...Option) *Planner {
	p := &Planner{cfg: cfg.normalized()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the effective configuration.
func (p *Planner) Config() Config { return p.cfg }

// Plan decides what fits in a w×h cell for item, which holds share (a
// fraction in [0, 1]) of the layout total. It never fails: cells too small
// for anything come back with every Show flag false.
func (p *Planner) Plan(item treemap.Item, w, h int, share float64) Content {
	cfg := p.cfg
	innerW := w - 2*cfg.Padding
	innerH := h - 2*cfg.Padding
	if innerW <= 0 || innerH <= 0 {
		return Content{}
	}

	c := Content{Lines: innerH / cfg.LineHeight}
	if c.Lines < 1 {
		return c
	}

	value := cfg.formatValue(item.Value, share)
	if runewidth.StringWidth(value)*cfg.CharWidth > innerW {
		return c
	}
	c.ShowValue = true
	c.ValueText = value

	cols := innerW / cfg.CharWidth
	if c.Lines < 2 || cols < minNameColumns || item.Name == "" {
		return c
	}
	c.ShowName = true
	c.TruncatedName = runewidth.Truncate(item.Name, cols, ellipsis)

	textH := 2 * cfg.LineHeight
	if innerW < cfg.IconMin || innerH < cfg.IconMin+textH {
		return c
	}
	size := int(cfg.IconFraction * float64(min(innerW, innerH)))
	size = max(cfg.IconMin, min(size, cfg.IconMax))
	size = min(size, innerW, innerH-textH)

	c.ShowIcon = true
	c.IconSize = size
	c.Icon = p.resolve(item)
	return c
}

// resolve never fails; any resolver error or panic becomes a placeholder.
func (p *Planner) resolve(item treemap.Item) (icon Icon) {
	if item.IconRef == "" || p.resolver == nil {
		return p.placeholder(item.Name)
	}
	defer func() {
		if r := recover(); r != nil {
			if p.logger != nil {
				p.logger.Warn("icon resolver panicked", "ref", item.IconRef, "panic", r)
			}
			icon = p.placeholder(item.Name)
		}
	}()
	icon, err := p.resolver.Resolve(item.IconRef)
	if err != nil || icon.URI == "" {
		if err != nil && p.logger != nil {
			p.logger.Debug("icon unavailable", "ref", item.IconRef, "err", err)
		}
		return p.placeholder(item.Name)
	}
	return icon
}

func (p *Planner) placeholder(name string) Icon {
	if p.cfg.Placeholder != "" {
		return Icon{Glyph: p.cfg.Placeholder}
	}
	return Icon{Glyph: Glyph(name)}
}

// Glyph returns the placeholder glyph for a name: its first letter in
// upper case, or a bullet when the name is blank.
func Glyph(name string) string {
	name = strings.TrimSpace(name)
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return defaultGlyph
	}
	return string(unicode.ToUpper(r))
}
