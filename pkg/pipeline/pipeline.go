// Package pipeline runs squaremap's three stages: load a holdings file,
// lay it out, and render the layout. The CLI, the terminal viewer and the
// HTTP API all go through it, so a given input and [Options] produce the
// same picture everywhere.
//
// Stages run alone or chained. A [Runner] chains them behind a cache:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "portfolio.toml",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// [Compute] skips the cache and returns the in-memory scene, which is what
// a resize needs before swapping a layout into an interaction layer.
package pipeline

import (
	"cmp"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/squaremap/pkg/cache"
	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/document"
	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/holdings"
)

// Defaults shared by every entry point.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
	DefaultScale  = 2.0 // PNG rasterization

	// Text renderings are sized in character cells.
	DefaultColumns = 80
	DefaultRows    = 24
)

const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatText = "txt"
)

// formats lists the output formats in help order.
var formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatText}

// Formats returns the supported output formats.
func Formats() []string { return slices.Clone(formats) }

// IsFormat reports whether f names a supported output format.
func IsFormat(f string) bool { return slices.Contains(formats, f) }

// Options configures a pipeline run. It doubles as the JSON body of API
// requests, so runtime-only fields are excluded from encoding.
type Options struct {
	Input  string          `json:"-"`
	Format holdings.Format `json:"format,omitempty"` // overrides detection by extension

	Width   float64        `json:"width,omitempty"`
	Height  float64        `json:"height,omitempty"`
	Padding float64        `json:"padding,omitempty"`
	Palette []string       `json:"palette,omitempty"` // empty selects palette.Default
	Content content.Config `json:"content"`
	IconDir string         `json:"icon_dir,omitempty"` // base for file icon references

	Formats  []string `json:"formats,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Tooltips bool     `json:"tooltips,omitempty"`
	Font     string   `json:"font,omitempty"`
	Columns  int      `json:"columns,omitempty"`
	Rows     int      `json:"rows,omitempty"`

	// Refresh recomputes layouts and artifacts even on a cache hit, and
	// overwrites the cached entries.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// Resolver, when set, replaces the URL and IconDir resolvers.
	Resolver content.IconResolver `json:"-"`
}

// Result is everything one [Runner.Execute] call produced.
type Result struct {
	Holdings     holdings.File
	HoldingsHash string
	Layout       document.Layout
	Artifacts    map[string][]byte // keyed by format
	Stats        Stats
	CacheInfo    CacheInfo
}

// Stats counts and times a run. Dropped holdings had a zero, negative or
// non-finite value.
type Stats struct {
	ItemCount  int
	CellCount  int
	Dropped    int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from cache. RenderHit is
// true only when every requested format was cached.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// ValidateFormat rejects anything [IsFormat] does not accept.
func ValidateFormat(format string) error {
	if !IsFormat(format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format %q (must be one of: %s)", format, strings.Join(formats, ", "))
	}
	return nil
}

// ValidateFormats checks every entry of list.
func ValidateFormats(list []string) error {
	for _, f := range list {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list, lowercasing entries and
// dropping blanks and repeats.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// SetLayoutDefaults fills in the canvas and content config. Zero padding
// is a valid choice and stays zero.
func (o *Options) SetLayoutDefaults() {
	o.Width = cmp.Or(o.Width, DefaultWidth)
	o.Height = cmp.Or(o.Height, DefaultHeight)
	if o.Content == (content.Config{}) {
		o.Content = content.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = discardLogger()
	}
}

// ValidateForLayout applies layout defaults and checks the canvas.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return errors.ValidateCanvas(o.Width, o.Height, o.Padding)
}

// SetRenderDefaults fills in formats, PNG scale and text size.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Scale = cmp.Or(o.Scale, DefaultScale)
	o.Columns = cmp.Or(o.Columns, DefaultColumns)
	o.Rows = cmp.Or(o.Rows, DefaultRows)
	if o.Logger == nil {
		o.Logger = discardLogger()
	}
}

// ValidateForRender applies render defaults and checks formats and sizes.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 || o.Columns < 0 || o.Rows < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale, columns and rows cannot be negative")
	}
	return nil
}

// LayoutKeyOpts lists the options that change a layout.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:   o.Width,
		Height:  o.Height,
		Padding: o.Padding,
		Palette: o.Palette,
		Content: o.Content,
		IconDir: o.IconDir,
	}
}

// ArtifactKeyOpts lists the options that change the artifact in format.
// Options irrelevant to the format are left out so they do not split the
// cache.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		opts.Tooltips = o.Tooltips
		opts.Font = o.Font
		if format == FormatPNG {
			opts.Scale = o.Scale
		}
	case FormatText:
		opts.Columns, opts.Rows = o.Columns, o.Rows
	}
	return opts
}
