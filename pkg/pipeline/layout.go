package pipeline

import (
	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/core/palette"
	"github.com/matzehuels/squaremap/pkg/core/render"
	"github.com/matzehuels/squaremap/pkg/core/treemap"
	"github.com/matzehuels/squaremap/pkg/document"
	"github.com/matzehuels/squaremap/pkg/holdings"
)

// =============================================================================
// Layout Generation
// =============================================================================

// Compute lays out, colors and plans f on the canvas described by opts.
// It is pure apart from icon resolution and never touches a cache.
//
// The holdings currency is used for amount labels unless opts.Content
// names one. A bad palette is the only error.
func Compute(f holdings.File, opts Options) (render.Scene, error) {
	opts.SetLayoutDefaults()

	pal := palette.Default
	if len(opts.Palette) > 0 {
		p, err := palette.New(opts.Palette...)
		if err != nil {
			return render.Scene{}, err
		}
		pal = p
	}

	cfg := opts.Content
	if cfg.Currency == "" {
		cfg.Currency = f.Currency
	}
	planner := content.NewPlanner(cfg,
		content.WithResolver(resolverFor(opts)),
		content.WithLogger(opts.Logger))

	canvas := treemap.Canvas{Width: opts.Width, Height: opts.Height, Padding: opts.Padding}
	l := treemap.Build(f.Items(), canvas)
	return render.Decorate(l, pal, planner), nil
}

// GenerateLayout computes the scene for f and exports it as a document.
func GenerateLayout(f holdings.File, opts Options) (document.Layout, error) {
	s, err := Compute(f, opts)
	if err != nil {
		return document.Layout{}, err
	}
	return document.FromScene(s), nil
}

// resolverFor returns opts.Resolver, or http(s) icons followed by files
// under opts.IconDir.
func resolverFor(opts Options) content.IconResolver {
	if opts.Resolver != nil {
		return opts.Resolver
	}
	if opts.IconDir == "" {
		return content.URLResolver{}
	}
	return content.ChainResolver{content.URLResolver{}, content.NewFileResolver(opts.IconDir)}
}
