package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/core/palette"
	"github.com/matzehuels/squaremap/pkg/core/render"
	"github.com/matzehuels/squaremap/pkg/core/render/sink"
	"github.com/matzehuels/squaremap/pkg/core/treemap"
	"github.com/matzehuels/squaremap/pkg/document"
)

// RenderFromLayout generates artifacts in opts.Formats from a serialized
// layout. Options are expected to have render defaults applied.
func RenderFromLayout(ctx context.Context, doc document.Layout, opts Options) (map[string][]byte, error) {
	scene := doc.Scene()
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	svgOnce := func() []byte {
		if svg == nil {
			svg = sink.RenderSVG(scene, buildSVGOptions(opts)...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgOnce()
		case FormatPNG:
			data, err = render.ToPNG(ctx, svgOnce(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svgOnce())
		case FormatJSON:
			data, err = document.MarshalLayout(doc)
		case FormatText:
			data, err = renderText(doc, opts)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderFromLayoutData renders output from serialized layout data.
// This is useful when the layout was computed elsewhere (e.g., cached).
func RenderFromLayoutData(ctx context.Context, layoutData []byte, opts Options) (map[string][]byte, error) {
	doc, err := document.UnmarshalLayout(layoutData)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return RenderFromLayout(ctx, doc, opts)
}

// TextScene lays out the items of doc again on a grid of character cells,
// keeping the document's colors by position.
func TextScene(doc document.Layout, columns, rows int) render.Scene {
	l := treemap.Build(doc.Items(), treemap.Canvas{Width: float64(columns), Height: float64(rows)})
	fills := make([]string, len(doc.Cells))
	for i, c := range doc.Cells {
		fills[i] = c.Colors.Fill
	}
	pal, err := palette.New(fills...)
	if err != nil {
		pal = palette.Default
	}
	planner := content.NewPlanner(textConfig(doc))
	return render.Decorate(l, pal, planner)
}

func textConfig(doc document.Layout) content.Config {
	cfg := sink.TerminalContentConfig()
	cfg.ValueMode = doc.Text.ValueMode
	cfg.Currency = doc.Text.Currency
	cfg.Decimals = doc.Text.Decimals
	cfg.Placeholder = doc.Text.Placeholder
	return cfg
}

// renderText draws the text grid followed by a legend.
func renderText(doc document.Layout, opts Options) ([]byte, error) {
	s := TextScene(doc, opts.Columns, opts.Rows)
	out := sink.RenderTerminal(s)
	if len(s.Cells) > 0 {
		out += "\n" + sink.RenderLegend(s)
	}
	return []byte(out + "\n"), nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Tooltips {
		svgOpts = append(svgOpts, sink.WithTooltips())
	}
	if opts.Font != "" {
		svgOpts = append(svgOpts, sink.WithFont(opts.Font))
	}
	return svgOpts
}
