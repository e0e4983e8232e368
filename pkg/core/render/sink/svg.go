package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/squaremap/pkg/core/interact"
	"github.com/matzehuels/squaremap/pkg/core/render"
)

// DefaultFontFamily is used for cell text.
const DefaultFontFamily = `'Inter', 'Helvetica Neue', Arial, sans-serif`

const cellCSS = `
    .cell { transition: stroke-width 0.15s ease; }
    .cell:hover { stroke-width: 3; }
    .content { pointer-events: none; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	font     string
	tooltips bool
	tipSize  interact.Size
	offset   float64
}

// WithTooltips embeds an interactive hover tooltip.
func WithTooltips() SVGOption { return func(r *svgRenderer) { r.tooltips = true } }

// WithTooltipSize sets the tooltip box size and its distance from the pointer.
func WithTooltipSize(size interact.Size, offset float64) SVGOption {
	return func(r *svgRenderer) { r.tipSize, r.offset = size, offset }
}

// WithFont sets the CSS font-family of all text.
func WithFont(family string) SVGOption { return func(r *svgRenderer) { r.font = family } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		font:    DefaultFontFamily,
		tipSize: interact.Size{W: interact.DefaultTooltipWidth, H: interact.DefaultTooltipHeight},
		offset:  interact.DefaultOffset,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders the scene as an SVG document.
func RenderSVG(s render.Scene, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	w, h := s.Width(), s.Height()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" font-family="%s">`+"\n",
		w, h, w, h, escapeXML(r.font))
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cellCSS)

	cmds := s.Commands()

	buf.WriteString(`  <g class="cells">` + "\n")
	for _, c := range cmds {
		if c.Kind == render.KindRect {
			renderCell(&buf, s.Cells[c.Cell], c, s.Text.Decimals)
		}
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="content">` + "\n")
	for _, c := range cmds {
		switch c.Kind {
		case render.KindImage:
			fmt.Fprintf(&buf, `    <image x="%.1f" y="%.1f" width="%.1f" height="%.1f" href="%s" preserveAspectRatio="xMidYMid meet"/>`+"\n",
				c.X, c.Y, c.W, c.H, escapeXML(c.Href))
		case render.KindGlyph:
			fmt.Fprintf(&buf, `    <text class="glyph" x="%.1f" y="%.1f" font-size="%.1f" font-weight="700" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
				c.X, c.Y, c.FontSize, c.Fill, escapeXML(c.Text))
		case render.KindText:
			class, weight := "value", "400"
			if c.Role == render.RoleName {
				class, weight = "name", "600"
			}
			fmt.Fprintf(&buf, `    <text class="%s" x="%.1f" y="%.1f" font-size="%.1f" font-weight="%s" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
				class, c.X, c.Y, c.FontSize, weight, c.Fill, escapeXML(c.Text))
		}
	}
	buf.WriteString("  </g>\n")

	if r.tooltips && len(s.Cells) > 0 {
		renderTooltip(&buf, r)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderCell(buf *bytes.Buffer, cell render.Cell, c render.DrawCommand, decimals int32) {
	fmt.Fprintf(buf, `    <rect id="cell-%d" class="cell" x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="%s" stroke="%s" stroke-width="1"`,
		cell.Position, c.X, c.Y, c.W, c.H, c.Fill, c.Stroke)
	fmt.Fprintf(buf, ` data-name="%s" data-value="%s" data-share="%.4f"/>`+"\n",
		escapeXML(cell.Node.Item.Name), escapeXML(valueLabel(cell, decimals)), cell.Share)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
