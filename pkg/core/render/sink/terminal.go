package sink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/core/interact"
	"github.com/matzehuels/squaremap/pkg/core/render"
)

// TerminalTooltip is the size of the hover box in character cells.
var TerminalTooltip = interact.Size{W: 28, H: 4}

// TerminalContentConfig sizes content for character cells: one line per
// row, one column per character, and a single-character icon glyph.
func TerminalContentConfig() content.Config {
	cfg := content.DefaultConfig()
	cfg.Padding = 0
	cfg.LineHeight = 1
	cfg.CharWidth = 1
	cfg.IconMin = 1
	cfg.IconMax = 1
	cfg.IconFraction = 1
	return cfg
}

const (
	noOwner      = -1
	tooltipOwner = -2
	imageGlyph   = '◆'
	continuation = 0
)

// TerminalOption configures RenderTerminal.
type TerminalOption func(*terminalRenderer)

type terminalRenderer struct {
	hover *interact.Hit
}

// WithHover overlays a tooltip for hit at hit.Tooltip.
func WithHover(hit interact.Hit) TerminalOption {
	return func(r *terminalRenderer) { r.hover = &hit }
}

// grid is a character canvas where every position records the cell that
// owns it.
type grid struct {
	w, h  int
	runes [][]rune
	owner [][]int
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, runes: make([][]rune, h), owner: make([][]int, h)}
	for y := range h {
		g.runes[y] = []rune(strings.Repeat(" ", w))
		g.owner[y] = make([]int, w)
		for x := range g.owner[y] {
			g.owner[y][x] = noOwner
		}
	}
	return g
}

// put writes s starting at (x, y), clipped to the grid. Wide runes take two
// columns; the second holds a continuation marker.
func (g *grid) put(x, y int, s string, owner int) {
	if y < 0 || y >= g.h {
		return
	}
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x < 0 || x+rw > g.w {
			return
		}
		g.runes[y][x], g.owner[y][x] = r, owner
		for k := 1; k < rw; k++ {
			g.runes[y][x+k], g.owner[y][x+k] = continuation, owner
		}
		x += rw
	}
}

func (g *grid) String() string {
	var b strings.Builder
	for y := range g.h {
		for _, r := range g.runes[y] {
			if r != continuation {
				b.WriteRune(r)
			}
		}
		if y < g.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func buildGrid(s render.Scene, r terminalRenderer) *grid {
	g := newGrid(s.Width(), s.Height())

	for _, c := range s.Cells {
		rect := c.Node.Rect
		for y := rect.Y0; y < rect.Y1 && y < g.h; y++ {
			for x := rect.X0; x < rect.X1 && x < g.w; x++ {
				g.owner[y][x] = c.Position
			}
		}
	}

	for _, cmd := range s.Commands() {
		row := int(math.Floor(cmd.Y))
		switch cmd.Kind {
		case render.KindGlyph, render.KindText:
			text := cmd.Text
			w := runewidth.StringWidth(text)
			rect := s.Cells[cmd.Cell].Node.Rect
			x := int(math.Round(cmd.X - float64(w)/2))
			x = max(rect.X0, min(x, rect.X1-w))
			g.put(x, row, text, cmd.Cell)
		case render.KindImage:
			g.put(int(math.Floor(cmd.X+cmd.W/2)), int(math.Floor(cmd.Y+cmd.H/2)), string(imageGlyph), cmd.Cell)
		}
	}

	if r.hover != nil && r.hover.Position >= 0 && r.hover.Position < len(s.Cells) {
		drawTooltip(g, s.Cells[r.hover.Position], r.hover.Tooltip, s.Text.Decimals)
	}
	return g
}

func drawTooltip(g *grid, c render.Cell, at interact.Point, decimals int32) {
	w, h := int(TerminalTooltip.W), int(TerminalTooltip.H)
	x0, y0 := int(math.Floor(at.X)), int(math.Floor(at.Y))
	inner := w - 4

	name := runewidth.Truncate(c.Node.Item.Name, inner, "…")
	value := runewidth.Truncate(valueLabel(c, decimals), inner, "…")

	lines := []string{
		"┌" + strings.Repeat("─", w-2) + "┐",
		"│ " + runewidth.FillRight(name, inner) + " │",
		"│ " + runewidth.FillRight(value, inner) + " │",
		"└" + strings.Repeat("─", w-2) + "┘",
	}
	for i := 0; i < h && i < len(lines); i++ {
		g.put(x0, y0+i, lines[i], tooltipOwner)
	}
}

// RenderTerminal draws the scene with one character per scene pixel.
// Cells are colored by their fill; text uses the derived text color.
func RenderTerminal(s render.Scene, opts ...TerminalOption) string {
	var r terminalRenderer
	for _, opt := range opts {
		opt(&r)
	}
	g := buildGrid(s, r)

	styles := make([]lipgloss.Style, len(s.Cells))
	for i, c := range s.Cells {
		styles[i] = lipgloss.NewStyle().
			Background(lipgloss.Color(c.Colors.Fill)).
			Foreground(lipgloss.Color(c.Colors.Text))
	}
	tipStyle := lipgloss.NewStyle().Background(lipgloss.Color("#ffffff")).Foreground(lipgloss.Color("#111111"))
	plain := lipgloss.NewStyle()

	styleOf := func(owner int) lipgloss.Style {
		switch {
		case owner == tooltipOwner:
			return tipStyle
		case owner >= 0:
			return styles[owner]
		}
		return plain
	}

	var b strings.Builder
	for y := range g.h {
		start := 0
		for x := 1; x <= g.w; x++ {
			if x < g.w && g.owner[y][x] == g.owner[y][start] {
				continue
			}
			var seg strings.Builder
			for _, r := range g.runes[y][start:x] {
				if r != continuation {
					seg.WriteRune(r)
				}
			}
			b.WriteString(styleOf(g.owner[y][start]).Render(seg.String()))
			start = x
		}
		if y < g.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
