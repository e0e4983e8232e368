package sink

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/core/interact"
	"github.com/matzehuels/squaremap/pkg/core/palette"
	"github.com/matzehuels/squaremap/pkg/core/render"
	"github.com/matzehuels/squaremap/pkg/core/treemap"
)

func terminalScene(w, h float64) render.Scene {
	l := treemap.Build([]treemap.Item{
		{Name: "left", Value: 1},
		{Name: "right", Value: 3},
	}, treemap.Canvas{Width: w, Height: h})
	return render.Decorate(l, palette.Default, content.NewPlanner(TerminalContentConfig()))
}

func TestBuildGrid(t *testing.T) {
	g := buildGrid(terminalScene(20, 6), terminalRenderer{})

	want := []string{
		"                    ",
		"                    ",
		"       R         L  ",
		"     right      left",
		"     75.0%     25.0%",
		"                    ",
	}
	if diff := cmp.Diff(want, strings.Split(g.String(), "\n")); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
	if g.owner[0][0] != 1 || g.owner[0][19] != 0 {
		t.Errorf("owners = %d, %d, want 1 (right) and 0 (left)", g.owner[0][0], g.owner[0][19])
	}
}

func TestBuildGridTooltip(t *testing.T) {
	s := terminalScene(40, 10)
	hit := interact.Hit{Position: 0, Tooltip: interact.Point{X: 2, Y: 1}}
	g := buildGrid(s, terminalRenderer{hover: &hit})

	lines := strings.Split(g.String(), "\n")
	if !strings.HasPrefix(lines[1][2:], "┌") {
		t.Errorf("line 1 = %q, want tooltip border at column 2", lines[1])
	}
	if !strings.Contains(lines[2], "│ left") {
		t.Errorf("line 2 = %q, want tooltip name", lines[2])
	}
	if !strings.Contains(lines[3], "25.0%") {
		t.Errorf("line 3 = %q, want tooltip share", lines[3])
	}
	if g.owner[1][2] != tooltipOwner {
		t.Errorf("owner at tooltip corner = %d, want %d", g.owner[1][2], tooltipOwner)
	}
}

func TestGridPutWideRunes(t *testing.T) {
	g := newGrid(6, 1)
	g.put(0, 0, "任天堂", 0)
	if got := g.String(); got != "任天堂" {
		t.Errorf("String() = %q, want %q", got, "任天堂")
	}

	g = newGrid(5, 1)
	g.put(0, 0, "任天堂", 0)
	if got := g.String(); got != "任天 " {
		t.Errorf("clipped String() = %q, want %q", got, "任天 ")
	}
}

func TestRenderTerminalDimensions(t *testing.T) {
	out := RenderTerminal(terminalScene(30, 8))
	lines := strings.Split(out, "\n")
	if len(lines) != 8 {
		t.Fatalf("RenderTerminal() has %d lines, want 8", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 30 {
			t.Errorf("line %d width = %d, want 30", i, w)
		}
	}
	if !strings.Contains(out, "right") {
		t.Error("RenderTerminal() should contain cell names")
	}
}

func TestRenderTerminalWithHover(t *testing.T) {
	s := terminalScene(40, 10)
	plain := RenderTerminal(s)
	hovered := RenderTerminal(s, WithHover(interact.Hit{Position: 0, Tooltip: interact.Point{X: 2, Y: 1}}))

	if strings.Contains(plain, "┌") {
		t.Error("RenderTerminal() without options should not draw a tooltip")
	}
	if !strings.Contains(hovered, "┌") || !strings.Contains(hovered, "│ left") {
		t.Error("RenderTerminal(WithHover) should draw the tooltip for the hovered cell")
	}
	if got := len(strings.Split(hovered, "\n")); got != 10 {
		t.Errorf("RenderTerminal(WithHover) has %d lines, want 10", got)
	}
}

func TestRenderLegend(t *testing.T) {
	out := RenderLegend(terminalScene(20, 6))
	for _, want := range []string{"Name", "Share", "left", "right", "1.0", "3.0", "25.0%", "75.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderLegend() missing %q", want)
		}
	}
}
