package treemap

import (
	"context"
	"strings"
	"testing"
)

func TestToDOT(t *testing.T) {
	l := Build([]Item{{Name: "alpha", Value: 3}, {Name: "beta", Value: 1}}, Canvas{Width: 400, Height: 300})

	dot := ToDOT(l)

	if !strings.HasPrefix(dot, "digraph Treemap {") {
		t.Error("ToDOT() should start with 'digraph Treemap {'")
	}
	if !strings.HasSuffix(strings.TrimSpace(dot), "}") {
		t.Error("ToDOT() should end with '}'")
	}

	expected := []string{
		"rankdir=TB",
		"canvas 400x300",
		"canvas -> r0;",
		"alpha",
		"beta",
		"column 0",
	}
	for _, exp := range expected {
		if !strings.Contains(dot, exp) {
			t.Errorf("ToDOT() missing %q", exp)
		}
	}
}

func TestToDOTEmptyLayout(t *testing.T) {
	dot := ToDOT(Build(nil, Canvas{Width: 10, Height: 10}))

	if !strings.Contains(dot, "canvas 0x0") {
		t.Errorf("ToDOT() should describe an empty canvas, got:\n%s", dot)
	}
	if strings.Contains(dot, "->") {
		t.Error("ToDOT() should not contain edges for an empty layout")
	}
}

func TestRenderRowsSVG(t *testing.T) {
	l := Build([]Item{{Name: "alpha", Value: 3}, {Name: "beta", Value: 1}}, Canvas{Width: 400, Height: 300})

	svg, err := RenderRowsSVG(context.Background(), l)
	if err != nil {
		t.Fatalf("RenderRowsSVG() error: %v", err)
	}
	out := string(svg)
	if !strings.Contains(out, "<svg") {
		t.Error("RenderRowsSVG() output missing <svg> tag")
	}
	for _, want := range []string{"alpha", "beta"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderRowsSVG() missing %q", want)
		}
	}
}

func TestRenderRowsSVGEmptyLayout(t *testing.T) {
	svg, err := RenderRowsSVG(context.Background(), Build(nil, Canvas{Width: 10, Height: 10}))
	if err != nil {
		t.Fatalf("RenderRowsSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderRowsSVG() output missing <svg> tag")
	}
}
