package treemap

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the row decomposition.
//
// The graph has three levels: the canvas, one node per row (labelled with
// its orientation, pixel bounds and worst aspect ratio) and one leaf per
// cell (labelled with name, value and pixel size). Rows appear in placement
// order and leaves in the order the row placed them.
func ToDOT(l Layout) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Treemap {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	fmt.Fprintf(&buf, "  canvas [label=%q, shape=box];\n",
		fmt.Sprintf("canvas %dx%d", l.Bounds.Width(), l.Bounds.Height()))

	for _, r := range l.Rows {
		dir := "strip"
		if r.Vertical {
			dir = "column"
		}
		fmt.Fprintf(&buf, "  r%d [label=%q, shape=ellipse];\n", r.Index,
			fmt.Sprintf("%s %d\n%s\nworst %.2f", dir, r.Index, r.Bounds, r.Worst))
		fmt.Fprintf(&buf, "  canvas -> r%d;\n", r.Index)
		for _, m := range r.Members {
			n := l.Nodes[m]
			fmt.Fprintf(&buf, "  n%d [label=%q, shape=box, style=\"filled,rounded\"];\n", m,
				fmt.Sprintf("%s\n%g\n%dx%d", n.Item.Name, n.Item.Value, n.Bounds.Width(), n.Bounds.Height()))
			fmt.Fprintf(&buf, "  r%d -> n%d;\n", r.Index, m)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderRowsSVG renders the row decomposition of l as an SVG document.
//
// It requires the Graphviz library (github.com/goccy/go-graphviz). Errors
// are returned if Graphviz cannot initialize, the generated DOT cannot be
// parsed, or rendering fails.
func RenderRowsSVG(ctx context.Context, l Layout) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(ToDOT(l)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
