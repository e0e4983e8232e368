package render

import (
	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/core/palette"
	"github.com/matzehuels/squaremap/pkg/core/treemap"
)

// Cell is a laid-out node together with its colors and content plan.
type Cell struct {
	// Position is the node's index in the layout, which is also its
	// color index.
	Position int
	Node     treemap.Node
	Colors   palette.Pair
	Content  content.Content
	Share    float64
}

// Scene is everything a sink needs to draw a treemap.
type Scene struct {
	Layout treemap.Layout
	Cells  []Cell

	// Text holds the sizing the content was planned with, so sinks place
	// text on the same grid.
	Text content.Config
}

// Width returns the scene width in pixels.
func (s Scene) Width() int { return s.Layout.Bounds.Width() }

// Height returns the scene height in pixels.
func (s Scene) Height() int { return s.Layout.Bounds.Height() }

// Decorate colors and plans every cell of l. A nil planner uses the
// default content configuration.
func Decorate(l treemap.Layout, pal palette.Palette, planner *content.Planner) Scene {
	if planner == nil {
		planner = content.NewPlanner(content.DefaultConfig())
	}
	s := Scene{
		Layout: l,
		Cells:  make([]Cell, len(l.Nodes)),
		Text:   planner.Config(),
	}
	for i, n := range l.Nodes {
		share := l.Share(i)
		s.Cells[i] = Cell{
			Position: i,
			Node:     n,
			Colors:   pal.ColorFor(i),
			Content:  planner.Plan(n.Item, n.Rect.Width(), n.Rect.Height(), share),
			Share:    share,
		}
	}
	return s
}
