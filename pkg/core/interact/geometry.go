package interact

import (
	"math"

	"github.com/matzehuels/squaremap/pkg/core/treemap"
)

// Point is a position in canvas or viewport coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width and height in the same units as Point.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// usable reports whether both sides are positive and finite.
func (s Size) usable() bool {
	return s.W > 0 && s.H > 0 && !math.IsInf(s.W, 0) && !math.IsInf(s.H, 0)
}

// PlaceTooltip returns the top-left corner for a tooltip of the given
// size next to pointer. The result always lies within viewport; a tooltip
// larger than the viewport is pinned to its top-left corner. Non-finite
// inputs count as zero, so the result is always finite.
func PlaceTooltip(pointer Point, size Size, viewport Size, offset float64) Point {
	pointer = Point{X: finite(pointer.X), Y: finite(pointer.Y)}
	size = Size{W: finite(size.W), H: finite(size.H)}
	viewport = Size{W: finite(viewport.W), H: finite(viewport.H)}
	offset = finite(offset)

	x := pointer.X + offset
	y := pointer.Y - offset - size.H

	if x+size.W > viewport.W {
		x = pointer.X - offset - size.W
	}
	if y < 0 {
		y = pointer.Y + offset
	}

	return Point{
		X: clamp(x, 0, max(0, viewport.W-size.W)),
		Y: clamp(y, 0, max(0, viewport.H-size.H)),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

// HitTest returns the position in l.Nodes of the cell containing (x, y).
// Containment uses the padded rect and is half-open, so a point on a
// shared edge belongs to exactly one cell and points in padding gaps hit
// nothing.
func HitTest(l treemap.Layout, x, y float64) (int, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].Rect.Contains(x, y) {
			return i, true
		}
	}
	return -1, false
}
