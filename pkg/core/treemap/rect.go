package treemap

import "fmt"

// Rect is an axis-aligned rectangle on the integer pixel grid.
// X1 and Y1 are exclusive, so adjacent rectangles share an edge value.
type Rect struct {
	X0, Y0 int
	X1, Y1 int
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() int { return r.X1 - r.X0 }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() int { return r.Y1 - r.Y0 }

// Area returns Width*Height.
func (r Rect) Area() int { return r.Width() * r.Height() }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// CenterX returns the horizontal center point of the rectangle.
func (r Rect) CenterX() float64 { return float64(r.X0+r.X1) / 2 }

// CenterY returns the vertical center point of the rectangle.
func (r Rect) CenterY() float64 { return float64(r.Y0+r.Y1) / 2 }

// Contains reports whether the point lies inside the rectangle.
// The test is half-open: the left and top edges belong to the rectangle,
// the right and bottom edges belong to its neighbour.
func (r Rect) Contains(x, y float64) bool {
	return x >= float64(r.X0) && x < float64(r.X1) &&
		y >= float64(r.Y0) && y < float64(r.Y1)
}

// Intersect returns the overlap of r and o, which is empty when they only
// touch or are disjoint.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		X0: max(r.X0, o.X0), Y0: max(r.Y0, o.Y0),
		X1: min(r.X1, o.X1), Y1: min(r.Y1, o.Y1),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Inset shrinks every edge by pad pixels. The pad is clamped so that a
// rectangle of at least one pixel per side keeps at least one pixel.
func (r Rect) Inset(pad int) Rect {
	pad = clampPad(pad, r.Width(), r.Height())
	return Rect{X0: r.X0 + pad, Y0: r.Y0 + pad, X1: r.X1 - pad, Y1: r.Y1 - pad}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.X0, r.Y0, r.Width(), r.Height())
}

func clampPad(pad, w, h int) int {
	if pad <= 0 {
		return 0
	}
	limit := (min(w, h) - 1) / 2
	if limit < 0 {
		limit = 0
	}
	return min(pad, limit)
}
