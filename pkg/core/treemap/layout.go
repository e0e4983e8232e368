package treemap

import "math"

// Canvas describes the drawing area. Width and Height are floored to whole
// pixels. Padding insets every cell on all four sides; it is not a margin
// around the canvas.
type Canvas struct {
	Width   float64
	Height  float64
	Padding float64
}

// Bounds returns the integer canvas rectangle anchored at the origin.
// Non-finite or non-positive dimensions produce an empty rectangle.
func (c Canvas) Bounds() Rect {
	return Rect{X1: floorPixels(c.Width), Y1: floorPixels(c.Height)}
}

func (c Canvas) pad() int { return floorPixels(c.Padding) }

func floorPixels(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if math.IsInf(v, 1) || v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(v))
}

// Node is a single laid-out leaf.
type Node struct {
	// Index is the item's position in the original input, before filtering.
	Index int

	Item Item

	// Bounds is the unpadded cell. Bounds of all nodes tile the canvas.
	Bounds Rect

	// Rect is the cell after the padding inset; this is what gets drawn.
	Rect Rect

	// Depth is always 0: every leaf is a direct child of the canvas.
	Depth int

	// Row is the index into Layout.Rows of the row that placed this node.
	Row int
}

// Layout is the result of Build.
type Layout struct {
	Canvas Canvas

	// Bounds is the integer canvas rectangle that was partitioned.
	Bounds Rect

	// Nodes are in original input order with unusable items removed.
	Nodes []Node

	// Rows describe the squarified decomposition in placement order.
	Rows []Row

	// Total is the sum of all laid-out values, saturating at
	// math.MaxFloat64.
	Total float64

	// Dropped counts input items that were filtered out.
	Dropped int
}

// Empty reports whether the layout has no cells.
func (l Layout) Empty() bool { return len(l.Nodes) == 0 }

// Share returns the fraction of the total value held by node i.
func (l Layout) Share(i int) float64 {
	if l.Total <= 0 || i < 0 || i >= len(l.Nodes) {
		return 0
	}
	if l.Total < math.MaxFloat64 {
		return l.Nodes[i].Item.Value / l.Total
	}

	// The sum saturated; recompute it relative to the largest value.
	var m float64
	for _, n := range l.Nodes {
		m = max(m, n.Item.Value)
	}
	var sum float64
	for _, n := range l.Nodes {
		sum += n.Item.Value / m
	}
	return l.Nodes[i].Item.Value / m / sum
}

// Build computes a squarified treemap of items on the canvas.
//
// Items whose value is not a positive finite number are dropped first. An
// empty item set or a canvas with a non-positive side yields an empty
// layout; neither is an error. The returned nodes follow the input order
// even though placement happens largest-first.
func Build(items []Item, c Canvas) Layout {
	norm := Normalize(items)
	l := Layout{
		Canvas:  c,
		Bounds:  c.Bounds(),
		Total:   norm.Total,
		Dropped: norm.Dropped,
	}
	if l.Bounds.Empty() || norm.Len() == 0 {
		l.Bounds = Rect{}
		return l
	}

	values := make([]float64, norm.Len())
	for k, idx := range norm.Order {
		values[k] = norm.Items[idx].Value
	}
	cells, rows := squarify(values, l.Bounds)

	rowOf := make([]int, len(values))
	for r := range rows {
		for m, k := range rows[r].Members {
			rowOf[k] = r
			rows[r].Members[m] = norm.Order[k]
		}
	}

	pad := c.pad()
	l.Nodes = make([]Node, norm.Len())
	for k, idx := range norm.Order {
		l.Nodes[idx] = Node{
			Index:  norm.Source[idx],
			Item:   norm.Items[idx],
			Bounds: cells[k],
			Rect:   cells[k].Inset(pad),
			Row:    rowOf[k],
		}
	}
	l.Rows = rows
	return l
}
