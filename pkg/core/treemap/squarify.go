package treemap

import "math"

// Row is one greedy group of the squarified decomposition.
type Row struct {
	Index int

	// Vertical is true when the row is a column cut from the left of the
	// remaining area (members stacked top to bottom). Otherwise the row is
	// a strip cut from the top (members laid left to right).
	Vertical bool

	// Bounds is the pixel area the row occupies.
	Bounds Rect

	// Members are positions in Layout.Nodes, in placement order.
	Members []int

	// Worst is the worst aspect ratio of the row before rounding.
	Worst float64
}

// squarify partitions area among values, which must be positive and sorted
// in descending order. It returns one cell per value (same order) and the
// rows that produced them, with members indexing into values.
func squarify(values []float64, area Rect) ([]Rect, []Row) {
	n := len(values)
	cells := make([]Rect, n)
	var rows []Row
	if n == 0 {
		return cells, rows
	}
	values = rescale(values)

	suffix := make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + values[i]
	}

	rem := area
	for i := 0; i < n; {
		w, h := rem.Width(), rem.Height()
		if w <= 0 || h <= 0 {
			for ; i < n; i++ {
				cells[i] = Rect{X0: rem.X0, Y0: rem.Y0, X1: rem.X0, Y1: rem.Y0}
			}
			break
		}

		scale := float64(w*h) / suffix[i]
		vertical := w >= h
		short, long := h, w
		if !vertical {
			short, long = w, h
		}

		j := i + 1
		rowSum := values[i]
		worst := worstRatio(rowSum, values[i], values[i], scale, short)
		for j < n {
			next := worstRatio(rowSum+values[j], values[i], values[j], scale, short)
			if next > worst {
				break
			}
			worst = next
			rowSum += values[j]
			j++
		}

		t := splitLong(rowSum*scale/float64(short), long, j == n)
		spans := apportion(values[i:j], short)

		var bounds Rect
		if vertical {
			bounds = Rect{X0: rem.X0, Y0: rem.Y0, X1: rem.X0 + t, Y1: rem.Y1}
			y := rem.Y0
			for k, s := range spans {
				cells[i+k] = Rect{X0: bounds.X0, Y0: y, X1: bounds.X1, Y1: y + s}
				y += s
			}
			rem.X0 += t
		} else {
			bounds = Rect{X0: rem.X0, Y0: rem.Y0, X1: rem.X1, Y1: rem.Y0 + t}
			x := rem.X0
			for k, s := range spans {
				cells[i+k] = Rect{X0: x, Y0: bounds.Y0, X1: x + s, Y1: bounds.Y1}
				x += s
			}
			rem.Y0 += t
		}

		members := make([]int, 0, j-i)
		for k := i; k < j; k++ {
			members = append(members, k)
		}
		rows = append(rows, Row{Index: len(rows), Vertical: vertical, Bounds: bounds, Members: members, Worst: worst})
		i = j
	}
	return cells, rows
}

// rescale divides values by the power of two just above the largest one so
// that the suffix sums cannot overflow. Power-of-two division is exact, so
// proportions and the resulting layout are unchanged for ordinary inputs.
// Values too small to survive the division are raised to the smallest
// positive float.
func rescale(values []float64) []float64 {
	_, exp := math.Frexp(values[0])
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = max(math.Ldexp(v, -exp), math.SmallestNonzeroFloat64)
	}
	return out
}

// worstRatio returns the worst aspect ratio of a row whose values sum to sum,
// with largest value vmax and smallest vmin, laid along a side of length
// short. With row thickness t = area/short, each cell is t by a/t, so its
// ratio is max(t²/a, a/t²); the extremes come from vmax and vmin.
func worstRatio(sum, vmax, vmin, scale float64, short int) float64 {
	area := sum * scale
	s2 := float64(short) * float64(short)
	a2 := area * area
	return max(s2*vmax*scale/a2, a2/(s2*vmin*scale))
}
