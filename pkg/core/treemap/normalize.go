package treemap

import (
	"math"
	"slices"
)

// Item is a single weighted input to the layout.
// Items are identified by their position in the input sequence.
type Item struct {
	Name    string
	Value   float64
	IconRef string // empty when the item has no icon
}

// Normalized is a layout-ready view of an item sequence.
type Normalized struct {
	// Items holds the kept items in original input order.
	Items []Item

	// Source maps each kept item to its position in the original input.
	Source []int

	// Order lists indices into Items sorted by value, largest first.
	// Equal values keep their original relative order.
	Order []int

	// Total is the sum of all kept values. It saturates at
	// math.MaxFloat64 instead of overflowing.
	Total float64

	// Dropped counts items removed because their value was not a
	// positive finite number.
	Dropped int
}

// Len returns the number of kept items.
func (n Normalized) Len() int { return len(n.Items) }

// Normalize filters items that cannot occupy area and computes the
// value-descending processing order. Values are never rescaled.
//
// Items with a value <= 0, NaN or an infinity are dropped silently. When no
// item survives the result is empty, which is not an error.
func Normalize(items []Item) Normalized {
	out := Normalized{
		Items:  make([]Item, 0, len(items)),
		Source: make([]int, 0, len(items)),
	}
	for i, it := range items {
		if !usable(it.Value) {
			out.Dropped++
			continue
		}
		out.Items = append(out.Items, it)
		out.Source = append(out.Source, i)
		out.Total += it.Value
	}
	if math.IsInf(out.Total, 1) {
		out.Total = math.MaxFloat64
	}

	out.Order = make([]int, len(out.Items))
	for i := range out.Order {
		out.Order[i] = i
	}
	slices.SortStableFunc(out.Order, func(a, b int) int {
		va, vb := out.Items[a].Value, out.Items[b].Value
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		}
		return 0
	})
	return out
}

func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
