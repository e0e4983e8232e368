package treemap

import (
	"math"
	"slices"
)

// apportion splits total integer pixels among weights using the
// largest-remainder method: every quota is floored, then the leftover
// pixels go to the largest fractional parts first (ties to the lower
// position). The result always sums to total.
//
// When total >= len(weights) every share is raised to at least one pixel by
// borrowing from the largest share, so no positive weight disappears.
func apportion(weights []float64, total int) []int {
	n := len(weights)
	out := make([]int, n)
	if n == 0 || total <= 0 {
		return out
	}

	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		out[n-1] = total
		return out
	}

	rems := make([]float64, n)
	assigned := 0
	for i, w := range weights {
		q := w / sum * float64(total)
		f := math.Floor(q)
		out[i] = int(f)
		rems[i] = q - f
		assigned += out[i]
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case rems[a] > rems[b]:
			return -1
		case rems[a] < rems[b]:
			return 1
		}
		return 0
	})
	for k := 0; assigned < total; k = (k + 1) % n {
		out[order[k]]++
		assigned++
	}
	for ; assigned > total; assigned-- {
		out[largest(out)]--
	}

	if total >= n {
		for i := range out {
			if out[i] > 0 {
				continue
			}
			donor := largest(out)
			out[donor]--
			out[i]++
		}
	}
	return out
}

// largest returns the position of the biggest share, lowest position on ties.
func largest(shares []int) int {
	best := 0
	for i, s := range shares {
		if s > shares[best] {
			best = i
		}
	}
	return best
}

// splitLong rounds a fractional row thickness to whole pixels. The row and
// the remainder form a two-way largest-remainder split of the long side.
// Unless the row is the last one, at least one pixel is left on each side.
func splitLong(thickness float64, long int, last bool) int {
	if last {
		return long
	}
	t := int(math.Round(thickness))
	if long >= 2 {
		t = max(1, min(t, long-1))
	} else {
		t = max(0, min(t, long))
	}
	return t
}
