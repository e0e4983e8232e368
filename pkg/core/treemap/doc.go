// Package treemap computes squarified treemap layouts.
//
// # Overview
//
// A treemap partitions a rectangular canvas among a flat set of weighted
// items so that the area of each item's rectangle is proportional to its
// value. This package implements the squarified strategy: items are
// processed in value-descending order and greedily grouped into rows laid
// along the shorter side of the remaining rectangle, closing a row as soon
// as adding another item would worsen its worst aspect ratio.
//
// The engine is flat: every item becomes a direct child of the canvas, so
// each [Node] has depth 0.
//
// # Pipeline
//
//  1. [Normalize] drops items whose value is not a positive finite number
//     and computes the value-descending processing order.
//  2. [Build] squarifies the canvas on the integer pixel grid, rounding each
//     row with largest-remainder apportionment so neighbouring cells share
//     edges exactly.
//  3. Every cell is inset by the canvas padding (clamped so a cell never
//     collapses) and the result is returned in original input order.
//
// # Usage
//
//	items := []treemap.Item{
//	    {Name: "ACME", Value: 90},
//	    {Name: "Globex", Value: 2.5},
//	}
//	l := treemap.Build(items, treemap.Canvas{Width: 1000, Height: 500, Padding: 2})
//	for _, n := range l.Nodes {
//	    fmt.Println(n.Item.Name, n.Rect)
//	}
//
// # Determinism
//
// Build is pure: the same items and canvas always yield identical integer
// coordinates. Ties in value are broken by original position, never by name.
//
// # Debugging
//
// [ToDOT] and [RenderRowsSVG] draw the row decomposition (canvas, rows,
// leaves) with Graphviz, which is handy when tuning the aspect-ratio
// heuristic.
package treemap
