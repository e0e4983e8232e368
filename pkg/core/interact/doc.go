// Package interact answers pointer queries against a rendered treemap.
//
// A [Layer] holds the most recent [treemap.Layout]. Recomputing a layout
// and calling [Layer.Swap] replaces it in one atomic step, so a concurrent
// [Layer.Hover] sees either the old layout or the new one, never a mix.
//
// # Overlays
//
// The tooltip overlay is a scoped resource. It is acquired from the
// [OverlayFactory] on the first hit, shown on every hit and hidden on a
// miss. Swap and Close release it; the next hit acquires a fresh one.
//
// # Tooltip placement
//
// [PlaceTooltip] puts the tooltip above and to the right of the pointer,
// flips it left when it would leave the viewport on the right, flips it
// below when it would leave at the top, and finally clamps it inside the
// viewport.
package interact
