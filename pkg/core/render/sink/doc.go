// Package sink writes a decorated treemap scene to concrete outputs.
//
// [RenderSVG] produces a standalone SVG document. With [WithTooltips] it
// embeds a small script that shows a tooltip next to the pointer, placed
// with the same above-right, flip, clamp rule as
// [github.com/matzehuels/squaremap/pkg/core/interact.PlaceTooltip].
//
// [RenderTerminal] draws the scene as colored character cells, where one
// scene pixel is one terminal column or row, and can overlay a hover
// tooltip. [RenderLegend] prints a table of cells with their shares.
package sink
