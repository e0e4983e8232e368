// Package render turns a treemap layout into a drawable scene.
//
// [Decorate] combines the three pure stages that follow layout: it colors
// every cell by output position, plans the content that fits inside it and
// flattens the result into [DrawCommand]s. Sinks in the sink subpackage
// consume a [Scene]; the converters in this package turn SVG into PNG or
// PDF.
//
// Decorate does no I/O apart from what the planner's icon resolver does,
// and it is deterministic for a given layout, palette and planner.
package render
