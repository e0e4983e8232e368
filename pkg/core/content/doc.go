// Package content decides what fits inside a treemap cell.
//
// A cell can carry up to three pieces of content: an icon, the item name
// and its value (a percentage share or a formatted amount). Small cells
// cannot fit all of them, so the [Planner] drops content in a fixed order
// as space shrinks: the icon goes first, then the name, then the value.
// Whatever is shown is guaranteed to fit the padded cell.
//
// # Sizing
//
// Text is measured in display columns (so wide runes count twice) times
// [Config.CharWidth] pixels, and vertically in lines of
// [Config.LineHeight] pixels. The icon is scaled to a fraction of the
// smaller inner side and clamped to [Config.IconMin, Config.IconMax].
//
// # Icons
//
// Icon references are resolved through an [IconResolver]. Resolution is
// best effort: a resolver error or panic yields a placeholder glyph built
// from the item name, never a planning error.
package content
