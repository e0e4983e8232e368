// Package palette assigns deterministic cell colors.
//
// Colors are chosen by position alone: [Palette.ColorFor] maps an index in
// the final output order to a fill/border/text triple, cycling through a
// fixed set of fills. There is no hidden counter, so rendering the same
// layout twice yields the same colors. Removing an item shifts the colors
// of every item after it.
//
// Borders are derived from fills by darkening in CIE-Lab space, and text
// color is picked for contrast from the fill's HCL lightness.
package palette

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/squaremap/pkg/errors"
)

// Pair is the color assignment of a single cell, as #rrggbb hex strings.
type Pair struct {
	Fill   string `json:"fill" bson:"fill"`
	Border string `json:"border" bson:"border"`
	Text   string `json:"text" bson:"text"`
}

var (
	darkText  = colorful.Color{R: 0.1, G: 0.1, B: 0.1}
	lightText = colorful.Color{R: 1, G: 1, B: 1}
	black     = colorful.Color{}
)

// borderShade is how far a fill is blended towards black for its border.
const borderShade = 0.3

// DefaultFills is the Tableau 10 palette.
var DefaultFills = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Default is the palette used when none is configured.
var Default = MustNew(DefaultFills...)

// Palette is an immutable, ordered set of color pairs.
type Palette struct {
	pairs []Pair
}

// New builds a palette from hex fill colors. Borders and text colors are
// derived from each fill.
func New(fills ...string) (Palette, error) {
	if len(fills) == 0 {
		return Palette{}, errors.New(errors.ErrCodeInvalidColor, "palette needs at least one fill")
	}
	pairs := make([]Pair, len(fills))
	for i, hex := range fills {
		c, err := colorful.Hex(hex)
		if err != nil {
			return Palette{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "fill %d", i)
		}
		pairs[i] = derive(c)
	}
	return Palette{pairs: pairs}, nil
}

// MustNew is like New but panics on invalid input. It is meant for
// package-level palettes built from literals.
func MustNew(fills ...string) Palette {
	p, err := New(fills...)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of distinct pairs.
func (p Palette) Len() int { return len(p.pairs) }

// ColorFor returns the pair for position i, cycling with i mod Len.
// Negative positions wrap the same way. The zero Palette falls back to
// Default.
func (p Palette) ColorFor(i int) Pair {
	if len(p.pairs) == 0 {
		p = Default
	}
	n := len(p.pairs)
	return p.pairs[((i%n)+n)%n]
}

// ColorFor returns the Default palette's pair for position i.
func ColorFor(i int) Pair { return Default.ColorFor(i) }

func derive(fill colorful.Color) Pair {
	border := fill.BlendLab(black, borderShade).Clamped()
	text := lightText
	if _, _, l := fill.Hcl(); l > 0.5 {
		text = darkText
	}
	return Pair{Fill: fill.Hex(), Border: border.Hex(), Text: text.Hex()}
}
