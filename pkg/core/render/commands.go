package render

// Kind identifies what a DrawCommand draws.
type Kind int

const (
	KindRect Kind = iota
	KindImage
	KindGlyph
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindImage:
		return "image"
	case KindGlyph:
		return "glyph"
	case KindText:
		return "text"
	}
	return "unknown"
}

// TextRole distinguishes the lines of text inside a cell.
type TextRole int

const (
	RoleName TextRole = iota
	RoleValue
)

// DrawCommand is a single primitive in paint order. Rects are placed by
// their top-left corner; glyphs and text by their center.
type DrawCommand struct {
	Kind Kind
	Cell int

	X, Y, W, H float64

	Fill   string
	Stroke string

	Text     string
	Role     TextRole
	FontSize float64

	// Href is the image source for KindImage.
	Href string
}

// fontRatio is the font size relative to the line height.
const fontRatio = 0.8

// Commands flattens the scene into draw commands: each cell's rect first,
// then its icon, name and value stacked and centered in the padded cell.
func (s Scene) Commands() []DrawCommand {
	var cmds []DrawCommand
	lh := float64(s.Text.LineHeight)
	pad := float64(s.Text.Padding)

	for _, c := range s.Cells {
		r := c.Node.Rect
		if r.Empty() {
			continue
		}
		cmds = append(cmds, DrawCommand{
			Kind: KindRect, Cell: c.Position,
			X: float64(r.X0), Y: float64(r.Y0), W: float64(r.Width()), H: float64(r.Height()),
			Fill: c.Colors.Fill, Stroke: c.Colors.Border,
		})

		ct := c.Content
		lines := 0
		if ct.ShowValue {
			lines++
		}
		if ct.ShowName {
			lines++
		}
		if lines == 0 {
			continue
		}

		icon := 0.0
		if ct.ShowIcon {
			icon = float64(ct.IconSize)
		}
		innerH := float64(r.Height()) - 2*pad
		top := float64(r.Y0) + pad + (innerH-icon-float64(lines)*lh)/2
		cx := r.CenterX()

		if ct.ShowIcon {
			cmd := DrawCommand{Cell: c.Position, X: cx - icon/2, Y: top, W: icon, H: icon}
			if ct.Icon.Placeholder() {
				cmd.Kind = KindGlyph
				cmd.X, cmd.Y = cx, top+icon/2
				cmd.Text = ct.Icon.Glyph
				cmd.FontSize = icon * fontRatio
				cmd.Fill = c.Colors.Text
			} else {
				cmd.Kind = KindImage
				cmd.Href = ct.Icon.URI
			}
			cmds = append(cmds, cmd)
			top += icon
		}
		if ct.ShowName {
			cmds = append(cmds, DrawCommand{
				Kind: KindText, Cell: c.Position, Role: RoleName,
				X: cx, Y: top + lh/2, Text: ct.TruncatedName,
				Fill: c.Colors.Text, FontSize: lh * fontRatio,
			})
			top += lh
		}
		if ct.ShowValue {
			cmds = append(cmds, DrawCommand{
				Kind: KindText, Cell: c.Position, Role: RoleValue,
				X: cx, Y: top + lh/2, Text: ct.ValueText,
				Fill: c.Colors.Text, FontSize: lh * fontRatio,
			})
		}
	}
	return cmds
}
