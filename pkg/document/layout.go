package document

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/core/palette"
	"github.com/matzehuels/squaremap/pkg/core/render"
	"github.com/matzehuels/squaremap/pkg/core/treemap"
	"github.com/matzehuels/squaremap/pkg/errors"
)

// VizTypeTreemap is the only visualization this format carries.
const VizTypeTreemap = "treemap"

// =============================================================================
// Layout - Serialized Treemap
// =============================================================================

// Layout is the serialization format of a decorated treemap.
type Layout struct {
	VizType string `json:"viz_type" bson:"viz_type"`

	Width   float64 `json:"width" bson:"width"`
	Height  float64 `json:"height" bson:"height"`
	Padding float64 `json:"padding,omitempty" bson:"padding,omitempty"`

	// Bounds is the partitioned integer canvas; zero for empty layouts.
	Bounds Rect `json:"bounds" bson:"bounds"`

	Total   float64 `json:"total" bson:"total"`
	Dropped int     `json:"dropped,omitempty" bson:"dropped,omitempty"`

	// Text is the content sizing the cells were planned with.
	Text content.Config `json:"text" bson:"text"`

	Cells []Cell `json:"cells" bson:"cells"`
	Rows  []Row  `json:"rows,omitempty" bson:"rows,omitempty"`
}

// Rect is an integer rectangle with exclusive max edges.
type Rect struct {
	X0 int `json:"x0" bson:"x0"`
	Y0 int `json:"y0" bson:"y0"`
	X1 int `json:"x1" bson:"x1"`
	Y1 int `json:"y1" bson:"y1"`
}

// Cell is one positioned, colored item.
type Cell struct {
	// Index is the item's position in the original input.
	Index int     `json:"index" bson:"index"`
	Name  string  `json:"name" bson:"name"`
	Value float64 `json:"value" bson:"value"`
	Icon  string  `json:"icon,omitempty" bson:"icon,omitempty"`

	Bounds Rect `json:"bounds" bson:"bounds"`
	Rect   Rect `json:"rect" bson:"rect"`
	Row    int  `json:"row" bson:"row"`

	Share   float64         `json:"share" bson:"share"`
	Colors  palette.Pair    `json:"colors" bson:"colors"`
	Content content.Content `json:"content" bson:"content"`
}

// Row is one step of the squarified decomposition.
type Row struct {
	Index    int     `json:"index" bson:"index"`
	Vertical bool    `json:"vertical" bson:"vertical"`
	Bounds   Rect    `json:"bounds" bson:"bounds"`
	Members  []int   `json:"members" bson:"members"`
	Worst    float64 `json:"worst" bson:"worst"`
}

func fromRect(r treemap.Rect) Rect { return Rect{X0: r.X0, Y0: r.Y0, X1: r.X1, Y1: r.Y1} }

func (r Rect) toRect() treemap.Rect { return treemap.Rect{X0: r.X0, Y0: r.Y0, X1: r.X1, Y1: r.Y1} }

func (r Rect) within(o Rect) bool {
	return r.X0 >= o.X0 && r.Y0 >= o.Y0 && r.X1 <= o.X1 && r.Y1 <= o.Y1 && r.X0 <= r.X1 && r.Y0 <= r.Y1
}

// =============================================================================
// Conversion
// =============================================================================

// FromScene exports a scene.
func FromScene(s render.Scene) Layout {
	l := s.Layout
	doc := Layout{
		VizType: VizTypeTreemap,
		Width:   l.Canvas.Width,
		Height:  l.Canvas.Height,
		Padding: l.Canvas.Padding,
		Bounds:  fromRect(l.Bounds),
		Total:   l.Total,
		Dropped: l.Dropped,
		Text:    s.Text,
		Cells:   make([]Cell, len(s.Cells)),
		Rows:    make([]Row, len(l.Rows)),
	}
	for i, c := range s.Cells {
		n := c.Node
		doc.Cells[i] = Cell{
			Index:   n.Index,
			Name:    n.Item.Name,
			Value:   n.Item.Value,
			Icon:    n.Item.IconRef,
			Bounds:  fromRect(n.Bounds),
			Rect:    fromRect(n.Rect),
			Row:     n.Row,
			Share:   c.Share,
			Colors:  c.Colors,
			Content: c.Content,
		}
	}
	for i, r := range l.Rows {
		doc.Rows[i] = Row{
			Index:    r.Index,
			Vertical: r.Vertical,
			Bounds:   fromRect(r.Bounds),
			Members:  append([]int(nil), r.Members...),
			Worst:    r.Worst,
		}
	}
	return doc
}

// Scene rebuilds the scene the document was exported from.
func (d Layout) Scene() render.Scene {
	l := treemap.Layout{
		Canvas:  treemap.Canvas{Width: d.Width, Height: d.Height, Padding: d.Padding},
		Bounds:  d.Bounds.toRect(),
		Total:   d.Total,
		Dropped: d.Dropped,
		Nodes:   make([]treemap.Node, len(d.Cells)),
		Rows:    make([]treemap.Row, len(d.Rows)),
	}
	s := render.Scene{Text: d.Text, Cells: make([]render.Cell, len(d.Cells))}
	for i, c := range d.Cells {
		n := treemap.Node{
			Index:  c.Index,
			Item:   treemap.Item{Name: c.Name, Value: c.Value, IconRef: c.Icon},
			Bounds: c.Bounds.toRect(),
			Rect:   c.Rect.toRect(),
			Row:    c.Row,
		}
		l.Nodes[i] = n
		s.Cells[i] = render.Cell{Position: i, Node: n, Colors: c.Colors, Content: c.Content, Share: c.Share}
	}
	for i, r := range d.Rows {
		l.Rows[i] = treemap.Row{
			Index:    r.Index,
			Vertical: r.Vertical,
			Bounds:   r.Bounds.toRect(),
			Members:  append([]int(nil), r.Members...),
			Worst:    r.Worst,
		}
	}
	s.Layout = l
	return s
}

// Items returns the laid-out items in cell order. Items that were dropped
// when the layout was built are not recoverable.
func (d Layout) Items() []treemap.Item {
	items := make([]treemap.Item, len(d.Cells))
	for i, c := range d.Cells {
		items[i] = treemap.Item{Name: c.Name, Value: c.Value, IconRef: c.Icon}
	}
	return items
}

// Validate checks that the document is a treemap whose cells lie inside
// its bounds.
func (d Layout) Validate() error {
	if d.VizType != VizTypeTreemap {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported viz_type %q", d.VizType)
	}
	if d.Width < 0 || d.Height < 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "negative canvas %gx%g", d.Width, d.Height)
	}
	for i, c := range d.Cells {
		if c.Index < 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "cell %d has negative index", i)
		}
		if !c.Bounds.within(d.Bounds) || !c.Rect.within(c.Bounds) {
			return errors.New(errors.ErrCodeInvalidFormat, "cell %d (%s) lies outside the canvas", i, c.Name)
		}
	}
	for _, r := range d.Rows {
		for _, m := range r.Members {
			if m < 0 || m >= len(d.Cells) {
				return errors.New(errors.ErrCodeInvalidFormat, "row %d references missing cell %d", r.Index, m)
			}
		}
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes and validates JSON bytes. A missing
// viz_type is read as a treemap.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if l.VizType == "" {
		l.VizType = VizTypeTreemap
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
