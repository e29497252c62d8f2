package domain

// InkType is the kind of inking tool a stroke was drawn with.
type InkType string

const (
	InkPen      InkType = "pen"
	InkPencil   InkType = "pencil"
	InkMarker   InkType = "marker"
	InkMonoline InkType = "monoline"
)

// ParseInk maps unknown names to InkPen.
func ParseInk(s string) InkType {
	switch InkType(s) {
	case InkPencil, InkMarker, InkMonoline:
		return InkType(s)
	default:
		return InkPen
	}
}

// RGBA holds color components in [0, 1].
type RGBA struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

// Point is a stroke sample in page coordinates.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"p,omitempty"`
}

// Stroke is one continuous freehand line.
type Stroke struct {
	Ink    InkType `json:"ink"`
	Color  RGBA    `json:"color"`
	Width  float64 `json:"width"`
	Points []Point `json:"points"`
}

// Drawing is the freehand annotation bound to one page.
type Drawing struct {
	Strokes []Stroke `json:"strokes"`
}

// IsEmpty reports whether the drawing has no strokes.
func (d Drawing) IsEmpty() bool { return len(d.Strokes) == 0 }

// Clone returns a deep copy.
func (d Drawing) Clone() Drawing {
	if d.Strokes == nil {
		return Drawing{}
	}
	out := Drawing{Strokes: make([]Stroke, len(d.Strokes))}
	for i, s := range d.Strokes {
		s.Points = append([]Point(nil), s.Points...)
		out.Strokes[i] = s
	}
	return out
}

// Drawings maps a page index to its drawing.
type Drawings map[int]Drawing

// Clone returns a deep copy of the map.
func (m Drawings) Clone() Drawings {
	out := make(Drawings, len(m))
	for i, d := range m {
		out[i] = d.Clone()
	}
	return out
}

// Within drops entries outside [0, pageCount).
func (m Drawings) Within(pageCount int) Drawings {
	out := make(Drawings, len(m))
	for i, d := range m {
		if i >= 0 && i < pageCount {
			out[i] = d
		}
	}
	return out
}

// ToolConfig describes the active inking tool. It is passed explicitly
// to whoever needs it.
type ToolConfig struct {
	Ink   InkType `json:"ink" yaml:"ink"`
	Color RGBA    `json:"color" yaml:"color"`
	Width float64 `json:"width" yaml:"width"`
}

// DefaultTool is a medium black pen.
func DefaultTool() ToolConfig {
	return ToolConfig{Ink: InkPen, Color: RGBA{A: 1}, Width: 3}
}

// Valid reports whether the tool can be applied to a surface.
func (t ToolConfig) Valid() bool {
	return t.Width > 0 && t.Color.A >= 0 && t.Color.A <= 1
}
