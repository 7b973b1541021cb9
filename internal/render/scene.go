// package render turns a layout snapshot and per-cell states into a toolkit-neutral scene.
package render

import "github.com/desertthunder/fretx/internal/fretboard"

// LayerKind orders layers back to front.
type LayerKind int

const (
	BackgroundLayer LayerKind = iota
	NutLayer
	FretsLayer
	StringsLayer
	MarkersLayer
	OverlaysLayer
	TargetsLayer
	NotesLayer
)

func (k LayerKind) String() string {
	switch k {
	case BackgroundLayer:
		return "background"
	case NutLayer:
		return "nut"
	case FretsLayer:
		return "frets"
	case StringsLayer:
		return "strings"
	case MarkersLayer:
		return "markers"
	case OverlaysLayer:
		return "overlays"
	case TargetsLayer:
		return "targets"
	case NotesLayer:
		return "notes"
	default:
		return "unknown"
	}
}

// Shape is one of [Line], [Rect], [Circle] or [Text].
type Shape interface {
	shape()
}

type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	Width          float64
	Opacity        float64
}

// Rect is filled and optionally stroked. Click targets carry their cell in Coord.
type Rect struct {
	X, Y, W, H  float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	Radius      float64
	Coord       *fretboard.FretCoord
}

type Circle struct {
	CX, CY, R float64
	Fill      string
	Opacity   float64
	Coord     fretboard.FretCoord
}

// Text is centred on (X, Y).
type Text struct {
	X, Y    float64
	Content string
	Fill    string
	Size    float64
	Bold    bool
}

func (Line) shape()   {}
func (Rect) shape()   {}
func (Circle) shape() {}
func (Text) shape()   {}

type Layer struct {
	Kind   LayerKind
	Shapes []Shape
}

// Scene is an ordered list of layers in draw order.
type Scene struct {
	Width  float64
	Height float64
	Layers []Layer
}

// Layer returns the layer of the given kind.
func (s Scene) Layer(kind LayerKind) (Layer, bool) {
	for _, l := range s.Layers {
		if l.Kind == kind {
			return l, true
		}
	}
	return Layer{}, false
}

// Count returns the number of shapes across all layers.
func (s Scene) Count() int {
	n := 0
	for _, l := range s.Layers {
		n += len(l.Shapes)
	}
	return n
}
