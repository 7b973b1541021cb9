package render

import (
	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/layout"
)

// Board styling.
const (
	BoardFill      = "#deb887"
	BoardRadius    = 8.0
	NutFill        = "#f8f8f8"
	NutStroke      = "#222"
	NutStrokeWidth = 5.0
	NutRadius      = 3.0

	PlayableFretStroke = "#444"
	PlayableFretWidth  = 5.0
	ContextFretStroke  = "#bbb"
	ContextFretWidth   = 3.0
	ContextFretOpacity = 0.6

	StringStroke   = "#888"
	MarkerFill     = "#444"
	MarkerOpacity  = 0.25
	OverlayFill    = "#fff"
	OverlayOpacity = 0.35

	NoteRadius    = 12.0
	NoteOpacity   = 0.85
	LabelFill     = "#fff"
	LabelFontSize = 8.0
)

// ClickHandler receives clicks on cells that have a target in the current scene.
type ClickHandler func(fretboard.FretCoord)

type Option func(*Adapter)

// WithEngine overrides the default 800 unit layout engine.
func WithEngine(e layout.Engine) Option {
	return func(a *Adapter) { a.engine = e }
}

// WithClickHandler registers the click handler at construction.
func WithClickHandler(fn ClickHandler) Option {
	return func(a *Adapter) { a.onClick = fn }
}

// Adapter keeps a [Scene] in step with a [fretboard.Model].
//
// It binds to the model's cells once, at construction, and rebuilds lazily:
// geometry layers only after range, tuning or config changes, the note layer
// after any cell change.
type Adapter struct {
	model  *fretboard.Model
	engine layout.Engine
	cells  [fretboard.MaxStrings][fretboard.MaxFrets]*fretboard.Cell

	snapshot      layout.Snapshot
	geometry      []Layer
	notes         Layer
	geometryDirty bool
	notesDirty    bool
	rebuilds      int

	onClick     ClickHandler
	unsubscribe func()
}

// NewAdapter binds to m and subscribes to its changes. Call [Adapter.Close] to detach.
func NewAdapter(m *fretboard.Model, opts ...Option) *Adapter {
	a := &Adapter{
		model:         m,
		engine:        layout.NewEngine(),
		geometryDirty: true,
		notesDirty:    true,
	}
	for _, opt := range opts {
		opt(a)
	}
	for s := range fretboard.MaxStrings {
		for f := range fretboard.MaxFrets {
			a.cells[s][f] = m.Cell(fretboard.FretCoord{String: s, Fret: f})
		}
	}
	a.unsubscribe = m.OnChange(a.handleChange)
	return a
}

func (a *Adapter) handleChange(ch fretboard.Change) {
	if ch.Has(fretboard.RangeChanged | fretboard.TuningChanged | fretboard.ConfigChanged) {
		a.geometryDirty = true
		a.notesDirty = true
	}
	if ch.Has(fretboard.CellsChanged) {
		a.notesDirty = true
	}
}

// Cell returns the cell the adapter bound for c.
func (a *Adapter) Cell(c fretboard.FretCoord) *fretboard.Cell {
	if c.String < 0 || c.String >= fretboard.MaxStrings || c.Fret < 0 || c.Fret >= fretboard.MaxFrets {
		return nil
	}
	return a.cells[c.String][c.Fret]
}

// Snapshot returns the geometry of the current scene.
func (a *Adapter) Snapshot() layout.Snapshot {
	a.refresh()
	return a.snapshot
}

// Scene returns the current scene, rebuilding the dirty parts first.
func (a *Adapter) Scene() Scene {
	a.refresh()
	layers := make([]Layer, 0, len(a.geometry)+1)
	layers = append(layers, a.geometry...)
	layers = append(layers, a.notes)
	return Scene{Width: a.snapshot.Width, Height: a.snapshot.Height, Layers: layers}
}

// Rebuilds counts geometry rebuilds.
func (a *Adapter) Rebuilds() int { return a.rebuilds }

// OnClick replaces the click handler.
func (a *Adapter) OnClick(fn ClickHandler) { a.onClick = fn }

// Click forwards c to the handler if it has a target in the current scene.
func (a *Adapter) Click(c fretboard.FretCoord) bool {
	if _, ok := a.Snapshot().Target(c); !ok || a.onClick == nil {
		return false
	}
	a.onClick(c)
	return true
}

// ClickAt hit-tests (x, y) in view-box units and forwards the cell under it.
func (a *Adapter) ClickAt(x, y float64) bool {
	c, ok := a.Snapshot().HitTest(x, y)
	if !ok {
		return false
	}
	return a.Click(c)
}

// Close detaches from the model.
func (a *Adapter) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

func (a *Adapter) refresh() {
	if a.geometryDirty {
		a.snapshot = a.engine.ForModel(a.model)
		a.geometry = geometryLayers(a.snapshot)
		a.geometryDirty = false
		a.rebuilds++
	}
	if a.notesDirty {
		a.notes = a.noteLayer()
		a.notesDirty = false
	}
}

func (a *Adapter) noteLayer() Layer {
	layer := Layer{Kind: NotesLayer}
	for _, t := range a.snapshot.Targets {
		st := a.cells[t.Coord.String][t.Coord.Fret].State()
		if !st.Visible {
			continue
		}
		x, y := t.Rect.Center()
		layer.Shapes = append(layer.Shapes,
			Circle{CX: x, CY: y, R: NoteRadius, Fill: st.Color.Hex(), Opacity: NoteOpacity, Coord: t.Coord},
			Text{X: x, Y: y, Content: st.Label, Fill: LabelFill, Size: LabelFontSize, Bold: true},
		)
	}
	return layer
}

// geometryLayers builds every layer below the notes from the snapshot alone.
func geometryLayers(s layout.Snapshot) []Layer {
	background := Layer{Kind: BackgroundLayer, Shapes: []Shape{
		Rect{X: 0, Y: 0, W: s.Width, H: s.Height, Fill: BoardFill, Opacity: 1, Radius: BoardRadius},
	}}

	nut := Layer{Kind: NutLayer}
	if s.Nut != nil {
		nut.Shapes = append(nut.Shapes, Rect{
			X: s.Nut.X, Y: s.Nut.Y, W: s.Nut.W, H: s.Nut.H,
			Fill: NutFill, Stroke: NutStroke, StrokeWidth: NutStrokeWidth, Opacity: 1, Radius: NutRadius,
		})
	}

	frets := Layer{Kind: FretsLayer}
	for _, f := range s.Frets {
		line := Line{X1: f.X, Y1: f.Y1, X2: f.X, Y2: f.Y2}
		if f.Playable {
			line.Stroke, line.Width, line.Opacity = PlayableFretStroke, PlayableFretWidth, 1
		} else {
			line.Stroke, line.Width, line.Opacity = ContextFretStroke, ContextFretWidth, ContextFretOpacity
		}
		frets.Shapes = append(frets.Shapes, line)
	}

	strings := Layer{Kind: StringsLayer}
	for _, str := range s.Strings {
		strings.Shapes = append(strings.Shapes, Line{
			X1: str.X1, Y1: str.Y, X2: str.X2, Y2: str.Y,
			Stroke: StringStroke, Width: str.Thickness, Opacity: 1,
		})
	}

	markers := Layer{Kind: MarkersLayer}
	for _, m := range s.Markers {
		markers.Shapes = append(markers.Shapes, Circle{CX: m.X, CY: m.Y, R: m.Radius, Fill: MarkerFill, Opacity: MarkerOpacity})
	}

	overlays := Layer{Kind: OverlaysLayer}
	for _, o := range []*layout.Rect{s.LeftOverlay, s.RightOverlay} {
		if o == nil {
			continue
		}
		overlays.Shapes = append(overlays.Shapes, Rect{X: o.X, Y: o.Y, W: o.W, H: o.H, Fill: OverlayFill, Opacity: OverlayOpacity})
	}

	targets := Layer{Kind: TargetsLayer}
	for _, t := range s.Targets {
		coord := t.Coord
		targets.Shapes = append(targets.Shapes, Rect{
			X: t.Rect.X, Y: t.Rect.Y, W: t.Rect.W, H: t.Rect.H,
			Fill: "transparent", Opacity: 1, Coord: &coord,
		})
	}

	return []Layer{background, nut, frets, strings, markers, overlays, targets}
}
