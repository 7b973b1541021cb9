// package layout computes fretboard geometry inside a fixed-width view box.
//
// [Engine.Snapshot] is a pure function of (visual config, playable range, string count).
// Fret wires follow equal temperament along a scale length equal to the view-box
// width, and a zoom transform stretches the visible range across the board.
package layout

import (
	"math"

	"github.com/desertthunder/fretx/internal/fretboard"
)

const (
	DefaultWidth       = 800.0
	MarkerRadius       = 6.0
	DoubleMarkerRadius = 8.0
	DoubleMarkerOffset = 28.0 // vertical distance of each doubled dot from the midline
	TargetHeightRatio  = 0.8  // click target height as a fraction of string spacing
	epsilon            = 1e-9
)

// Rect is an axis-aligned rectangle in view-box units.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the midpoint.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// FretLine is one fret wire. Playable wires bound a playable cell.
type FretLine struct {
	Fret     int     `json:"fret"`
	X        float64 `json:"x"`
	Y1       float64 `json:"y1"`
	Y2       float64 `json:"y2"`
	Playable bool    `json:"playable"`
}

// StringLine is one string, drawn across the whole board.
type StringLine struct {
	Index     int     `json:"index"`
	Y         float64 `json:"y"`
	X1        float64 `json:"x1"`
	X2        float64 `json:"x2"`
	Thickness float64 `json:"thickness"`
}

// Marker is one inlay dot. Doubled frets produce two markers.
type Marker struct {
	Fret   int     `json:"fret"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Target is the click rectangle of one cell.
type Target struct {
	Coord fretboard.FretCoord `json:"coord"`
	Rect  Rect                `json:"rect"`
}

// Snapshot is the immutable geometry of one render cycle.
type Snapshot struct {
	Width         float64      `json:"width"`
	Height        float64      `json:"height"`
	Margin        float64      `json:"margin"`
	StartFret     int          `json:"start_fret"`
	EndFret       int          `json:"end_fret"`
	MinFret       int          `json:"min_fret"`
	MaxFret       int          `json:"max_fret"`
	NumStrings    int          `json:"num_strings"`
	HasNut        bool         `json:"has_nut"`
	NutWidth      float64      `json:"nut_width"`
	Positions     []float64    `json:"positions"`
	OriginFret    int          `json:"origin_fret"` // wire at the left edge of the view
	RangeStart    float64      `json:"range_start"`
	RangeEnd      float64      `json:"range_end"`
	ScaleFactor   float64      `json:"scale_factor"`
	StringSpacing float64      `json:"string_spacing"`
	Frets         []FretLine   `json:"frets"`
	Strings       []StringLine `json:"strings"`
	Nut           *Rect        `json:"nut,omitempty"`
	Markers       []Marker     `json:"markers"`
	Targets       []Target     `json:"targets"`
	LeftOverlay   *Rect        `json:"left_overlay,omitempty"`
	RightOverlay  *Rect        `json:"right_overlay,omitempty"`

	offset  float64
	targets map[fretboard.FretCoord]int
}

// Engine holds the fixed view-box width.
type Engine struct {
	Width float64
}

// NewEngine returns an engine with an 800 unit view box.
func NewEngine() Engine {
	return Engine{Width: DefaultWidth}
}

// FretPositions returns x(n) = L · (1 − 2^(−n/12)) for n in [0, MaxFret].
func FretPositions(scaleLength float64) []float64 {
	positions := make([]float64, fretboard.MaxFrets)
	for n := range positions {
		positions[n] = scaleLength * (1 - math.Pow(0.5, float64(n)/12))
	}
	return positions
}

// ForModel snapshots the model's current config, range and string count.
func (e Engine) ForModel(m *fretboard.Model) Snapshot {
	return e.Snapshot(m.VisualConfig(), m.StartFret(), m.EndFret(), m.NumStrings())
}

// Snapshot computes the geometry. Out-of-range inputs are clamped, never rejected.
func (e Engine) Snapshot(cfg fretboard.VisualConfig, start, end, numStrings int) Snapshot {
	w := e.Width
	if w <= 0 {
		w = DefaultWidth
	}
	aspect := cfg.AspectRatio
	if aspect <= 0 {
		aspect = fretboard.DefaultVisualConfig().AspectRatio
	}
	start = clamp(start, 0, fretboard.MaxFret)
	end = clamp(end, start, fretboard.MaxFret)
	numStrings = clamp(numStrings, 1, fretboard.MaxStrings)
	extra := clamp(cfg.ExtraFrets, 0, fretboard.MaxFret)

	s := Snapshot{
		Width:      w,
		Height:     w / aspect,
		StartFret:  start,
		EndFret:    end,
		MinFret:    max(0, start-extra),
		MaxFret:    min(fretboard.MaxFret, end+extra),
		NumStrings: numStrings,
		NutWidth:   cfg.NutWidth,
		Positions:  FretPositions(w),
		targets:    map[fretboard.FretCoord]int{},
	}
	s.Margin = s.Height * cfg.FretMarginPercentage
	s.HasNut = s.MinFret == 0
	s.StringSpacing = s.Height / float64(numStrings+1)

	// Without left context the first playable cell needs its left wire on screen.
	s.OriginFret = s.MinFret
	if s.MinFret > 0 && s.MinFret == s.StartFret {
		s.OriginFret = s.MinFret - 1
	}
	if s.OriginFret > 0 {
		s.RangeStart = s.Positions[s.OriginFret]
	}
	s.RangeEnd = s.Positions[s.MaxFret]

	available := w
	if s.HasNut {
		available = w - cfg.NutWidth
		s.offset = cfg.NutWidth
	}
	if rangeWidth := s.RangeEnd - s.RangeStart; rangeWidth > epsilon {
		s.ScaleFactor = available / rangeWidth
	}

	s.buildNut()
	s.buildFrets()
	s.buildStrings()
	s.buildMarkers(cfg)
	s.buildTargets()
	s.buildOverlays()
	return s
}

// X maps an absolute position along the scale length to view-box x.
func (s Snapshot) X(abs float64) float64 {
	return s.offset + (abs-s.RangeStart)*s.ScaleFactor
}

// FretX returns the view-box x of a drawn fret wire. Fret 0 is the nut's right edge.
func (s Snapshot) FretX(fret int) (float64, bool) {
	if fret < s.OriginFret || fret > s.MaxFret {
		return 0, false
	}
	return s.X(s.Positions[fret]), true
}

// StringY returns the y of string i.
func (s Snapshot) StringY(i int) float64 {
	return float64(i+1) * s.StringSpacing
}

// Target returns the click rectangle for c, if one is on screen.
func (s Snapshot) Target(c fretboard.FretCoord) (Rect, bool) {
	i, ok := s.targets[c]
	if !ok {
		return Rect{}, false
	}
	return s.Targets[i].Rect, true
}

// NotePosition returns the centre of the cell at c, where note circles are drawn.
func (s Snapshot) NotePosition(c fretboard.FretCoord) (float64, float64, bool) {
	r, ok := s.Target(c)
	if !ok {
		return 0, 0, false
	}
	x, y := r.Center()
	return x, y, true
}

// HitTest returns the cell whose click target contains (x, y).
func (s Snapshot) HitTest(x, y float64) (fretboard.FretCoord, bool) {
	for _, t := range s.Targets {
		if t.Rect.Contains(x, y) {
			return t.Coord, true
		}
	}
	return fretboard.FretCoord{}, false
}

func (s *Snapshot) buildNut() {
	if !s.HasNut {
		return
	}
	s.Nut = &Rect{X: 0, Y: s.Margin, W: s.NutWidth, H: s.Height - 2*s.Margin}
}

// buildFrets emits wires origin..max. Fret 0 is drawn as the nut instead.
func (s *Snapshot) buildFrets() {
	for f := s.OriginFret; f <= s.MaxFret; f++ {
		if f == 0 {
			continue
		}
		s.Frets = append(s.Frets, FretLine{
			Fret:     f,
			X:        s.X(s.Positions[f]),
			Y1:       s.Margin,
			Y2:       s.Height - s.Margin,
			Playable: f >= s.StartFret-1 && f <= s.EndFret,
		})
	}
}

func (s *Snapshot) buildStrings() {
	for i := range s.NumStrings {
		s.Strings = append(s.Strings, StringLine{
			Index:     i,
			Y:         s.StringY(i),
			X1:        0,
			X2:        s.Width,
			Thickness: 1 + float64(i),
		})
	}
}

func (s *Snapshot) buildMarkers(cfg fretboard.VisualConfig) {
	mid := s.Height / 2
	for f := max(1, s.MinFret); f <= s.MaxFret; f++ {
		if !cfg.HasMarker(f) {
			continue
		}
		x := s.X((s.Positions[f-1] + s.Positions[f]) / 2)
		if !s.onScreen(x) {
			continue
		}
		if cfg.IsDoubleMarker(f) {
			s.Markers = append(s.Markers,
				Marker{Fret: f, X: x, Y: mid - DoubleMarkerOffset, Radius: DoubleMarkerRadius},
				Marker{Fret: f, X: x, Y: mid + DoubleMarkerOffset, Radius: DoubleMarkerRadius},
			)
			continue
		}
		s.Markers = append(s.Markers, Marker{Fret: f, X: x, Y: mid, Radius: MarkerRadius})
	}
}

// buildTargets emits one rectangle per visible cell whose centre is on screen,
// ordered by string then fret.
func (s *Snapshot) buildTargets() {
	h := TargetHeightRatio * s.StringSpacing
	for str := range s.NumStrings {
		y := s.StringY(str) - h/2
		for f := s.MinFret; f <= s.MaxFret; f++ {
			c := fretboard.FretCoord{String: str, Fret: f}
			var r Rect
			if f == 0 {
				r = Rect{X: 0, Y: y, W: s.NutWidth, H: h}
			} else {
				left, right := s.X(s.Positions[f-1]), s.X(s.Positions[f])
				quarter := (right - left) / 4
				cx := (left + right) / 2
				if !s.onScreen(cx) {
					continue
				}
				r = Rect{X: cx - quarter, Y: y, W: 2 * quarter, H: h}
			}
			s.targets[c] = len(s.Targets)
			s.Targets = append(s.Targets, Target{Coord: c, Rect: r})
		}
	}
}

// buildOverlays dims the context frets on either side of the playable range.
func (s *Snapshot) buildOverlays() {
	top, height := s.Margin, s.Height-2*s.Margin
	if s.StartFret > s.MinFret {
		right := s.X(s.Positions[s.StartFret-1])
		s.LeftOverlay = &Rect{X: 0, Y: top, W: math.Max(0, right), H: height}
	}

	endX := s.X(s.Positions[s.EndFret])
	if endX < s.Width-1e-6 {
		x := math.Max(0, endX)
		s.RightOverlay = &Rect{X: x, Y: top, W: s.Width - x, H: height}
	}
}

func (s *Snapshot) onScreen(x float64) bool {
	return x >= -epsilon && x <= s.Width+epsilon
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
