package fretboard

import "fmt"

// FretCoord addresses one cell: String 0 is the highest-pitched string,
// Fret 0 is the open string at the nut.
type FretCoord struct {
	String int `json:"string"`
	Fret   int `json:"fret"`
}

// inGrid reports whether c addresses a preallocated cell.
func (c FretCoord) inGrid() bool {
	return c.String >= 0 && c.String < MaxStrings && c.Fret >= 0 && c.Fret < MaxFrets
}

// Color is the fill of a visible note.
type Color int

const (
	Red Color = iota
	Green
	Blue
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// Hex returns the fill used when drawing the colour.
func (c Color) Hex() string {
	switch c {
	case Red:
		return "#e53935"
	case Green:
		return "#43a047"
	case Blue:
		return "#1e88e5"
	default:
		return "#000000"
	}
}

// FretState is the render instruction for one cell: Hidden, or Visible with a colour and label.
//
// Build values with [Hidden] and [Show] so that equal states compare equal.
type FretState struct {
	Visible bool   `json:"visible"`
	Color   Color  `json:"color,omitempty"`
	Label   string `json:"label,omitempty"`
}

// Hidden is the empty cell.
func Hidden() FretState { return FretState{} }

// Show builds a visible state.
func Show(c Color, label string) FretState {
	return FretState{Visible: true, Color: c, Label: label}
}

func (s FretState) normalize() FretState {
	if !s.Visible {
		return Hidden()
	}
	return s
}

func (s FretState) String() string {
	if !s.Visible {
		return "hidden"
	}
	return fmt.Sprintf("%s(%s)", s.Color, s.Label)
}

// Cell is the single, stable slot behind one coordinate.
//
// A model hands out the same *Cell for a coordinate for its whole lifetime;
// writes mutate it in place through [Model.SetState].
type Cell struct {
	coord   FretCoord
	state   FretState
	version uint64
}

// Coord returns the coordinate this cell is bound to.
func (c *Cell) Coord() FretCoord { return c.coord }

// State returns the current render instruction.
func (c *Cell) State() FretState { return c.state }

// Version increments on every effective write.
func (c *Cell) Version() uint64 { return c.version }
