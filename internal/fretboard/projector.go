package fretboard

import "github.com/desertthunder/fretx/internal/music"

// StateView is the read side of a model the projector needs.
type StateView interface {
	NumStrings() int
	StartFret() int
	EndFret() int
	MinFret() int
	MaxFret() int
	NoteAt(FretCoord) music.Note
}

// Assignment maps every visible coordinate to its target state.
type Assignment map[FretCoord]FretState

// Project computes the target state of every visible cell for scale.
//
// Cells outside the playable range are Hidden. Inside it the root is Green,
// other members are Blue and non-members Hidden. A scale without a root
// (Chromatic) colours every member Blue.
func Project(v StateView, scale music.Scale) Assignment {
	root, hasRoot := scale.Root()
	out := make(Assignment, v.NumStrings()*(v.MaxFret()-v.MinFret()+1))

	for s := range v.NumStrings() {
		for f := v.MinFret(); f <= v.MaxFret(); f++ {
			c := FretCoord{String: s, Fret: f}
			note := v.NoteAt(c)

			switch {
			case f < v.StartFret() || f > v.EndFret():
				out[c] = Hidden()
			case hasRoot && note == root:
				out[c] = Show(Green, note.Name(music.Both))
			case scale.Contains(note):
				out[c] = Show(Blue, note.Name(music.Both))
			default:
				out[c] = Hidden()
			}
		}
	}
	return out
}

// ProjectScale applies [Project] as one batch and returns the number of cells that changed.
func (m *Model) ProjectScale(scale music.Scale) int {
	assignment := Project(m, scale)
	changed := 0
	m.Batch(func() {
		for c, st := range assignment {
			if m.SetState(c, st) {
				changed++
			}
		}
	})
	return changed
}

// UpdateFromScale re-projects scale onto the model.
func (m *Model) UpdateFromScale(scale music.Scale) {
	m.ProjectScale(scale)
}
