// package music implements the pitch-class kernel: notes, intervals and scales.
package music

import (
	"fmt"
	"strings"
)

// Note is one of the 12 equal-tempered pitch classes, C = 0 through B = 11.
type Note int

const (
	C Note = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// NumNotes is the size of the pitch-class set.
const NumNotes = 12

// NameStyle selects how accidentals are spelled.
type NameStyle int

const (
	Both NameStyle = iota // "C♯/D♭"
	Sharp
	Flat
)

var (
	sharpNames = [NumNotes]string{"C", "C♯", "D", "D♯", "E", "F", "F♯", "G", "G♯", "A", "A♯", "B"}
	flatNames  = [NumNotes]string{"C", "D♭", "D", "E♭", "E", "F", "G♭", "G", "A♭", "A", "B♭", "B"}
	wireNames  = [NumNotes]string{
		"C", "CSharpOrDFlat", "D", "DSharpOrEFlat", "E", "F",
		"FSharpOrGFlat", "G", "GSharpOrAFlat", "A", "ASharpOrBFlat", "B",
	}
)

// AllNotes returns the 12 pitch classes in ascending order from C.
func AllNotes() []Note {
	notes := make([]Note, NumNotes)
	for i := range notes {
		notes[i] = Note(i)
	}
	return notes
}

// Shift returns the pitch class n half-steps above (or below, for negative n) this note.
func (n Note) Shift(steps int) Note {
	v := (int(n) + steps) % NumNotes
	if v < 0 {
		v += NumNotes
	}
	return Note(v)
}

// Valid reports whether n is one of the 12 pitch classes.
func (n Note) Valid() bool {
	return n >= C && n <= B
}

// IsNatural reports whether the note has no accidental.
func (n Note) IsNatural() bool {
	return sharpNames[n.normalize()] == flatNames[n.normalize()]
}

// Name spells the note in the given style.
func (n Note) Name(style NameStyle) string {
	i := n.normalize()
	switch style {
	case Sharp:
		return sharpNames[i]
	case Flat:
		return flatNames[i]
	default:
		if sharpNames[i] == flatNames[i] {
			return sharpNames[i]
		}
		return sharpNames[i] + "/" + flatNames[i]
	}
}

// String returns the [Both] spelling used for fretboard labels.
func (n Note) String() string {
	return n.Name(Both)
}

// MarshalText encodes the note with its storage name, e.g. "CSharpOrDFlat".
func (n Note) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNote, int(n))
	}
	return []byte(wireNames[n]), nil
}

// UnmarshalText accepts any spelling understood by [ParseNote].
func (n *Note) UnmarshalText(text []byte) error {
	parsed, err := ParseNote(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func (n Note) normalize() int {
	return int(C.Shift(int(n)))
}

// ParseNote reads a note name.
//
// Accepted forms are the storage names ("DSharpOrEFlat"), letter names with
// ASCII or unicode accidentals ("Eb", "E♭", "D#", "D♯"), the combined label
// ("D♯/E♭") and the German "H" for B. Letters are case-insensitive.
func ParseNote(s string) (Note, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidNote)
	}

	for i, w := range wireNames {
		if strings.EqualFold(raw, w) {
			return Note(i), nil
		}
	}

	if sharp, flat, ok := strings.Cut(raw, "/"); ok {
		a, err := ParseNote(sharp)
		if err != nil {
			return 0, err
		}
		b, err := ParseNote(flat)
		if err != nil {
			return 0, err
		}
		if a != b {
			return 0, fmt.Errorf("%w: %q spells two different notes", ErrInvalidNote, s)
		}
		return a, nil
	}

	runes := []rune(raw)
	var base Note
	switch strings.ToUpper(string(runes[0])) {
	case "C":
		base = C
	case "D":
		base = D
	case "E":
		base = E
	case "F":
		base = F
	case "G":
		base = G
	case "A":
		base = A
	case "B", "H":
		base = B
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidNote, s)
	}

	offset := 0
	for _, r := range runes[1:] {
		switch r {
		case '#', '♯':
			offset++
		case 'b', '♭':
			offset--
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidNote, s)
		}
	}
	if offset < -2 || offset > 2 {
		return 0, fmt.Errorf("%w: %q has too many accidentals", ErrInvalidNote, s)
	}

	return base.Shift(offset), nil
}
