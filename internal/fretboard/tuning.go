package fretboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/fretx/internal/music"
)

// Tuning lists the open-string notes, index 0 = highest-pitched string.
type Tuning []music.Note

// StandardTuning is E B G D A E, high to low.
func StandardTuning() Tuning {
	return Tuning{music.E, music.B, music.G, music.D, music.A, music.E}
}

// NumStrings is the string count.
func (t Tuning) NumStrings() int { return len(t) }

// Clone returns an independent copy.
func (t Tuning) Clone() Tuning { return slices.Clone(t) }

// Validate checks the string count against the preallocated grid.
func (t Tuning) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: tuning is empty", ErrInvalidConfiguration)
	}
	if len(t) > MaxStrings {
		return fmt.Errorf("%w: tuning has %d strings, max is %d", ErrInvalidConfiguration, len(t), MaxStrings)
	}
	for i, n := range t {
		if !n.Valid() {
			return fmt.Errorf("%w: string %d has invalid note %d", ErrInvalidConfiguration, i, int(n))
		}
	}
	return nil
}

// String joins the sharp spellings high to low, e.g. "E B G D A E".
func (t Tuning) String() string {
	names := make([]string, len(t))
	for i, n := range t {
		names[i] = n.Name(music.Sharp)
	}
	return strings.Join(names, " ")
}

// ParseTuning reads notes separated by spaces or commas, highest string first.
func ParseTuning(s string) (Tuning, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	t := make(Tuning, 0, len(fields))
	for _, f := range fields {
		n, err := music.ParseNote(f)
		if err != nil {
			return nil, err
		}
		t = append(t, n)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
