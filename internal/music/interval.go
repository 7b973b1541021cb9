package music

import (
	"fmt"
	"strings"
)

// Interval is a named distance in half-steps, Unison (0) through Octave (12).
type Interval int

const (
	Unison Interval = iota
	MinorSecond
	MajorSecond
	MinorThird
	MajorThird
	PerfectFourth
	Tritone
	PerfectFifth
	MinorSixth
	MajorSixth
	MinorSeventh
	MajorSeventh
	Octave
)

var intervalNames = [...]string{
	"Unison", "Minor Second", "Major Second", "Minor Third", "Major Third", "Perfect Fourth",
	"Tritone", "Perfect Fifth", "Minor Sixth", "Major Sixth", "Minor Seventh", "Major Seventh", "Octave",
}

var intervalShort = [...]string{"P1", "m2", "M2", "m3", "M3", "P4", "TT", "P5", "m6", "M6", "m7", "M7", "P8"}

// AllIntervals returns Unison through Octave.
func AllIntervals() []Interval {
	out := make([]Interval, 0, len(intervalNames))
	for i := range intervalNames {
		out = append(out, Interval(i))
	}
	return out
}

// HalfSteps returns the size of the interval.
func (i Interval) HalfSteps() int {
	return int(i)
}

// Of applies the interval upward from n.
func (i Interval) Of(n Note) Note {
	return n.Shift(i.HalfSteps())
}

// Valid reports whether i is between Unison and Octave.
func (i Interval) Valid() bool {
	return i >= Unison && i <= Octave
}

// String returns the long name, e.g. "Perfect Fifth".
func (i Interval) String() string {
	if !i.Valid() {
		return fmt.Sprintf("Interval(%d)", int(i))
	}
	return intervalNames[i]
}

// Short returns the abbreviated quality, e.g. "P5".
func (i Interval) Short() string {
	if !i.Valid() {
		return "?"
	}
	return intervalShort[i]
}

// IntervalBetween returns the ascending interval from a up to b.
//
// Equal notes yield [Unison], never [Octave].
func IntervalBetween(a, b Note) Interval {
	return Interval(int(b.Shift(-int(a))))
}

// ParseInterval accepts the long name ("perfect fifth", "PerfectFifth") or the short form ("P5").
func ParseInterval(s string) (Interval, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
	for i, name := range intervalNames {
		if key == strings.ToLower(strings.ReplaceAll(name, " ", "")) {
			return Interval(i), nil
		}
	}
	for i, short := range intervalShort {
		if strings.TrimSpace(s) == short {
			return Interval(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
}
