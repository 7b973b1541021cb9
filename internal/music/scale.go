package music

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// ScaleKind discriminates [ScaleType] variants.
type ScaleKind int

const (
	Heptatonic ScaleKind = iota
	Pentatonic
	Chromatic
)

func (k ScaleKind) String() string {
	switch k {
	case Heptatonic:
		return "Heptatonic"
	case Pentatonic:
		return "Pentatonic"
	case Chromatic:
		return "Chromatic"
	default:
		return fmt.Sprintf("ScaleKind(%d)", int(k))
	}
}

// Mode names the interval pattern of a [Heptatonic] or [Pentatonic] scale.
type Mode int

const (
	Major Mode = iota
	Minor
	HarmonicMinor
	MelodicMinor
	Dorian
	Phrygian
	Lydian
	Mixolydian
	Locrian
)

var modeNames = map[Mode]string{
	Major:         "Major",
	Minor:         "Minor",
	HarmonicMinor: "HarmonicMinor",
	MelodicMinor:  "MelodicMinor",
	Dorian:        "Dorian",
	Phrygian:      "Phrygian",
	Lydian:        "Lydian",
	Mixolydian:    "Mixolydian",
	Locrian:       "Locrian",
}

var modeLabels = map[Mode]string{
	HarmonicMinor: "Harmonic Minor",
	MelodicMinor:  "Melodic Minor",
}

// String returns the storage name, e.g. "HarmonicMinor".
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Label returns the display name, e.g. "Harmonic Minor".
func (m Mode) Label() string {
	if label, ok := modeLabels[m]; ok {
		return label
	}
	return m.String()
}

// ParseMode matches a mode name ignoring case, spaces, dashes and underscores.
// "Ionian" and "Aeolian" are accepted as Major and Minor.
func ParseMode(s string) (Mode, error) {
	key := normalizeName(s)
	switch key {
	case "ionian":
		return Major, nil
	case "aeolian", "naturalminor":
		return Minor, nil
	}
	for m, name := range modeNames {
		if key == strings.ToLower(name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidScaleType, s)
}

var heptatonicPatterns = map[Mode][7]Interval{
	Major:         {Unison, MajorSecond, MajorThird, PerfectFourth, PerfectFifth, MajorSixth, MajorSeventh},
	Minor:         {Unison, MajorSecond, MinorThird, PerfectFourth, PerfectFifth, MinorSixth, MinorSeventh},
	HarmonicMinor: {Unison, MajorSecond, MinorThird, PerfectFourth, PerfectFifth, MinorSixth, MajorSeventh},
	MelodicMinor:  {Unison, MajorSecond, MinorThird, PerfectFourth, PerfectFifth, MajorSixth, MajorSeventh},
	Dorian:        {Unison, MajorSecond, MinorThird, PerfectFourth, PerfectFifth, MajorSixth, MinorSeventh},
	Phrygian:      {Unison, MinorSecond, MinorThird, PerfectFourth, PerfectFifth, MinorSixth, MinorSeventh},
	Lydian:        {Unison, MajorSecond, MajorThird, Tritone, PerfectFifth, MajorSixth, MajorSeventh},
	Mixolydian:    {Unison, MajorSecond, MajorThird, PerfectFourth, PerfectFifth, MajorSixth, MinorSeventh},
	Locrian:       {Unison, MinorSecond, MinorThird, PerfectFourth, Tritone, MinorSixth, MinorSeventh},
}

var pentatonicPatterns = map[Mode][5]Interval{
	Major: {Unison, MajorSecond, MajorThird, PerfectFifth, MajorSixth},
	Minor: {Unison, MinorThird, PerfectFourth, PerfectFifth, MinorSeventh},
}

// ScaleType is a tagged variant: Heptatonic(mode), Pentatonic(mode) or Chromatic.
// Mode is meaningless for Chromatic.
type ScaleType struct {
	Kind ScaleKind
	Mode Mode
}

// HeptatonicScale builds the seven-note variant for mode.
func HeptatonicScale(m Mode) ScaleType { return ScaleType{Kind: Heptatonic, Mode: m} }

// PentatonicScale builds the five-note variant for mode.
func PentatonicScale(m Mode) ScaleType { return ScaleType{Kind: Pentatonic, Mode: m} }

// ChromaticScale is the twelve-note variant.
func ChromaticScale() ScaleType { return ScaleType{Kind: Chromatic} }

// AllScaleTypes lists every variant with a materialisation rule.
func AllScaleTypes() []ScaleType {
	out := []ScaleType{}
	for _, m := range []Mode{Major, Minor, HarmonicMinor, MelodicMinor, Dorian, Phrygian, Lydian, Mixolydian, Locrian} {
		out = append(out, HeptatonicScale(m))
	}
	out = append(out, PentatonicScale(Major), PentatonicScale(Minor), ChromaticScale())
	return out
}

// Intervals returns the pattern from the root, or [ErrScaleNotImplemented].
func (t ScaleType) Intervals() ([]Interval, error) {
	switch t.Kind {
	case Heptatonic:
		if p, ok := heptatonicPatterns[t.Mode]; ok {
			return p[:], nil
		}
	case Pentatonic:
		if p, ok := pentatonicPatterns[t.Mode]; ok {
			return p[:], nil
		}
	case Chromatic:
		return AllIntervals()[:NumNotes], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrScaleNotImplemented, t)
}

// String returns a display name such as "Major", "Minor Pentatonic" or "Chromatic".
func (t ScaleType) String() string {
	switch t.Kind {
	case Chromatic:
		return "Chromatic"
	case Pentatonic:
		return t.Mode.Label() + " Pentatonic"
	default:
		return t.Mode.Label()
	}
}

// Slug returns a URL and CLI friendly identifier, e.g. "harmonic-minor" or "minor-pentatonic".
func (t ScaleType) Slug() string {
	base := strings.ToLower(strings.ReplaceAll(t.Mode.Label(), " ", "-"))
	switch t.Kind {
	case Chromatic:
		return "chromatic"
	case Pentatonic:
		return base + "-pentatonic"
	default:
		return base
	}
}

// ParseScaleType reads names like "major", "harmonic minor", "minor-pentatonic" or "chromatic".
func ParseScaleType(s string) (ScaleType, error) {
	key := normalizeName(s)
	if key == "" {
		return ScaleType{}, fmt.Errorf("%w: empty", ErrInvalidScaleType)
	}
	if key == "chromatic" {
		return ChromaticScale(), nil
	}

	kind := Heptatonic
	if strings.Contains(key, "pentatonic") {
		kind = Pentatonic
		key = strings.ReplaceAll(key, "pentatonic", "")
	}

	m, err := ParseMode(key)
	if err != nil {
		return ScaleType{}, fmt.Errorf("%w: %q", ErrInvalidScaleType, s)
	}
	t := ScaleType{Kind: kind, Mode: m}
	if _, err := t.Intervals(); err != nil {
		return ScaleType{}, err
	}
	return t, nil
}

// MarshalJSON writes the externally tagged form: {"Heptatonic":"Major"} or "Chromatic".
func (t ScaleType) MarshalJSON() ([]byte, error) {
	if t.Kind == Chromatic {
		return json.Marshal("Chromatic")
	}
	return json.Marshal(map[string]string{t.Kind.String(): t.Mode.String()})
}

// UnmarshalJSON reads the externally tagged form. The misspelled tag "Hepatonic"
// written by older clients is accepted as Heptatonic.
func (t *ScaleType) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != "Chromatic" {
			return fmt.Errorf("%w: unknown unit variant %q", ErrInvalidScaleType, tag)
		}
		*t = ChromaticScale()
		return nil
	}

	var tagged map[string]string
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScaleType, err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("%w: expected a single variant tag", ErrInvalidScaleType)
	}

	for k, v := range tagged {
		var kind ScaleKind
		switch k {
		case "Heptatonic", "Hepatonic":
			kind = Heptatonic
		case "Pentatonic":
			kind = Pentatonic
		default:
			return fmt.Errorf("%w: unknown variant %q", ErrInvalidScaleType, k)
		}
		m, err := ParseMode(v)
		if err != nil {
			return err
		}
		*t = ScaleType{Kind: kind, Mode: m}
	}
	return nil
}

// Scale is a root plus a [ScaleType], materialised into its ordered notes.
type Scale struct {
	tonic Note
	kind  ScaleType
	notes []Note
	mask  uint16
}

// NewScale materialises the scale by applying each interval of the pattern to root.
// The root is reduced to its pitch class first.
func NewScale(root Note, t ScaleType) (Scale, error) {
	pattern, err := t.Intervals()
	if err != nil {
		return Scale{}, err
	}
	root = root.Shift(0)

	s := Scale{tonic: root, kind: t, notes: make([]Note, 0, len(pattern))}
	for _, iv := range pattern {
		n := iv.Of(root)
		s.notes = append(s.notes, n)
		s.mask |= 1 << uint(n)
	}
	return s, nil
}

// MustScale is [NewScale] for patterns known to exist. It panics otherwise.
func MustScale(root Note, t ScaleType) Scale {
	s, err := NewScale(root, t)
	if err != nil {
		panic(err)
	}
	return s
}

// Contains reports membership of the pitch class n.
func (s Scale) Contains(n Note) bool {
	if !n.Valid() {
		return false
	}
	return s.mask&(1<<uint(n)) != 0
}

// Root returns the root. Chromatic scales have none.
func (s Scale) Root() (Note, bool) {
	if s.kind.Kind == Chromatic {
		return 0, false
	}
	return s.tonic, true
}

// Tonic is the note materialisation started from, present for every variant.
func (s Scale) Tonic() Note { return s.tonic }

// Type returns the scale's variant.
func (s Scale) Type() ScaleType { return s.kind }

// Notes returns a copy of the ordered notes, beginning with the tonic.
func (s Scale) Notes() []Note {
	return slices.Clone(s.notes)
}

// Len returns the number of distinct notes.
func (s Scale) Len() int { return len(s.notes) }

// Degree returns the 1-based scale degree of n.
func (s Scale) Degree(n Note) (int, bool) {
	i := slices.Index(s.notes, n)
	if i < 0 {
		return 0, false
	}
	return i + 1, true
}

func (s Scale) String() string {
	if s.kind.Kind == Chromatic {
		return "Chromatic"
	}
	return s.tonic.Name(Both) + " " + s.kind.String()
}

func normalizeName(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}
