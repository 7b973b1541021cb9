package music

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func TestNote(t *testing.T) {
	t.Run("Shift", func(t *testing.T) {
		tc := []struct {
			name  string
			note  Note
			steps int
			want  Note
		}{
			{name: "zero", note: C, steps: 0, want: C},
			{name: "up a fifth", note: A, steps: 7, want: E},
			{name: "wraps past B", note: B, steps: 1, want: C},
			{name: "negative", note: C, steps: -1, want: B},
			{name: "large negative", note: E, steps: -25, want: DSharp},
			{name: "full octaves", note: G, steps: 36, want: G},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.note.Shift(tt.steps); got != tt.want {
					t.Errorf("%v.Shift(%d) = %v, want %v", tt.note, tt.steps, got, tt.want)
				}
			})
		}
	})

	t.Run("Shift is invertible", func(t *testing.T) {
		for _, n := range AllNotes() {
			for k := -40; k <= 40; k++ {
				if got := n.Shift(k).Shift(-k); got != n {
					t.Fatalf("%v.Shift(%d).Shift(%d) = %v", n, k, -k, got)
				}
			}
		}
	})

	t.Run("Name", func(t *testing.T) {
		tc := []struct {
			note  Note
			style NameStyle
			want  string
		}{
			{CSharp, Both, "C♯/D♭"},
			{CSharp, Sharp, "C♯"},
			{CSharp, Flat, "D♭"},
			{E, Both, "E"},
			{ASharp, Flat, "B♭"},
		}

		for _, tt := range tc {
			if got := tt.note.Name(tt.style); got != tt.want {
				t.Errorf("Name(%d) = %q, want %q", tt.style, got, tt.want)
			}
		}

		if FSharp.String() != "F♯/G♭" {
			t.Errorf("String() = %q", FSharp.String())
		}
	})

	t.Run("ParseNote", func(t *testing.T) {
		tc := []struct {
			in   string
			want Note
		}{
			{"C", C},
			{"c", C},
			{"C#", CSharp},
			{"Db", CSharp},
			{"D♭", CSharp},
			{"C♯/D♭", CSharp},
			{"DSharpOrEFlat", DSharp},
			{"Bb", ASharp},
			{"H", B},
			{"Cb", B},
			{"E#", F},
			{" G ", G},
		}

		for _, tt := range tc {
			t.Run(tt.in, func(t *testing.T) {
				got, err := ParseNote(tt.in)
				if err != nil {
					t.Fatalf("ParseNote(%q) error: %v", tt.in, err)
				}
				if got != tt.want {
					t.Errorf("ParseNote(%q) = %v, want %v", tt.in, got, tt.want)
				}
			})
		}
	})

	t.Run("ParseNote invalid", func(t *testing.T) {
		for _, in := range []string{"", "X", "C$", "C###", "C♯/E♭"} {
			if _, err := ParseNote(in); !errors.Is(err, ErrInvalidNote) {
				t.Errorf("ParseNote(%q) error = %v, want ErrInvalidNote", in, err)
			}
		}
	})

	t.Run("text encoding", func(t *testing.T) {
		data, err := json.Marshal(map[string]Note{"root": GSharp})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != `{"root":"GSharpOrAFlat"}` {
			t.Errorf("got %s", data)
		}

		var n Note
		if err := json.Unmarshal([]byte(`"Ab"`), &n); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if n != GSharp {
			t.Errorf("got %v, want G♯/A♭", n)
		}
	})
}

func TestInterval(t *testing.T) {
	t.Run("Of", func(t *testing.T) {
		if got := PerfectFifth.Of(A); got != E {
			t.Errorf("PerfectFifth.Of(A) = %v, want E", got)
		}
		if got := Octave.Of(D); got != D {
			t.Errorf("Octave.Of(D) = %v, want D", got)
		}
	})

	t.Run("IntervalBetween", func(t *testing.T) {
		if got := IntervalBetween(C, G); got != PerfectFifth {
			t.Errorf("IntervalBetween(C, G) = %v", got)
		}
		if got := IntervalBetween(G, C); got != PerfectFourth {
			t.Errorf("IntervalBetween(G, C) = %v", got)
		}
		if got := IntervalBetween(F, F); got != Unison {
			t.Errorf("IntervalBetween(F, F) = %v, want Unison", got)
		}
	})

	t.Run("IntervalBetween round trips", func(t *testing.T) {
		for _, a := range AllNotes() {
			for _, b := range AllNotes() {
				if a == b {
					continue
				}
				if got := IntervalBetween(a, b).Of(a); got != b {
					t.Fatalf("IntervalBetween(%v, %v).Of(%v) = %v", a, b, a, got)
				}
			}
		}
	})

	t.Run("String and parse", func(t *testing.T) {
		if PerfectFifth.String() != "Perfect Fifth" {
			t.Errorf("String() = %q", PerfectFifth.String())
		}
		for _, in := range []string{"perfect fifth", "PerfectFifth", "P5"} {
			got, err := ParseInterval(in)
			if err != nil || got != PerfectFifth {
				t.Errorf("ParseInterval(%q) = %v, %v", in, got, err)
			}
		}
		if _, err := ParseInterval("ninth"); !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("expected ErrInvalidInterval, got %v", err)
		}
	})
}

func TestScale(t *testing.T) {
	t.Run("C major", func(t *testing.T) {
		s := MustScale(C, HeptatonicScale(Major))
		want := []Note{C, D, E, F, G, A, B}
		if !slices.Equal(s.Notes(), want) {
			t.Errorf("Notes() = %v, want %v", s.Notes(), want)
		}
		if s.Contains(FSharp) {
			t.Error("C major should not contain F♯")
		}
		if !s.Contains(E) {
			t.Error("C major should contain E")
		}
		if root, ok := s.Root(); !ok || root != C {
			t.Errorf("Root() = %v, %v", root, ok)
		}
	})

	t.Run("every major scale has seven notes starting at the root", func(t *testing.T) {
		for _, root := range AllNotes() {
			s := MustScale(root, HeptatonicScale(Major))
			notes := s.Notes()
			if len(notes) != 7 {
				t.Fatalf("%v major has %d notes", root, len(notes))
			}
			if notes[0] != root {
				t.Errorf("%v major starts with %v", root, notes[0])
			}
		}
	})

	t.Run("every scale contains its tonic", func(t *testing.T) {
		for _, st := range AllScaleTypes() {
			for _, root := range AllNotes() {
				s := MustScale(root, st)
				if !s.Contains(root) {
					t.Errorf("%v does not contain %v", s, root)
				}
			}
		}
	})

	t.Run("sizes", func(t *testing.T) {
		tc := []struct {
			st   ScaleType
			want int
		}{
			{HeptatonicScale(Dorian), 7},
			{PentatonicScale(Minor), 5},
			{ChromaticScale(), 12},
		}
		for _, tt := range tc {
			if got := MustScale(A, tt.st).Len(); got != tt.want {
				t.Errorf("%v has %d notes, want %d", tt.st, got, tt.want)
			}
		}
	})

	t.Run("chromatic has no root", func(t *testing.T) {
		s := MustScale(E, ChromaticScale())
		if _, ok := s.Root(); ok {
			t.Error("chromatic scale should have no root")
		}
		for _, n := range AllNotes() {
			if !s.Contains(n) {
				t.Errorf("chromatic should contain %v", n)
			}
		}
	})

	t.Run("A minor pentatonic", func(t *testing.T) {
		s := MustScale(A, PentatonicScale(Minor))
		want := []Note{A, C, D, E, G}
		if !slices.Equal(s.Notes(), want) {
			t.Errorf("Notes() = %v, want %v", s.Notes(), want)
		}
	})

	t.Run("Notes returns a copy", func(t *testing.T) {
		s := MustScale(C, HeptatonicScale(Major))
		notes := s.Notes()
		notes[0] = B
		if s.Notes()[0] != C {
			t.Error("mutating Notes() result changed the scale")
		}
	})

	t.Run("Degree", func(t *testing.T) {
		s := MustScale(G, HeptatonicScale(Major))
		if d, ok := s.Degree(FSharp); !ok || d != 7 {
			t.Errorf("Degree(F♯) = %d, %v", d, ok)
		}
		if _, ok := s.Degree(F); ok {
			t.Error("F is not in G major")
		}
	})

	t.Run("root reduced to a pitch class", func(t *testing.T) {
		tests := []struct {
			root Note
			want Note
		}{
			{Note(13), CSharp},
			{Note(24), C},
			{Note(-1), B},
		}
		for _, tt := range tests {
			s := MustScale(tt.root, HeptatonicScale(Major))
			if s.Tonic() != tt.want {
				t.Errorf("NewScale(%d).Tonic() = %d, want %v", int(tt.root), int(s.Tonic()), tt.want)
			}
			if root, ok := s.Root(); !ok || root != tt.want || !root.Valid() {
				t.Errorf("NewScale(%d).Root() = %d, %v", int(tt.root), int(root), ok)
			}
			if s.Notes()[0] != tt.want {
				t.Errorf("NewScale(%d) first note = %d", int(tt.root), int(s.Notes()[0]))
			}
		}
	})

	t.Run("not implemented", func(t *testing.T) {
		_, err := NewScale(C, PentatonicScale(Locrian))
		if !errors.Is(err, ErrScaleNotImplemented) {
			t.Errorf("expected ErrScaleNotImplemented, got %v", err)
		}
	})
}

func TestScaleType(t *testing.T) {
	t.Run("ParseScaleType", func(t *testing.T) {
		tc := []struct {
			in   string
			want ScaleType
		}{
			{"major", HeptatonicScale(Major)},
			{"Harmonic Minor", HeptatonicScale(HarmonicMinor)},
			{"melodic-minor", HeptatonicScale(MelodicMinor)},
			{"aeolian", HeptatonicScale(Minor)},
			{"minor-pentatonic", PentatonicScale(Minor)},
			{"pentatonic major", PentatonicScale(Major)},
			{"Chromatic", ChromaticScale()},
		}
		for _, tt := range tc {
			got, err := ParseScaleType(tt.in)
			if err != nil {
				t.Errorf("ParseScaleType(%q) error: %v", tt.in, err)
				continue
			}
			if got != tt.want {
				t.Errorf("ParseScaleType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}

		if _, err := ParseScaleType("bebop"); !errors.Is(err, ErrInvalidScaleType) {
			t.Errorf("expected ErrInvalidScaleType, got %v", err)
		}
	})

	t.Run("Slug parses back", func(t *testing.T) {
		for _, st := range AllScaleTypes() {
			got, err := ParseScaleType(st.Slug())
			if err != nil || got != st {
				t.Errorf("ParseScaleType(%q) = %v, %v", st.Slug(), got, err)
			}
		}
	})

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal(HeptatonicScale(Major))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != `{"Heptatonic":"Major"}` {
			t.Errorf("got %s", data)
		}

		data, _ = json.Marshal(ChromaticScale())
		if string(data) != `"Chromatic"` {
			t.Errorf("got %s", data)
		}

		var st ScaleType
		if err := json.Unmarshal([]byte(`{"Hepatonic":"Minor"}`), &st); err != nil {
			t.Fatalf("unmarshal legacy tag: %v", err)
		}
		if st != HeptatonicScale(Minor) {
			t.Errorf("got %v", st)
		}

		if err := json.Unmarshal([]byte(`"Diatonic"`), &st); !errors.Is(err, ErrInvalidScaleType) {
			t.Errorf("expected ErrInvalidScaleType, got %v", err)
		}
	})
}
