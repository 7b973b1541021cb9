package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/music"
)

func newModel(t *testing.T, start, end int) *fretboard.Model {
	t.Helper()
	m, err := fretboard.NewBuilder().StartFret(start).EndFret(end).Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return m
}

func TestAdapter(t *testing.T) {
	t.Run("layer order", func(t *testing.T) {
		a := NewAdapter(newModel(t, 0, 12))
		defer a.Close()

		scene := a.Scene()
		want := []LayerKind{BackgroundLayer, NutLayer, FretsLayer, StringsLayer, MarkersLayer, OverlaysLayer, TargetsLayer, NotesLayer}
		if len(scene.Layers) != len(want) {
			t.Fatalf("expected %d layers, got %d", len(want), len(scene.Layers))
		}
		for i, kind := range want {
			if scene.Layers[i].Kind != kind {
				t.Errorf("layer %d = %v, want %v", i, scene.Layers[i].Kind, kind)
			}
		}
	})

	t.Run("binds stable cells", func(t *testing.T) {
		m := newModel(t, 0, 12)
		a := NewAdapter(m)
		defer a.Close()

		c := fretboard.FretCoord{String: 3, Fret: 7}
		if a.Cell(c) != m.Cell(c) {
			t.Error("adapter cell differs from model cell")
		}
		if a.Cell(fretboard.FretCoord{String: 9, Fret: 0}) != nil {
			t.Error("expected nil outside the grid")
		}
	})

	t.Run("notes follow cell changes", func(t *testing.T) {
		m := newModel(t, 0, 12)
		a := NewAdapter(m)
		defer a.Close()

		notes, _ := a.Scene().Layer(NotesLayer)
		if len(notes.Shapes) != 0 {
			t.Fatalf("expected empty note layer, got %d shapes", len(notes.Shapes))
		}

		m.SetState(fretboard.FretCoord{String: 0, Fret: 5}, fretboard.Show(fretboard.Red, "A"))
		notes, _ = a.Scene().Layer(NotesLayer)
		if len(notes.Shapes) != 2 {
			t.Fatalf("expected circle and label, got %d shapes", len(notes.Shapes))
		}
		circle, ok := notes.Shapes[0].(Circle)
		if !ok || circle.Fill != fretboard.Red.Hex() || circle.R != NoteRadius {
			t.Errorf("circle = %+v", notes.Shapes[0])
		}
		text, ok := notes.Shapes[1].(Text)
		if !ok || text.Content != "A" || !text.Bold {
			t.Errorf("label = %+v", notes.Shapes[1])
		}
		x, y, _ := a.Snapshot().NotePosition(fretboard.FretCoord{String: 0, Fret: 5})
		if circle.CX != x || circle.CY != y {
			t.Errorf("circle at (%v, %v), want (%v, %v)", circle.CX, circle.CY, x, y)
		}
	})

	t.Run("geometry rebuilt only on geometry changes", func(t *testing.T) {
		m := newModel(t, 0, 12)
		a := NewAdapter(m)
		defer a.Close()

		a.Scene()
		m.ProjectScale(music.MustScale(music.G, music.HeptatonicScale(music.Major)))
		a.Scene()
		if a.Rebuilds() != 1 {
			t.Errorf("cell changes rebuilt geometry: %d", a.Rebuilds())
		}

		if err := m.SetRange(3, 7); err != nil {
			t.Fatal(err)
		}
		a.Scene()
		if a.Rebuilds() != 2 {
			t.Errorf("range change did not rebuild geometry: %d", a.Rebuilds())
		}
		if nut, _ := a.Scene().Layer(NutLayer); len(nut.Shapes) != 0 {
			t.Error("nut drawn for a zoomed range")
		}
	})

	t.Run("fret styles", func(t *testing.T) {
		a := NewAdapter(newModel(t, 5, 9))
		defer a.Close()

		frets, _ := a.Scene().Layer(FretsLayer)
		var playable, context int
		for _, s := range frets.Shapes {
			l := s.(Line)
			switch l.Stroke {
			case PlayableFretStroke:
				playable++
			case ContextFretStroke:
				context++
				if l.Opacity != ContextFretOpacity {
					t.Errorf("context fret opacity = %v", l.Opacity)
				}
			}
		}
		if playable != 6 || context != 1 {
			t.Errorf("playable = %d, context = %d", playable, context)
		}
	})

	t.Run("click forwarding", func(t *testing.T) {
		m := newModel(t, 3, 7)
		var got []fretboard.FretCoord
		a := NewAdapter(m, WithClickHandler(func(c fretboard.FretCoord) { got = append(got, c) }))
		defer a.Close()

		c := fretboard.FretCoord{String: 2, Fret: 4}
		if !a.Click(c) {
			t.Fatal("click on a visible cell was dropped")
		}
		if a.Click(fretboard.FretCoord{String: 2, Fret: 20}) {
			t.Error("click on an invisible cell was forwarded")
		}
		x, y, _ := a.Snapshot().NotePosition(c)
		if !a.ClickAt(x, y) {
			t.Error("ClickAt missed the cell")
		}
		if a.ClickAt(-50, -50) {
			t.Error("ClickAt outside the board was forwarded")
		}
		if len(got) != 2 || got[0] != c || got[1] != c {
			t.Errorf("handler saw %v", got)
		}
	})

	t.Run("first playable fret without context", func(t *testing.T) {
		m := fretboard.NewBuilder().
			StartFret(3).
			EndFret(7).
			VisualConfig(fretboard.DefaultVisualConfig().WithExtraFrets(0)).
			MustBuild()
		m.ProjectScale(music.MustScale(music.G, music.HeptatonicScale(music.Major)))

		var clicked bool
		a := NewAdapter(m, WithClickHandler(func(fretboard.FretCoord) { clicked = true }))
		defer a.Close()

		root := fretboard.FretCoord{String: 5, Fret: 3}
		if st := m.State(root); st.Color != fretboard.Green {
			t.Fatalf("root state = %v", st)
		}
		notes, _ := a.Scene().Layer(NotesLayer)
		if len(notes.Shapes) != 2*len(m.VisibleStates()) {
			t.Errorf("drew %d note shapes for %d visible cells", len(notes.Shapes), len(m.VisibleStates()))
		}
		x, y, ok := a.Snapshot().NotePosition(root)
		if !ok {
			t.Fatal("G root at fret 3 has no position")
		}
		var found bool
		for _, s := range notes.Shapes {
			if c, ok := s.(Circle); ok && c.CX == x && c.CY == y && c.Fill == fretboard.Green.Hex() {
				found = true
			}
		}
		if !found {
			t.Error("no green circle drawn for the root")
		}
		if !a.Click(root) || !clicked {
			t.Error("click on the root was dropped")
		}
	})

	t.Run("close detaches", func(t *testing.T) {
		m := newModel(t, 0, 12)
		a := NewAdapter(m)
		a.Scene()
		a.Close()
		a.Close()

		m.SetState(fretboard.FretCoord{String: 0, Fret: 1}, fretboard.Show(fretboard.Blue, "F"))
		notes, _ := a.Scene().Layer(NotesLayer)
		if len(notes.Shapes) != 0 {
			t.Error("closed adapter still receives changes")
		}
	})
}

func TestWriteSVG(t *testing.T) {
	m := newModel(t, 0, 5)
	m.SetState(fretboard.FretCoord{String: 1, Fret: 2}, fretboard.Show(fretboard.Green, "C♯/D♭"))
	m.SetState(fretboard.FretCoord{String: 1, Fret: 3}, fretboard.Show(fretboard.Blue, "<x&y>"))
	a := NewAdapter(m)
	defer a.Close()

	var buf bytes.Buffer
	if err := WriteSVG(&buf, a.Scene()); err != nil {
		t.Fatalf("WriteSVG() failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800 `,
		`fill="` + BoardFill + `"`,
		`<g class="nut">`,
		`data-string="1" data-fret="2"`,
		`fill="` + fretboard.Green.Hex() + `"`,
		"C♯/D♭",
		"&lt;x&amp;y&gt;",
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Index(out, `<g class="background">`) > strings.Index(out, `<g class="notes">`) {
		t.Error("background drawn after notes")
	}
	if SVG(a.Scene()) != out {
		t.Error("SVG and WriteSVG disagree")
	}
}

func TestBoardOptions(t *testing.T) {
	t.Run("defaults keep the preset config", func(t *testing.T) {
		m, err := DefaultBoardOptions().Build()
		if err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
		if m.StartFret() != 0 || m.EndFret() != 12 || m.NumStrings() != 6 {
			t.Errorf("board = %d-%d x%d", m.StartFret(), m.EndFret(), m.NumStrings())
		}
		if got := m.VisualConfig().ExtraFrets; got != 1 {
			t.Errorf("extra frets = %d, want preset value 1", got)
		}
		if len(m.VisibleStates()) != 0 {
			t.Error("board without a scale has visible cells")
		}
	})

	t.Run("overrides", func(t *testing.T) {
		opts := BoardOptions{Preset: "BASS", StartFret: 5, EndFret: 9, ExtraFrets: 0, AspectRatio: 5}
		m, err := opts.Build()
		if err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
		cfg := m.VisualConfig()
		if m.NumStrings() != 4 || cfg.ExtraFrets != 0 || cfg.AspectRatio != 5 {
			t.Errorf("board = %d strings, config %+v", m.NumStrings(), cfg)
		}
	})

	t.Run("projects the scale", func(t *testing.T) {
		scale := music.MustScale(music.C, music.HeptatonicScale(music.Major))
		opts := DefaultBoardOptions()
		opts.Scale = &scale
		m, err := opts.Build()
		if err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
		if !m.State(fretboard.FretCoord{String: 1, Fret: 1}).Visible {
			t.Error("C on the B string is hidden")
		}
		if m.State(fretboard.FretCoord{String: 1, Fret: 2}).Visible {
			t.Error("C♯ on the B string is visible")
		}

		var buf bytes.Buffer
		if err := WriteBoardSVG(&buf, m); err != nil {
			t.Fatalf("WriteBoardSVG() failed: %v", err)
		}
		if !strings.Contains(buf.String(), `data-string="1" data-fret="1"`) {
			t.Error("svg missing click target")
		}
	})

	t.Run("errors", func(t *testing.T) {
		if _, err := (BoardOptions{Preset: "banjo", EndFret: 12}).Build(); !errors.Is(err, ErrUnknownPreset) {
			t.Errorf("unknown preset err = %v", err)
		}
		opts := DefaultBoardOptions()
		opts.StartFret, opts.EndFret = 9, 3
		if _, err := opts.Build(); !errors.Is(err, fretboard.ErrInvalidConfiguration) {
			t.Errorf("reversed range err = %v", err)
		}
	})
}
