package trainer

import (
	"testing"

	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/render"
	tu "github.com/desertthunder/fretx/internal/testing"
)

// reference A on the high E string at fret 5, asking for a major third (C♯).
func newTrainer(t *testing.T) (*Trainer, *fretboard.Model) {
	t.Helper()
	m := fretboard.NewBuilder().StartFret(0).EndFret(12).MustBuild()
	rng := tu.NewScriptedRandom(int(music.MajorThird), 0, 5)
	return New(m, rng), m
}

var (
	reference = fretboard.FretCoord{String: 0, Fret: 5}
	cSharp    = fretboard.FretCoord{String: 0, Fret: 9}
	dNatural  = fretboard.FretCoord{String: 0, Fret: 10}
)

func TestTrainer(t *testing.T) {
	t.Run("Start poses a question", func(t *testing.T) {
		tr, m := newTrainer(t)
		if tr.State() != Prompting {
			t.Errorf("initial state = %v", tr.State())
		}

		q := tr.Start()
		if q.Interval != music.MajorThird || q.Note != music.A || q.Reference != reference {
			t.Fatalf("question = %+v", q)
		}
		if q.Target() != music.CSharp {
			t.Errorf("target = %v", q.Target())
		}
		if tr.State() != AwaitingAnswer {
			t.Errorf("state = %v, want awaiting answer", tr.State())
		}
		if st := m.State(reference); st != fretboard.Show(fretboard.Green, "A") {
			t.Errorf("reference cell = %v", st)
		}
		if len(m.VisibleStates()) != 1 {
			t.Errorf("expected only the reference visible, got %v", m.VisibleStates())
		}
	})

	t.Run("wrong answer marks the cell red", func(t *testing.T) {
		tr, m := newTrainer(t)
		tr.Start()

		out := tr.Submit(dNatural)
		if out.Result != Wrong || out.Clicked != music.D || out.Target != music.CSharp {
			t.Errorf("outcome = %+v", out)
		}
		if st := m.State(dNatural); st != fretboard.Show(fretboard.Red, "D") {
			t.Errorf("clicked cell = %v", st)
		}
		if got := tr.Stats(); got.Correct != 0 || got.Incorrect != 1 {
			t.Errorf("stats = %+v", got)
		}
		if tr.State() != Incorrect {
			t.Errorf("state = %v", tr.State())
		}
		if tr.Question().Reference != reference {
			t.Error("wrong answer changed the question")
		}
	})

	t.Run("right answer clears and re-prompts", func(t *testing.T) {
		tr, m := newTrainer(t)
		tr.Start()
		tr.Submit(dNatural)

		var changes int
		unsubscribe := m.OnChange(func(fretboard.Change) { changes++ })
		defer unsubscribe()

		out := tr.Submit(cSharp)
		if out.Result != Right || out.Clicked != music.CSharp {
			t.Errorf("outcome = %+v", out)
		}
		if changes != 1 {
			t.Errorf("expected one batched notification, got %d", changes)
		}
		if got := tr.Stats(); got.Correct != 1 || got.Incorrect != 1 {
			t.Errorf("stats = %+v", got)
		}
		if m.State(dNatural).Visible {
			t.Error("red highlight survived a correct answer")
		}

		q := tr.Question()
		visible := m.VisibleStates()
		if len(visible) != 1 || !visible[q.Reference].Visible || visible[q.Reference].Color != fretboard.Green {
			t.Errorf("expected only the new reference visible, got %v", visible)
		}
		if q.Interval < music.MinorSecond || q.Interval > music.Octave {
			t.Errorf("interval %v out of range", q.Interval)
		}
		if tr.State() != AwaitingAnswer {
			t.Errorf("state = %v", tr.State())
		}
	})

	t.Run("octave equivalence", func(t *testing.T) {
		tr, _ := newTrainer(t)
		tr.Start()
		// C♯ on the B string, fret 2.
		if out := tr.Submit(fretboard.FretCoord{String: 1, Fret: 2}); out.Result != Right {
			t.Errorf("outcome = %+v", out)
		}
	})

	t.Run("ignored clicks", func(t *testing.T) {
		tr, m := newTrainer(t)
		if out := tr.Submit(cSharp); out.Result != Ignored {
			t.Error("click before Start was graded")
		}

		tr.Start()
		if out := tr.Submit(reference); out.Result != Ignored {
			t.Error("click on the reference was graded")
		}
		if out := tr.Submit(fretboard.FretCoord{String: 0, Fret: 13}); out.Result != Ignored {
			t.Error("click outside the playable range was graded")
		}
		if out := tr.Submit(fretboard.FretCoord{String: 7, Fret: 3}); out.Result != Ignored {
			t.Error("click on a missing string was graded")
		}
		if tr.Stats().Total() != 0 {
			t.Errorf("stats = %+v", tr.Stats())
		}
		if st := m.State(reference); st.Color != fretboard.Green {
			t.Error("reference cell changed")
		}
	})

	t.Run("Stop clears the board", func(t *testing.T) {
		tr, m := newTrainer(t)
		tr.Start()
		tr.Submit(dNatural)
		tr.Stop()

		if len(m.VisibleStates()) != 0 {
			t.Errorf("visible after stop: %v", m.VisibleStates())
		}
		if tr.State() != Stopped || tr.Started() {
			t.Errorf("state = %v", tr.State())
		}
		if out := tr.Submit(cSharp); out.Result != Ignored {
			t.Error("click after Stop was graded")
		}
	})

	t.Run("Start resets stats", func(t *testing.T) {
		tr, _ := newTrainer(t)
		tr.Start()
		tr.Submit(dNatural)
		tr.Stop()
		tr.Start()
		if tr.Stats().Total() != 0 {
			t.Errorf("stats = %+v", tr.Stats())
		}
	})

	t.Run("reference on the first playable fret is drawn and clickable", func(t *testing.T) {
		m := fretboard.NewBuilder().
			StartFret(3).
			EndFret(7).
			VisualConfig(fretboard.DefaultVisualConfig().WithExtraFrets(0)).
			MustBuild()
		tr := New(m, tu.NewScriptedRandom(int(music.PerfectFifth), 5, 3))

		var got Outcome
		a := render.NewAdapter(m, render.WithClickHandler(func(c fretboard.FretCoord) { got = tr.Submit(c) }))
		defer a.Close()

		q := tr.Start()
		if q.Reference != (fretboard.FretCoord{String: 5, Fret: 3}) || q.Note != music.G {
			t.Fatalf("question = %+v", q)
		}
		notes, _ := a.Scene().Layer(render.NotesLayer)
		if len(notes.Shapes) != 2 {
			t.Fatalf("expected the reference circle and label, got %d shapes", len(notes.Shapes))
		}
		if c, ok := notes.Shapes[0].(render.Circle); !ok || c.Coord != q.Reference || c.Fill != fretboard.Green.Hex() {
			t.Errorf("reference shape = %+v", notes.Shapes[0])
		}

		// D on the A string, fret 5.
		if !a.Click(fretboard.FretCoord{String: 4, Fret: 5}) || got.Result != Right {
			t.Errorf("outcome = %+v", got)
		}
	})

	t.Run("seeded random stays in range", func(t *testing.T) {
		m := fretboard.NewBuilder().StartFret(3).EndFret(7).MustBuild()
		tr := New(m, fretboard.NewRandom(7))
		for range 50 {
			q := tr.Start()
			if !m.IsPlayable(q.Reference) {
				t.Fatalf("reference %v not playable", q.Reference)
			}
			if q.Interval == music.Unison || !q.Interval.Valid() {
				t.Fatalf("interval %v", q.Interval)
			}
		}
	})
}

func TestStats(t *testing.T) {
	tests := []struct {
		correct, incorrect int
		want               int
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 3, 0},
		{2, 1, 67},
		{1, 2, 33},
		{1, 7, 14},
	}
	for _, tt := range tests {
		s := Stats{Correct: tt.correct, Incorrect: tt.incorrect}
		if got := s.SuccessRate(); got != tt.want {
			t.Errorf("SuccessRate(%d, %d) = %d, want %d", tt.correct, tt.incorrect, got, tt.want)
		}
	}
}

func TestQuestionString(t *testing.T) {
	q := Question{Interval: music.PerfectFifth, Note: music.D}
	if got := q.String(); got != "Find the Perfect Fifth above D" {
		t.Errorf("String() = %q", got)
	}
}
