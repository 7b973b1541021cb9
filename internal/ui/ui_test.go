package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/render"
	tu "github.com/desertthunder/fretx/internal/testing"
	"github.com/desertthunder/fretx/internal/trainer"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m *Model, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

// drain runs cmd and feeds its message back until the model settles.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for range 5 {
		if cmd == nil {
			return
		}
		msg := cmd()
		if _, ok := msg.(Msg); !ok {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func newTestModel(t *testing.T, rng fretboard.RandomSource, seed ...*models.Exercise) (*Model, *tu.MemoryStore) {
	t.Helper()
	store := tu.NewMemoryStore(seed...)
	m := NewModel(store, render.DefaultBoardOptions(), rng)
	press(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	drain(t, m, m.Init())
	return m, store
}

func cMajor() *models.Exercise {
	return models.NewExercise("C major box", models.ScaleExercise(music.C, music.HeptatonicScale(music.Major), 3, 7)).
		WithDescription("third position")
}

func TestExerciseList(t *testing.T) {
	t.Run("loads exercises on init", func(t *testing.T) {
		m, _ := newTestModel(t, fretboard.NewRandom(1), cMajor(), models.NewExercise("Alternate picking", models.Technique()))
		if len(m.exercises) != 2 || len(m.exerciseList.Items()) != 2 {
			t.Fatalf("loaded %d exercises, %d items", len(m.exercises), len(m.exerciseList.Items()))
		}
		if view := m.View(); !strings.Contains(view, "C major box") {
			t.Errorf("list view missing exercise name:\n%s", view)
		}
	})

	t.Run("load failure shows error", func(t *testing.T) {
		m := NewModel(tu.FailingStore{Err: errors.New("disk on fire")}, render.DefaultBoardOptions(), fretboard.NewRandom(1))
		drain(t, m, m.Init())
		if m.err == nil || !strings.Contains(m.View(), "disk on fire") {
			t.Errorf("View() = %q", m.View())
		}
	})

	t.Run("enter opens the board", func(t *testing.T) {
		m, _ := newTestModel(t, fretboard.NewRandom(1), cMajor())
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.ViewState() != BoardView {
			t.Fatalf("view = %v", m.ViewState())
		}
		if m.board.StartFret() != 3 || m.board.EndFret() != 7 {
			t.Errorf("range = %d-%d", m.board.StartFret(), m.board.EndFret())
		}
		if got := m.board.State(fretboard.FretCoord{String: 1, Fret: 1}); got.Visible {
			t.Errorf("cell outside the visible range shown: %v", got)
		}
		if len(m.board.VisibleStates()) == 0 {
			t.Error("no scale notes projected")
		}
		view := m.View()
		for _, want := range []string{"C major box", "third position", "C "} {
			if !strings.Contains(view, want) {
				t.Errorf("board view missing %q:\n%s", want, view)
			}
		}

		press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		if m.ViewState() != ExerciseListView || m.board != nil {
			t.Errorf("esc left view = %v", m.ViewState())
		}
	})

	t.Run("exercise without scale stays on list", func(t *testing.T) {
		m, _ := newTestModel(t, fretboard.NewRandom(1), models.NewExercise("Legato", models.Technique()))
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.ViewState() != ExerciseListView {
			t.Fatalf("view = %v", m.ViewState())
		}
		if !strings.Contains(m.View(), "no scale") {
			t.Errorf("missing status:\n%s", m.View())
		}
	})

	t.Run("delete removes and reloads", func(t *testing.T) {
		m, store := newTestModel(t, fretboard.NewRandom(1), cMajor())
		drain(t, m, press(t, m, runes("d")))

		all, _ := store.FindAll()
		if len(all) != 0 || len(m.exerciseList.Items()) != 0 {
			t.Errorf("store has %d, list has %d", len(all), len(m.exerciseList.Items()))
		}
		if !strings.Contains(m.status, "Deleted") {
			t.Errorf("status = %q", m.status)
		}
	})

	t.Run("quit", func(t *testing.T) {
		m, _ := newTestModel(t, fretboard.NewRandom(1))
		cmd := press(t, m, runes("q"))
		if cmd == nil {
			t.Fatal("expected a command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("q did not quit")
		}
	})
}

func TestTrainerView(t *testing.T) {
	// reference A on the high E string at fret 5, asking for a major third.
	newTrainerModel := func(t *testing.T) *Model {
		t.Helper()
		m, _ := newTestModel(t, tu.NewScriptedRandom(int(music.MajorThird), 0, 5))
		press(t, m, runes("t"))
		if m.ViewState() != TrainerView {
			t.Fatalf("view = %v", m.ViewState())
		}
		return m
	}

	t.Run("starts with a question", func(t *testing.T) {
		m := newTrainerModel(t)
		if q := m.trainer.Question(); q.Reference != (fretboard.FretCoord{String: 0, Fret: 5}) {
			t.Errorf("question = %+v", q)
		}
		if !strings.Contains(m.View(), "Major Third above A") {
			t.Errorf("view missing prompt:\n%s", m.View())
		}
	})

	t.Run("cursor stays in range", func(t *testing.T) {
		m := newTrainerModel(t)
		press(t, m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyUp})
		if m.cursor != (fretboard.FretCoord{String: 0, Fret: 0}) {
			t.Errorf("cursor = %v", m.cursor)
		}
		for range 20 {
			press(t, m, runes("l"), runes("j"))
		}
		if m.cursor != (fretboard.FretCoord{String: 5, Fret: 12}) {
			t.Errorf("cursor = %v", m.cursor)
		}
	})

	t.Run("answers go through the adapter", func(t *testing.T) {
		m := newTrainerModel(t)
		for range 10 {
			press(t, m, tea.KeyMsg{Type: tea.KeyRight})
		}
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.outcome.Result != trainer.Wrong || m.outcome.Clicked != music.D {
			t.Fatalf("outcome = %+v", m.outcome)
		}
		if !strings.Contains(m.View(), "Incorrect: 1") {
			t.Errorf("view missing score:\n%s", m.View())
		}

		press(t, m, runes("h"), tea.KeyMsg{Type: tea.KeyEnter})
		if m.outcome.Result != trainer.Right {
			t.Fatalf("outcome = %+v", m.outcome)
		}
		if s := m.trainer.Stats(); s.Correct != 1 || s.Incorrect != 1 {
			t.Errorf("stats = %+v", s)
		}
	})

	t.Run("stop and restart", func(t *testing.T) {
		m := newTrainerModel(t)
		press(t, m, runes("x"))
		if m.trainer.Started() || len(m.board.VisibleStates()) != 0 {
			t.Fatal("stop left the trainer running")
		}
		if !strings.Contains(m.View(), "Stopped") {
			t.Errorf("view:\n%s", m.View())
		}
		press(t, m, runes("s"))
		if !m.trainer.Started() {
			t.Error("s did not restart")
		}
	})

	t.Run("trainer from a board keeps its range", func(t *testing.T) {
		m, _ := newTestModel(t, fretboard.NewRandom(3), cMajor())
		press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("t"))
		if m.ViewState() != TrainerView {
			t.Fatalf("view = %v", m.ViewState())
		}
		if m.board.StartFret() != 3 || m.board.EndFret() != 7 || m.cursor.Fret != 3 {
			t.Errorf("range = %d-%d cursor %v", m.board.StartFret(), m.board.EndFret(), m.cursor)
		}
		press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		if m.ViewState() != ExerciseListView {
			t.Errorf("view = %v", m.ViewState())
		}
	})
}

func TestDrawBoard(t *testing.T) {
	b := fretboard.NewBuilder().StartFret(0).EndFret(3).MustBuild()
	b.ProjectScale(music.MustScale(music.C, music.HeptatonicScale(music.Major)))

	out := drawBoard(b, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected header and 6 strings, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "E ") || !strings.HasPrefix(lines[6], "E ") {
		t.Errorf("string labels:\n%s", out)
	}
	// B string, fret 1 is C.
	if !strings.Contains(lines[2], " C ") {
		t.Errorf("B string missing C:\n%s", lines[2])
	}
}
