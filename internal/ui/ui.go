package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/fretx/internal/formatter"
	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/render"
	"github.com/desertthunder/fretx/internal/trainer"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ExerciseListView ViewState = iota
	BoardView
	TrainerView
)

// Model represents the TUI application state.
type Model struct {
	view     ViewState
	store    models.ExerciseStore
	defaults render.BoardOptions
	rng      fretboard.RandomSource
	width    int
	height   int

	exerciseList list.Model
	exercises    []*models.Exercise
	selected     *models.Exercise

	board   *fretboard.Model
	adapter *render.Adapter
	trainer *trainer.Trainer
	cursor  fretboard.FretCoord
	outcome trainer.Outcome

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model. Boards are built from defaults; rng drives the trainer.
func NewModel(store models.ExerciseStore, defaults render.BoardOptions, rng fretboard.RandomSource) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Exercises"
	return &Model{
		view:         ExerciseListView,
		store:        store,
		defaults:     defaults,
		rng:          rng,
		exerciseList: l,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// ViewState returns the active view.
func (m *Model) ViewState() ViewState { return m.view }

// Init initializes the TUI by loading exercises from the store.
func (m *Model) Init() tea.Cmd {
	return m.fetchExercises()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.exerciseList.SetSize(max(0, msg.Width-4), max(0, msg.Height-8))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ExerciseListView:
			return m.handleListKeys(msg)
		case BoardView:
			return m.handleBoardKeys(msg)
		case TrainerView:
			return m.handleTrainerKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == ExerciseListView {
		var cmd tea.Cmd
		m.exerciseList, cmd = m.exerciseList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgExercisesLoaded:
		data := msg.data.(exercisesLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.exercises = data.exercises
		return m, m.exerciseList.SetItems(exerciseItems(data.exercises))

	case MsgExerciseDeleted:
		data := msg.data.(exerciseDeleted)
		if data.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Delete failed: %v", data.err))
			return m, nil
		}
		m.status = styles.ok.Render(fmt.Sprintf("Deleted %s", data.id))
		return m, m.fetchExercises()
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.exerciseList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.exerciseList, cmd = m.exerciseList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if e := m.selectedExercise(); e != nil {
			m.openBoard(e)
		}
		return m, nil
	case key.Matches(msg, m.keys.trainer):
		m.openTrainer(m.defaults)
		return m, nil
	case key.Matches(msg, m.keys.del):
		if e := m.selectedExercise(); e != nil {
			return m, m.deleteExercise(e.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = ""
		return m, m.fetchExercises()
	}

	var cmd tea.Cmd
	m.exerciseList, cmd = m.exerciseList.Update(msg)
	return m, cmd
}

func (m *Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.closeBoard()
		m.view = ExerciseListView
	case key.Matches(msg, m.keys.trainer):
		opts := m.defaults
		opts.StartFret, opts.EndFret = m.board.StartFret(), m.board.EndFret()
		m.openTrainer(opts)
	}
	return m, nil
}

func (m *Model) handleTrainerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.trainer.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.trainer.Stop()
		m.closeBoard()
		m.view = ExerciseListView
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1, 0)
	case key.Matches(msg, m.keys.left):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.right):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.enter):
		m.adapter.Click(m.cursor)
	case key.Matches(msg, m.keys.start):
		m.outcome = trainer.Outcome{}
		m.trainer.Start()
	case key.Matches(msg, m.keys.stop):
		m.trainer.Stop()
	}
	return m, nil
}

func (m *Model) selectedExercise() *models.Exercise {
	item, ok := m.exerciseList.SelectedItem().(exerciseItem)
	if !ok {
		return nil
	}
	return item.exercise
}

func (m *Model) openBoard(e *models.Exercise) {
	b, err := formatter.ExerciseBoard(e, m.defaults)
	if err != nil {
		m.status = styles.warn.Render(fmt.Sprintf("%s has no scale to show (%v)", e.Name, err))
		return
	}
	m.setBoard(b)
	m.selected = e
	m.status = ""
	m.view = BoardView
}

func (m *Model) openTrainer(opts render.BoardOptions) {
	opts.Scale = nil
	b, err := opts.Build()
	if err != nil {
		m.status = styles.err.Render(fmt.Sprintf("Cannot build board: %v", err))
		return
	}
	m.setBoard(b)
	m.trainer = trainer.New(b, m.rng)
	m.outcome = trainer.Outcome{}
	m.trainer.Start()
	m.status = ""
	m.view = TrainerView
}

// setBoard swaps in b with a fresh adapter whose clicks feed the trainer.
func (m *Model) setBoard(b *fretboard.Model) {
	m.closeBoard()
	m.board = b
	m.adapter = render.NewAdapter(b, render.WithClickHandler(m.handleClick))
	m.cursor = fretboard.FretCoord{String: 0, Fret: b.StartFret()}
}

func (m *Model) closeBoard() {
	if m.adapter != nil {
		m.adapter.Close()
	}
	m.adapter = nil
	m.board = nil
	m.trainer = nil
	m.selected = nil
}

func (m *Model) handleClick(c fretboard.FretCoord) {
	if m.trainer == nil {
		return
	}
	m.outcome = m.trainer.Submit(c)
}

// moveCursor keeps the cursor inside the playable range.
func (m *Model) moveCursor(ds, df int) {
	m.cursor.String = min(max(m.cursor.String+ds, 0), m.board.NumStrings()-1)
	m.cursor.Fret = min(max(m.cursor.Fret+df, m.board.StartFret()), m.board.EndFret())
}

func (m *Model) fetchExercises() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		exercises, err := store.FindAll()
		return exercisesLoadedMsg(exercises, err)
	}
}

func (m *Model) deleteExercise(id string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return exerciseDeletedMsg(id, store.Delete(id))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ExerciseListView:
		return m.renderList()
	case BoardView:
		return m.renderBoardView()
	case TrainerView:
		return m.renderTrainer()
	default:
		return ""
	}
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.trainer, m.keys.del, m.keys.reload, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	if m.status != "" {
		return fmt.Sprintf("%s\n%s\n\n%s", m.exerciseList.View(), m.status, helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.exerciseList.View(), helpView)
}

func (m *Model) renderBoardView() string {
	title := styles.title.Render(m.selected.Name)
	info := m.selected.ExerciseType.String()
	if m.selected.Description != nil {
		info = fmt.Sprintf("%s\n%s", info, *m.selected.Description)
	}
	legend := fmt.Sprintf("%s root  %s scale note",
		styles.Note("  ", fretboard.Green), styles.Note("  ", fretboard.Blue))

	helpKeys := []key.Binding{m.keys.trainer, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s", title, info, drawBoard(m.board, nil), legend, helpView)
}

func (m *Model) renderTrainer() string {
	title := styles.title.Render("Interval Trainer")

	var prompt string
	if m.trainer.Started() {
		prompt = m.trainer.Question().String()
	} else {
		prompt = styles.help.Render("Stopped. Press s to start.")
	}

	var result string
	switch m.outcome.Result {
	case trainer.Right:
		result = styles.ok.Render(fmt.Sprintf("✓ %s is right", m.outcome.Clicked.Name(music.Both)))
	case trainer.Wrong:
		result = styles.err.Render(fmt.Sprintf("✗ %s, not %s", m.outcome.Clicked.Name(music.Both), m.outcome.Target.Name(music.Both)))
	}

	stats := m.trainer.Stats()
	score := fmt.Sprintf("Correct: %d  Incorrect: %d  Success: %d%%", stats.Correct, stats.Incorrect, stats.SuccessRate())

	cursor := m.cursor
	helpKeys := []key.Binding{m.keys.left, m.keys.right, m.keys.up, m.keys.down, m.keys.enter, m.keys.start, m.keys.stop, m.keys.back}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s\n\n%s", title, prompt, drawBoard(m.board, &cursor), result, score, helpView)
}

// drawBoard draws one row per string, highest first, over the visible fret range.
// Frets outside the playable range are dimmed.
func drawBoard(b *fretboard.Model, cursor *fretboard.FretCoord) string {
	var sb strings.Builder
	tuning := b.Tuning()

	sb.WriteString("   ")
	for f := b.MinFret(); f <= b.MaxFret(); f++ {
		sb.WriteString(styles.fret.Render(fmt.Sprintf(" %-3d", f)))
	}
	sb.WriteString("\n")

	for s := range b.NumStrings() {
		sb.WriteString(fmt.Sprintf("%-2s ", tuning[s].Name(music.Sharp)))
		for f := b.MinFret(); f <= b.MaxFret(); f++ {
			c := fretboard.FretCoord{String: s, Fret: f}
			sb.WriteString(drawCell(b, c, cursor != nil && *cursor == c))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func drawCell(b *fretboard.Model, c fretboard.FretCoord, selected bool) string {
	sep := "|"
	if c.Fret == 0 {
		sep = "‖"
	}

	st := b.State(c)
	body := "---"
	if st.Visible {
		body = fmt.Sprintf(" %-2s", b.NoteAt(c).Name(music.Sharp))
	}

	switch {
	case selected:
		body = styles.cursor.Render(body)
	case st.Visible:
		body = styles.Note(body, st.Color)
	case !b.IsPlayable(c):
		body = styles.fret.Render(body)
	}
	return body + sep
}
