package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/fretx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgExercisesLoaded MsgKind = iota
	MsgExerciseDeleted
)

type exercisesLoaded struct {
	exercises []*models.Exercise
	err       error
}

type exerciseDeleted struct {
	id  string
	err error
}

// exercisesLoadedMsg is the constructor for [MsgExercisesLoaded]
func exercisesLoadedMsg(exercises []*models.Exercise, err error) Msg {
	return Msg{kind: MsgExercisesLoaded, data: exercisesLoaded{exercises, err}}
}

// exerciseDeletedMsg is the constructor for [MsgExerciseDeleted]
func exerciseDeletedMsg(id string, err error) Msg {
	return Msg{kind: MsgExerciseDeleted, data: exerciseDeleted{id, err}}
}
