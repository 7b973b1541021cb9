package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/fretx/internal/models"
)

var _ list.Item = exerciseItem{}

// exerciseItem wraps [models.Exercise] to implement [list.Item].
type exerciseItem struct {
	exercise *models.Exercise
}

func (i exerciseItem) FilterValue() string { return i.exercise.Name }
func (i exerciseItem) Title() string       { return i.exercise.Name }
func (i exerciseItem) Description() string {
	desc := i.exercise.ExerciseType.String()
	if i.exercise.Description != nil && *i.exercise.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, *i.exercise.Description)
	}
	return desc
}

func exerciseItems(exercises []*models.Exercise) []list.Item {
	items := make([]list.Item, len(exercises))
	for i, e := range exercises {
		items[i] = exerciseItem{exercise: e}
	}
	return items
}
