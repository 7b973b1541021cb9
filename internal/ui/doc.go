// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [ExerciseListView] : Browse stored exercises, delete them, open one on the board
//  2. [BoardView] : Show the exercise's scale projected over its fret range
//  3. [TrainerView] : Play the interval trainer by moving a cursor over the board
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving store results via the Msg union type.
// The board is drawn with lipgloss from the same fretboard model the SVG renderer reads, and trainer answers
// go through [render.Adapter.Click] so the TUI is one more click source.
//
// Keyboard navigation uses vim-style bindings (h/j/k/l, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
