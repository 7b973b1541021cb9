package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	left    key.Binding
	right   key.Binding
	enter   key.Binding
	back    key.Binding
	trainer key.Binding
	start   key.Binding
	stop    key.Binding
	del     key.Binding
	reload  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "fret down")),
		right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "fret up")),
		enter:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		trainer: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trainer")),
		start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		del:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right},
		{k.enter, k.back, k.trainer},
		{k.start, k.stop, k.del, k.reload, k.quit},
	}
}
