package fretboard

import (
	"slices"
	"strings"

	"github.com/desertthunder/fretx/internal/music"
)

// Preset is a named instrument configuration.
type Preset struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Tuning      Tuning       `json:"tuning"`
	Config      VisualConfig `json:"visual_config"`
}

// Builder returns a builder seeded with the preset's tuning and config.
func (p Preset) Builder() *Builder {
	return NewBuilder().Tuning(p.Tuning).VisualConfig(p.Config)
}

// Presets lists the built-in configurations in display order.
func Presets() []Preset {
	return []Preset{
		{
			Name:        "standard",
			Description: "Six-string guitar in standard tuning",
			Tuning:      StandardTuning(),
			Config:      DefaultVisualConfig(),
		},
		{
			Name:        "seven-string",
			Description: "Seven-string guitar with a low B",
			Tuning:      append(StandardTuning(), music.B),
			Config:      DefaultVisualConfig(),
		},
		{
			Name:        "eight-string",
			Description: "Eight-string guitar with low B and F♯",
			Tuning:      append(StandardTuning(), music.B, music.FSharp),
			Config:      DefaultVisualConfig(),
		},
		{
			Name:        "bass",
			Description: "Four-string bass, E A D G",
			Tuning:      Tuning{music.G, music.D, music.A, music.E},
			Config:      DefaultVisualConfig(),
		},
		{
			Name:        "drop-d",
			Description: "Six-string guitar with the low string dropped to D",
			Tuning:      Tuning{music.E, music.B, music.G, music.D, music.A, music.D},
			Config:      DefaultVisualConfig(),
		},
		{
			Name:        "wide",
			Description: "Standard tuning on a wider 4:1 board",
			Tuning:      StandardTuning(),
			Config:      DefaultVisualConfig().WithAspectRatio(4.0),
		},
	}
}

// PresetNames lists the preset names in display order.
func PresetNames() []string {
	names := []string{}
	for _, p := range Presets() {
		names = append(names, p.Name)
	}
	return names
}

// LookupPreset finds a preset by name, ignoring case. "" resolves to "standard".
func LookupPreset(name string) (Preset, bool) {
	if name == "" {
		name = "standard"
	}
	i := slices.IndexFunc(Presets(), func(p Preset) bool { return strings.EqualFold(p.Name, name) })
	if i < 0 {
		return Preset{}, false
	}
	return Presets()[i], true
}

// Position is a named five-fret window of the neck.
type Position struct {
	Name  string `json:"name"`
	Start int    `json:"start_fret"`
	End   int    `json:"end_fret"`
}

// PositionPresets lists the open position and the first four box positions.
func PositionPresets() []Position {
	return []Position{
		{Name: "R", Start: 0, End: 4},
		{Name: "1", Start: 2, End: 6},
		{Name: "2", Start: 4, End: 8},
		{Name: "3", Start: 6, End: 10},
		{Name: "4", Start: 8, End: 12},
	}
}

// LookupPosition finds a position by name, ignoring case.
func LookupPosition(name string) (Position, bool) {
	for _, p := range PositionPresets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Position{}, false
}
