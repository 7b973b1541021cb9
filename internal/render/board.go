package render

import (
	"fmt"
	"io"

	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/music"
)

// ErrUnknownPreset is returned by [BoardOptions.Build] for a preset name that does not resolve.
var ErrUnknownPreset = fmt.Errorf("unknown preset")

// BoardOptions describes a one-off board built from a preset.
//
// ExtraFrets below zero and AspectRatio of zero keep the preset's values.
// A nil Scale leaves every cell hidden.
type BoardOptions struct {
	Preset      string
	StartFret   int
	EndFret     int
	ExtraFrets  int
	AspectRatio float64
	Scale       *music.Scale
}

// DefaultBoardOptions shows frets 0 to 12 of the standard preset.
func DefaultBoardOptions() BoardOptions {
	return BoardOptions{Preset: "standard", StartFret: 0, EndFret: 12, ExtraFrets: -1}
}

// Build resolves the preset, applies the overrides and projects the scale.
func (o BoardOptions) Build() (*fretboard.Model, error) {
	preset, ok := fretboard.LookupPreset(o.Preset)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, o.Preset)
	}

	cfg := preset.Config
	if o.ExtraFrets >= 0 {
		cfg = cfg.WithExtraFrets(o.ExtraFrets)
	}
	if o.AspectRatio != 0 {
		cfg = cfg.WithAspectRatio(o.AspectRatio)
	}

	m, err := preset.Builder().
		StartFret(o.StartFret).
		EndFret(o.EndFret).
		VisualConfig(cfg).
		Build()
	if err != nil {
		return nil, err
	}
	if o.Scale != nil {
		m.ProjectScale(*o.Scale)
	}
	return m, nil
}

// WriteBoardSVG renders the current state of m.
func WriteBoardSVG(w io.Writer, m *fretboard.Model) error {
	a := NewAdapter(m)
	defer a.Close()
	return WriteSVG(w, a.Scene())
}
