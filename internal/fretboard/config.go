package fretboard

import (
	"fmt"
	"slices"
)

// VisualConfig holds the display parameters of a board.
type VisualConfig struct {
	AspectRatio          float64 `json:"svg_aspect_ratio" toml:"svg_aspect_ratio"`
	FretMarginPercentage float64 `json:"fret_margin_percentage" toml:"fret_margin_percentage"`
	NutWidth             float64 `json:"nut_width" toml:"nut_width"`
	ExtraFrets           int     `json:"extra_frets" toml:"extra_frets"`
	MarkerPositions      []int   `json:"marker_positions" toml:"marker_positions"`
}

// DefaultMarkers are the conventional inlay positions.
var DefaultMarkers = []int{3, 5, 7, 9, 12, 15, 17, 19, 21, 24}

// DefaultVisualConfig returns aspect 3.0, 5% margin, a 14 unit nut, one context fret and the default markers.
func DefaultVisualConfig() VisualConfig {
	return VisualConfig{
		AspectRatio:          3.0,
		FretMarginPercentage: 0.05,
		NutWidth:             14.0,
		ExtraFrets:           1,
		MarkerPositions:      slices.Clone(DefaultMarkers),
	}
}

// Validate reports the first invariant the config breaks.
func (c VisualConfig) Validate() error {
	if c.AspectRatio <= 0 {
		return fmt.Errorf("%w: aspect ratio must be positive, got %v", ErrInvalidConfiguration, c.AspectRatio)
	}
	if c.FretMarginPercentage < 0 || c.FretMarginPercentage >= 0.5 {
		return fmt.Errorf("%w: fret margin must be in [0, 0.5), got %v", ErrInvalidConfiguration, c.FretMarginPercentage)
	}
	if c.NutWidth <= 0 {
		return fmt.Errorf("%w: nut width must be positive, got %v", ErrInvalidConfiguration, c.NutWidth)
	}
	if c.ExtraFrets < 0 || c.ExtraFrets > MaxFret {
		return fmt.Errorf("%w: extra frets must be in [0, %d], got %d", ErrInvalidConfiguration, MaxFret, c.ExtraFrets)
	}
	for _, m := range c.MarkerPositions {
		if m < 1 || m > MaxFret {
			return fmt.Errorf("%w: marker position %d out of range", ErrInvalidConfiguration, m)
		}
	}
	return nil
}

// Clone deep-copies the marker list.
func (c VisualConfig) Clone() VisualConfig {
	c.MarkerPositions = slices.Clone(c.MarkerPositions)
	return c
}

// Equal compares every field, including markers.
func (c VisualConfig) Equal(o VisualConfig) bool {
	return c.AspectRatio == o.AspectRatio &&
		c.FretMarginPercentage == o.FretMarginPercentage &&
		c.NutWidth == o.NutWidth &&
		c.ExtraFrets == o.ExtraFrets &&
		slices.Equal(c.MarkerPositions, o.MarkerPositions)
}

func (c VisualConfig) WithAspectRatio(v float64) VisualConfig {
	c = c.Clone()
	c.AspectRatio = v
	return c
}

func (c VisualConfig) WithFretMargin(v float64) VisualConfig {
	c = c.Clone()
	c.FretMarginPercentage = v
	return c
}

func (c VisualConfig) WithNutWidth(v float64) VisualConfig {
	c = c.Clone()
	c.NutWidth = v
	return c
}

func (c VisualConfig) WithExtraFrets(n int) VisualConfig {
	c = c.Clone()
	c.ExtraFrets = n
	return c
}

func (c VisualConfig) WithMarkers(markers ...int) VisualConfig {
	c.MarkerPositions = slices.Clone(markers)
	return c
}

// HasMarker reports whether fret carries an inlay.
func (c VisualConfig) HasMarker(fret int) bool {
	return slices.Contains(c.MarkerPositions, fret)
}

// IsDoubleMarker reports whether fret carries the doubled inlay (12 and 24).
func (c VisualConfig) IsDoubleMarker(fret int) bool {
	return (fret == 12 || fret == 24) && c.HasMarker(fret)
}
