package fretboard

import "maps"

// Builder assembles a [Model]. Unset fields take the defaults: frets 0 to 12,
// [StandardTuning], [DefaultVisualConfig] and an all-Hidden grid.
type Builder struct {
	start  int
	end    int
	tuning Tuning
	config VisualConfig
	states map[FretCoord]FretState
}

// NewBuilder returns a builder holding the defaults.
func NewBuilder() *Builder {
	return &Builder{
		start:  0,
		end:    12,
		tuning: StandardTuning(),
		config: DefaultVisualConfig(),
	}
}

func (b *Builder) StartFret(f int) *Builder {
	b.start = f
	return b
}

func (b *Builder) EndFret(f int) *Builder {
	b.end = f
	return b
}

func (b *Builder) Tuning(t Tuning) *Builder {
	b.tuning = t.Clone()
	return b
}

func (b *Builder) VisualConfig(c VisualConfig) *Builder {
	b.config = c.Clone()
	return b
}

// FretStates seeds initial cell states. Entries outside the visible range are dropped.
func (b *Builder) FretStates(states map[FretCoord]FretState) *Builder {
	b.states = maps.Clone(states)
	return b
}

// Build validates every invariant in one place and allocates the model.
func (b *Builder) Build() (*Model, error) {
	if err := validateRange(b.start, b.end); err != nil {
		return nil, err
	}
	if err := b.tuning.Validate(); err != nil {
		return nil, err
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	m := newModel(b.start, b.end, b.tuning, b.config)
	for c, st := range b.states {
		m.SetState(c, st)
	}
	return m, nil
}

// MustBuild is [Builder.Build] for inputs known to be valid. It panics otherwise.
func (b *Builder) MustBuild() *Model {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
