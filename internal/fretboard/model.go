// package fretboard owns the observable state of one fretboard: playable range,
// tuning, visual configuration and a dense grid of per-cell render states.
package fretboard

import (
	"fmt"
	"math/rand/v2"

	"github.com/desertthunder/fretx/internal/music"
)

const (
	MaxStrings = 8  // strings in the preallocated grid
	MaxFrets   = 25 // fret columns 0..24 in the preallocated grid
	MaxFret    = MaxFrets - 1
)

var ErrInvalidConfiguration = fmt.Errorf("invalid fretboard configuration")

// ChangeKind flags what a [Change] touched.
type ChangeKind uint8

const (
	CellsChanged ChangeKind = 1 << iota
	RangeChanged
	TuningChanged
	ConfigChanged
)

// Change is delivered to [Model.OnChange] subscribers once per write, or once per outermost [Model.Batch].
type Change struct {
	Kind  ChangeKind
	Cells []FretCoord // coordinates whose state changed, in write order
}

// Has reports whether k is set.
func (c Change) Has(k ChangeKind) bool { return c.Kind&k != 0 }

func (c Change) empty() bool { return c.Kind == 0 }

// RandomSource yields a uniform integer in [lo, hi).
type RandomSource interface {
	Range(lo, hi int) int
}

// Random is a seeded [RandomSource].
type Random struct {
	r *rand.Rand
}

// NewRandom seeds a PCG generator.
func NewRandom(seed uint64) *Random {
	return &Random{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Range returns lo when the interval is empty.
func (r *Random) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.r.IntN(hi-lo)
}

type observer struct {
	id int
	fn func(Change)
}

// Model is the aggregate root of a fretboard.
//
// Every coordinate in [0, MaxStrings) × [0, MaxFrets) has exactly one [Cell],
// allocated with the model and mutated in place. A Model is not safe for concurrent use.
type Model struct {
	start  int
	end    int
	tuning Tuning
	config VisualConfig
	cells  [MaxStrings][MaxFrets]Cell

	observers  []observer
	nextID     int
	batchDepth int
	pending    Change
}

func newModel(start, end int, tuning Tuning, config VisualConfig) *Model {
	m := &Model{start: start, end: end, tuning: tuning.Clone(), config: config.Clone()}
	for s := range MaxStrings {
		for f := range MaxFrets {
			m.cells[s][f] = Cell{coord: FretCoord{String: s, Fret: f}}
		}
	}
	return m
}

func (m *Model) StartFret() int { return m.start }
func (m *Model) EndFret() int   { return m.end }

// NumStrings is the string count of the current tuning.
func (m *Model) NumStrings() int { return len(m.tuning) }

// Tuning returns a copy of the current tuning.
func (m *Model) Tuning() Tuning { return m.tuning.Clone() }

// VisualConfig returns a copy of the current config.
func (m *Model) VisualConfig() VisualConfig { return m.config.Clone() }

// MinFret is the first visible fret, start minus the context frets, clamped at 0.
func (m *Model) MinFret() int { return max(0, m.start-m.config.ExtraFrets) }

// MaxFret is the last visible fret, end plus the context frets, clamped at [MaxFret].
func (m *Model) MaxFret() int { return min(MaxFret, m.end+m.config.ExtraFrets) }

// IsPlayable reports whether c lies in [0, NumStrings) × [StartFret, EndFret].
func (m *Model) IsPlayable(c FretCoord) bool {
	return c.String >= 0 && c.String < len(m.tuning) && c.Fret >= m.start && c.Fret <= m.end
}

// IsVisible reports whether c lies in [0, NumStrings) × [MinFret, MaxFret].
func (m *Model) IsVisible(c FretCoord) bool {
	return c.String >= 0 && c.String < len(m.tuning) && c.Fret >= m.MinFret() && c.Fret <= m.MaxFret()
}

// NoteAt projects c through the tuning. Strings beyond the tuning read as C.
func (m *Model) NoteAt(c FretCoord) music.Note {
	if c.String < 0 || c.String >= len(m.tuning) {
		return music.C
	}
	return m.tuning[c.String].Shift(c.Fret)
}

// RandomPlayableCoord draws uniformly from the playable cells.
func (m *Model) RandomPlayableCoord(rng RandomSource) FretCoord {
	return FretCoord{
		String: rng.Range(0, len(m.tuning)),
		Fret:   rng.Range(m.start, m.end+1),
	}
}

// Cell returns the stable cell for c, or nil outside the grid.
func (m *Model) Cell(c FretCoord) *Cell {
	if !c.inGrid() {
		return nil
	}
	return &m.cells[c.String][c.Fret]
}

// State reads one cell. Coordinates outside the grid read as Hidden.
func (m *Model) State(c FretCoord) FretState {
	if !c.inGrid() {
		return Hidden()
	}
	return m.cells[c.String][c.Fret].state
}

// States snapshots the full grid. The key set is always [MaxStrings] × [MaxFrets].
func (m *Model) States() map[FretCoord]FretState {
	out := make(map[FretCoord]FretState, MaxStrings*MaxFrets)
	for s := range MaxStrings {
		for f := range MaxFrets {
			cell := &m.cells[s][f]
			out[cell.coord] = cell.state
		}
	}
	return out
}

// VisibleStates returns the visible cells whose state is Visible, keyed by coordinate.
func (m *Model) VisibleStates() map[FretCoord]FretState {
	out := map[FretCoord]FretState{}
	for s := range len(m.tuning) {
		for f := m.MinFret(); f <= m.MaxFret(); f++ {
			if st := m.cells[s][f].state; st.Visible {
				out[FretCoord{String: s, Fret: f}] = st
			}
		}
	}
	return out
}

// SetState writes one cell and reports whether it changed.
//
// Writes equal to the current value and writes outside the visible range are ignored.
func (m *Model) SetState(c FretCoord, st FretState) bool {
	if !c.inGrid() || !m.IsVisible(c) {
		return false
	}
	return m.write(c, st)
}

func (m *Model) write(c FretCoord, st FretState) bool {
	st = st.normalize()
	cell := &m.cells[c.String][c.Fret]
	if cell.state == st {
		return false
	}
	cell.state = st
	cell.version++
	m.notify(Change{Kind: CellsChanged, Cells: []FretCoord{c}})
	return true
}

// HideAll hides every cell in the grid as one batch.
func (m *Model) HideAll() {
	m.Batch(func() {
		for s := range MaxStrings {
			for f := range MaxFrets {
				m.write(FretCoord{String: s, Fret: f}, Hidden())
			}
		}
	})
}

// SetRange moves the playable range. Cells that leave the visible range are hidden.
func (m *Model) SetRange(start, end int) error {
	if err := validateRange(start, end); err != nil {
		return err
	}
	if start == m.start && end == m.end {
		return nil
	}
	m.Batch(func() {
		m.start, m.end = start, end
		m.notify(Change{Kind: RangeChanged})
		m.hideOutsideVisible()
	})
	return nil
}

// SetTuning replaces the tuning. Cells on strings that no longer exist are hidden.
func (m *Model) SetTuning(t Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.Batch(func() {
		m.tuning = t.Clone()
		m.notify(Change{Kind: TuningChanged})
		m.hideOutsideVisible()
	})
	return nil
}

// SetVisualConfig replaces the display parameters. The playable set is unaffected.
func (m *Model) SetVisualConfig(c VisualConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Equal(m.config) {
		return nil
	}
	m.Batch(func() {
		m.config = c.Clone()
		m.notify(Change{Kind: ConfigChanged})
		m.hideOutsideVisible()
	})
	return nil
}

func (m *Model) hideOutsideVisible() {
	for s := range MaxStrings {
		for f := range MaxFrets {
			c := FretCoord{String: s, Fret: f}
			if !m.IsVisible(c) {
				m.write(c, Hidden())
			}
		}
	}
}

// OnChange subscribes fn to change notifications and returns its unsubscribe func.
func (m *Model) OnChange(fn func(Change)) (unsubscribe func()) {
	id := m.nextID
	m.nextID++
	m.observers = append(m.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// Batch runs fn and delivers a single merged [Change] when the outermost batch returns.
// Subscribers never observe a partially applied batch.
func (m *Model) Batch(fn func()) {
	m.batchDepth++
	defer func() {
		m.batchDepth--
		if m.batchDepth == 0 && !m.pending.empty() {
			ch := m.pending
			m.pending = Change{}
			m.emit(ch)
		}
	}()
	fn()
}

func (m *Model) notify(ch Change) {
	if m.batchDepth > 0 {
		m.pending.Kind |= ch.Kind
		m.pending.Cells = append(m.pending.Cells, ch.Cells...)
		return
	}
	m.emit(ch)
}

func (m *Model) emit(ch Change) {
	for _, o := range append([]observer(nil), m.observers...) {
		o.fn(ch)
	}
}

func validateRange(start, end int) error {
	if start < 0 {
		return fmt.Errorf("%w: start fret %d is negative", ErrInvalidConfiguration, start)
	}
	if start > end {
		return fmt.Errorf("%w: start fret %d is after end fret %d", ErrInvalidConfiguration, start, end)
	}
	if end > MaxFret {
		return fmt.Errorf("%w: end fret %d exceeds %d", ErrInvalidConfiguration, end, MaxFret)
	}
	return nil
}
