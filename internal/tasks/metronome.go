package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/fretx/internal/shared"
)

const (
	MinBPM         = 20
	MaxBPM         = 300
	MaxBeatsPerBar = 16
)

// Tick is one metronome beat. Beat and Bar count from 1.
type Tick struct {
	Count       int
	Beat        int
	Bar         int
	BeatsPerBar int
	Accent      bool
	At          time.Time
}

// tickerFunc starts a periodic clock and returns its channel and a stop function.
type tickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Metronome emits evenly spaced beats with an accent on the first beat of each bar.
type Metronome struct {
	bpm         int
	beatsPerBar int
	ticker      tickerFunc
}

// NewMetronome validates the tempo (20 to 300 BPM) and meter (1 to 16 beats).
func NewMetronome(bpm, beatsPerBar int) (*Metronome, error) {
	if bpm < MinBPM || bpm > MaxBPM {
		return nil, fmt.Errorf("%w: bpm %d must be between %d and %d", shared.ErrInvalidInput, bpm, MinBPM, MaxBPM)
	}
	if beatsPerBar < 1 || beatsPerBar > MaxBeatsPerBar {
		return nil, fmt.Errorf("%w: beats per bar %d must be between 1 and %d", shared.ErrInvalidInput, beatsPerBar, MaxBeatsPerBar)
	}
	return &Metronome{bpm: bpm, beatsPerBar: beatsPerBar, ticker: realTicker}, nil
}

func (m *Metronome) BPM() int         { return m.bpm }
func (m *Metronome) BeatsPerBar() int { return m.beatsPerBar }

// Interval is the time between beats.
func (m *Metronome) Interval() time.Duration {
	return time.Minute / time.Duration(m.bpm)
}

// BarDuration is the length of one bar.
func (m *Metronome) BarDuration() time.Duration {
	return m.Interval() * time.Duration(m.beatsPerBar)
}

func (m *Metronome) tick(count int, at time.Time) Tick {
	beat := count%m.beatsPerBar + 1
	return Tick{
		Count:       count + 1,
		Beat:        beat,
		Bar:         count/m.beatsPerBar + 1,
		BeatsPerBar: m.beatsPerBar,
		Accent:      beat == 1,
		At:          at,
	}
}

// Run sends the first beat immediately and one per interval after it, until ctx ends.
// It returns ctx.Err().
func (m *Metronome) Run(ctx context.Context, ticks chan<- Tick) error {
	clock, stop := m.ticker(m.Interval())
	defer stop()

	count := 0
	emit := func(at time.Time) error {
		t := m.tick(count, at)
		count++
		select {
		case ticks <- t:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := emit(time.Now()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case at := <-clock:
			if err := emit(at); err != nil {
				return err
			}
		}
	}
}
