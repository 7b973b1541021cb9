package tasks

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

const (
	AccentFrequency = 1500.0
	BeatFrequency   = 1000.0
	ClickLength     = 30 * time.Millisecond
	SampleRate      = beep.SampleRate(44100)
)

// ClickFormat is mono 16-bit PCM at [SampleRate].
var ClickFormat = beep.Format{SampleRate: SampleRate, NumChannels: 1, Precision: 2}

// ClickTrack returns a streamer of bars bars at the metronome's tempo: a short
// decaying sine per beat, higher on the accented first beat, then silence.
func ClickTrack(m *Metronome, bars int) beep.Streamer {
	beatLen := SampleRate.N(m.Interval())
	clickLen := min(SampleRate.N(ClickLength), beatLen)
	total := beatLen * m.beatsPerBar * bars
	pos := 0

	click := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			offset := pos % beatLen
			v := 0.0
			if offset < clickLen {
				freq := BeatFrequency
				if (pos/beatLen)%m.beatsPerBar == 0 {
					freq = AccentFrequency
				}
				t := float64(offset) / float64(SampleRate)
				decay := math.Exp(-5 * float64(offset) / float64(clickLen))
				v = 0.8 * decay * math.Sin(2*math.Pi*freq*t)
			}
			samples[i] = [2]float64{v, v}
			pos++
		}
		return len(samples), true
	})
	return beep.Take(total, click)
}

// ClickTrackSamples is the number of samples [ClickTrack] produces.
func ClickTrackSamples(m *Metronome, bars int) int {
	return SampleRate.N(m.Interval()) * m.beatsPerBar * bars
}

// RenderClickTrack encodes bars bars of clicks as WAV.
func RenderClickTrack(w io.WriteSeeker, m *Metronome, bars int) error {
	if bars < 1 {
		return fmt.Errorf("click track needs at least one bar, got %d", bars)
	}
	if err := wav.Encode(w, ClickTrack(m, bars), ClickFormat); err != nil {
		return fmt.Errorf("failed to encode click track: %w", err)
	}
	return nil
}
