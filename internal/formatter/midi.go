package formatter

import (
	"fmt"
	"io"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/shared"
)

// MIDIOptions control scale and triad playback.
type MIDIOptions struct {
	BPM      float64
	Octave   int // octave of the tonic; 4 puts C on note 60
	Velocity uint8
	Channel  uint8
}

// DefaultMIDIOptions plays quarter notes at 80 BPM from octave 4.
func DefaultMIDIOptions() MIDIOptions {
	return MIDIOptions{BPM: 80, Octave: 4, Velocity: 96}
}

func (o MIDIOptions) validate() error {
	if o.BPM <= 0 {
		return fmt.Errorf("%w: bpm must be positive", shared.ErrInvalidInput)
	}
	if o.Octave < -1 || o.Octave > 8 {
		return fmt.Errorf("%w: octave %d out of range", shared.ErrInvalidInput, o.Octave)
	}
	if o.Velocity == 0 || o.Velocity > 127 || o.Channel > 15 {
		return fmt.Errorf("%w: velocity %d channel %d", shared.ErrInvalidInput, o.Velocity, o.Channel)
	}
	return nil
}

const ticksPerQuarter = 480

// ScaleKeys returns the MIDI keys of the scale ascending one octave from the tonic and back down.
func ScaleKeys(s music.Scale, octave int) []uint8 {
	base := 12*(octave+1) + int(s.Tonic())
	up := []int{}
	prev := base - 1
	for _, n := range s.Notes() {
		k := prev + 1
		for (k-int(n))%12 != 0 {
			k++
		}
		up = append(up, k)
		prev = k
	}
	up = append(up, base+12)

	keys := make([]uint8, 0, 2*len(up)-1)
	for _, k := range up {
		keys = append(keys, clampKey(k))
	}
	for i := len(up) - 2; i >= 0; i-- {
		keys = append(keys, clampKey(up[i]))
	}
	return keys
}

// Triads stacks every other scale note on each degree: 1-3-5, 2-4-6 and so on.
func Triads(s music.Scale, octave int) [][3]uint8 {
	asc := ScaleKeys(s, octave)[:s.Len()]
	n := len(asc)
	out := make([][3]uint8, 0, n)
	for i := range n {
		var chord [3]uint8
		for j, step := range []int{0, 2, 4} {
			idx := i + step
			k := int(asc[idx%n]) + 12*(idx/n)
			chord[j] = clampKey(k)
		}
		out = append(out, chord)
	}
	return out
}

func clampKey(k int) uint8 {
	return uint8(max(0, min(127, k)))
}

func newTrack(name string, opts MIDIOptions) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(opts.BPM))
	return tr
}

// ScaleMIDI builds a single-track file that plays the scale up and down in quarter notes.
func ScaleMIDI(s music.Scale, opts MIDIOptions) (*smf.SMF, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	clock := smf.MetricTicks(ticksPerQuarter)
	tr := newTrack(s.String(), opts)
	for _, k := range ScaleKeys(s, opts.Octave) {
		tr.Add(0, midi.NoteOn(opts.Channel, k, opts.Velocity))
		tr.Add(clock.Ticks4th(), midi.NoteOff(opts.Channel, k))
	}
	return finish(clock, tr)
}

// TriadMIDI builds a file that plays each diatonic triad as a half-note chord.
func TriadMIDI(s music.Scale, opts MIDIOptions) (*smf.SMF, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	clock := smf.MetricTicks(ticksPerQuarter)
	tr := newTrack(s.String()+" triads", opts)
	for _, chord := range Triads(s, opts.Octave) {
		for _, k := range chord {
			tr.Add(0, midi.NoteOn(opts.Channel, k, opts.Velocity))
		}
		for i, k := range chord {
			var delta uint32
			if i == 0 {
				delta = clock.Ticks4th() * 2
			}
			tr.Add(delta, midi.NoteOff(opts.Channel, k))
		}
	}
	return finish(clock, tr)
}

func finish(clock smf.MetricTicks, tr smf.Track) (*smf.SMF, error) {
	tr.Close(0)
	file := smf.New()
	file.TimeFormat = clock
	if err := file.Add(tr); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}
	return file, nil
}

// ExerciseMIDI picks scale or triad playback from the exercise type.
func ExerciseMIDI(e *models.Exercise, opts MIDIOptions) (*smf.SMF, error) {
	scale, err := e.ExerciseType.Scale()
	if err != nil {
		return nil, err
	}
	if e.ExerciseType.Kind == models.KindTriad {
		return TriadMIDI(scale, opts)
	}
	return ScaleMIDI(scale, opts)
}

// WriteMIDI encodes file to w.
func WriteMIDI(w io.Writer, file *smf.SMF) error {
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write MIDI: %w", err)
	}
	return nil
}

// WriteMIDIFile writes file to path, defaulting to scale.mid.
func WriteMIDIFile(file *smf.SMF, path string) (string, error) {
	if path == "" {
		path = "scale.mid"
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create MIDI file: %w", err)
	}
	if err := WriteMIDI(f, file); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
