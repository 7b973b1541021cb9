// package trainer drives an interval-recognition game on a fretboard model.
//
// A question shows a reference note in green and asks for the note an interval
// above it. Clicks are graded against the pitch class, so any string and
// octave that sounds the target note counts.
package trainer

import (
	"fmt"
	"math"

	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/music"
)

// State is the trainer's position in the question cycle.
type State int

const (
	Prompting State = iota
	AwaitingAnswer
	Correct
	Incorrect
	Stopped
)

func (s State) String() string {
	switch s {
	case Prompting:
		return "prompting"
	case AwaitingAnswer:
		return "awaiting answer"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result grades one click.
type Result int

const (
	Ignored Result = iota
	Right
	Wrong
)

func (r Result) String() string {
	switch r {
	case Right:
		return "right"
	case Wrong:
		return "wrong"
	default:
		return "ignored"
	}
}

// Question is the current prompt.
type Question struct {
	Interval  music.Interval      `json:"interval"`
	Reference fretboard.FretCoord `json:"reference"`
	Note      music.Note          `json:"note"`
}

// Target is the pitch class that answers the question.
func (q Question) Target() music.Note { return q.Interval.Of(q.Note) }

func (q Question) String() string {
	return fmt.Sprintf("Find the %s above %s", q.Interval, q.Note)
}

// Outcome reports how a click was graded.
type Outcome struct {
	Result  Result
	Coord   fretboard.FretCoord
	Clicked music.Note
	Target  music.Note
}

// Stats counts graded answers.
type Stats struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

func (s Stats) Total() int { return s.Correct + s.Incorrect }

// SuccessRate is the rounded percentage of correct answers, 0 before any answer.
func (s Stats) SuccessRate() int {
	if s.Total() == 0 {
		return 0
	}
	return int(math.Round(100 * float64(s.Correct) / float64(s.Total())))
}

// Trainer mutates the per-cell state of the model it is given. Like the model it
// is not safe for concurrent use.
type Trainer struct {
	model    *fretboard.Model
	rng      fretboard.RandomSource
	state    State
	question Question
	stats    Stats
	started  bool
}

// New returns a trainer in the Prompting state. Nothing is drawn until [Trainer.Start].
func New(model *fretboard.Model, rng fretboard.RandomSource) *Trainer {
	return &Trainer{model: model, rng: rng, state: Prompting}
}

func (t *Trainer) State() State { return t.state }
func (t *Trainer) Stats() Stats { return t.stats }
func (t *Trainer) Question() Question { return t.question }
func (t *Trainer) Started() bool { return t.started && t.state != Stopped }
func (t *Trainer) Model() *fretboard.Model { return t.model }

// Start clears the board and poses the first question.
func (t *Trainer) Start() Question {
	t.started = true
	t.stats = Stats{}
	t.model.Batch(func() {
		t.model.HideAll()
		t.prompt()
	})
	return t.question
}

// Submit grades a click at c.
//
// Clicks before Start, after Stop, outside the playable range or on the
// reference cell itself are ignored. A right answer clears the board and poses
// a new question in one batch; a wrong one marks the clicked cell red.
func (t *Trainer) Submit(c fretboard.FretCoord) Outcome {
	out := Outcome{Coord: c}
	if !t.Started() || !t.model.IsPlayable(c) || c == t.question.Reference {
		return out
	}
	if t.state != AwaitingAnswer && t.state != Incorrect {
		return out
	}

	out.Clicked = t.model.NoteAt(c)
	out.Target = t.question.Target()

	if out.Clicked == out.Target {
		out.Result = Right
		t.stats.Correct++
		t.state = Correct
		t.model.Batch(func() {
			t.model.HideAll()
			t.prompt()
		})
		return out
	}

	out.Result = Wrong
	t.stats.Incorrect++
	t.state = Incorrect
	t.model.SetState(c, fretboard.Show(fretboard.Red, out.Clicked.Name(music.Both)))
	return out
}

// Stop ends the session and clears every highlight.
func (t *Trainer) Stop() {
	t.state = Stopped
	t.model.HideAll()
}

// prompt draws an interval in [MinorSecond, Octave] and a playable reference cell.
func (t *Trainer) prompt() {
	t.state = Prompting
	interval := music.Interval(t.rng.Range(int(music.MinorSecond), int(music.Octave)+1))
	coord := t.model.RandomPlayableCoord(t.rng)
	note := t.model.NoteAt(coord)

	t.question = Question{Interval: interval, Reference: coord, Note: note}
	t.model.SetState(coord, fretboard.Show(fretboard.Green, note.Name(music.Both)))
	t.state = AwaitingAnswer
}
