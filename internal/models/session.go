package models

import (
	"fmt"
	"time"
)

var ErrInvalidSession = fmt.Errorf("invalid practice session")

// PracticeSession is one timed practice run, optionally tied to an exercise.
type PracticeSession struct {
	ID          int64         `json:"id"`
	ExerciseID  string        `json:"exercise_id,omitempty"`
	BPM         int           `json:"bpm"`
	BeatsPerBar int           `json:"beats_per_bar"`
	Planned     time.Duration `json:"planned"`
	Elapsed     time.Duration `json:"elapsed"`
	Completed   bool          `json:"completed"`
	StartedAt   time.Time     `json:"started_at"`
}

// Validate checks tempo, meter and durations.
func (s *PracticeSession) Validate() error {
	switch {
	case s.BPM <= 0:
		return fmt.Errorf("%w: bpm must be positive", ErrInvalidSession)
	case s.BeatsPerBar <= 0:
		return fmt.Errorf("%w: beats per bar must be positive", ErrInvalidSession)
	case s.Planned < 0 || s.Elapsed < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidSession)
	}
	return nil
}
