package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/shared"
)

// SessionRecorder persists finished practice runs.
type SessionRecorder interface {
	Create(s *models.PracticeSession) error
}

// PracticeOpts configures [RunPractice]. A zero Duration runs until ctx is cancelled.
type PracticeOpts struct {
	ExerciseID string
	Duration   time.Duration
	Recorder   SessionRecorder
}

// RunPractice drives m for opts.Duration, reporting every tick and bar on progress.
//
// The run is Completed when the planned duration elapses; cancelling ctx first
// ends it early without error. The session is recorded either way.
func RunPractice(ctx context.Context, m *Metronome, opts PracticeOpts, progress chan<- ProgressUpdate) (*models.PracticeSession, error) {
	if opts.Duration < 0 {
		return nil, fmt.Errorf("%w: practice duration must not be negative", shared.ErrInvalidInput)
	}

	session := &models.PracticeSession{
		ExerciseID:  opts.ExerciseID,
		BPM:         m.BPM(),
		BeatsPerBar: m.BeatsPerBar(),
		Planned:     opts.Duration,
		StartedAt:   time.Now(),
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if opts.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Duration)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	ticks := make(chan Tick)
	done := make(chan error, 1)
	go func() {
		done <- m.Run(runCtx, ticks)
	}()

	var err error
loop:
	for {
		select {
		case t := <-ticks:
			sendProgress(progress, tickUpdate(t))
			if t.Accent {
				sendProgress(progress, barUpdate(t.Bar, time.Since(session.StartedAt), opts.Duration))
			}
		case err = <-done:
			break loop
		}
	}

	session.Elapsed = time.Since(session.StartedAt)
	session.Completed = opts.Duration > 0 && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded)
	if session.Completed {
		session.Elapsed = opts.Duration
	}
	sendProgress(progress, practiceDoneUpdate(session.Elapsed, session.Completed))

	if opts.Recorder != nil {
		if err := opts.Recorder.Create(session); err != nil {
			return session, fmt.Errorf("failed to record practice session: %w", err)
		}
	}
	return session, nil
}
