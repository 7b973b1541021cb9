package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/tasks"
)

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }

// MetronomeRun counts beats for --duration and records the session.
func (r *Runner) MetronomeRun(ctx context.Context, cmd *cli.Command) error {
	m, err := tasks.NewMetronome(cmd.Int("bpm"), cmd.Int("beats"))
	if err != nil {
		return err
	}

	var recorder tasks.SessionRecorder
	if !cmd.Bool("no-record") {
		if sessions, err := r.sessionStore(); err != nil {
			r.logger.Warn("session will not be recorded", "error", err)
		} else {
			recorder = sessions
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			switch u.Phase {
			case tasks.MetronomeTick:
				r.logger.Debug(u.Message)
			case tasks.PracticeBar, tasks.PracticeDone:
				r.writePlain("%s\n", u.Message)
			}
		}
	}()

	duration := cmd.Duration("duration")
	r.logger.Info("metronome started", "bpm", m.BPM(), "beats_per_bar", m.BeatsPerBar(), "duration", duration)

	session, err := tasks.RunPractice(ctx, m, tasks.PracticeOpts{
		ExerciseID: cmd.String("exercise"),
		Duration:   duration,
		Recorder:   recorder,
	}, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if session.ID != 0 {
		r.logger.Info("session recorded", "id", session.ID, "completed", session.Completed)
	}
	return nil
}

// MetronomeClick renders --bars of clicks to a WAV file.
func (r *Runner) MetronomeClick(ctx context.Context, cmd *cli.Command) error {
	m, err := tasks.NewMetronome(cmd.Int("bpm"), cmd.Int("beats"))
	if err != nil {
		return err
	}
	bars := cmd.Int("bars")
	path := cmd.String("output")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create click track: %w", err)
	}
	if err := tasks.RenderClickTrack(f, m, bars); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write click track: %w", err)
	}

	r.logger.Info("rendered click track", "path", path, "bpm", m.BPM(), "bars", bars)
	return r.writePlain("✓ Wrote %s (%d bars at %d BPM, %s)\n", path, bars, m.BPM(), time.Duration(bars)*m.BarDuration())
}

// MetronomeHistory prints recorded sessions and their total time.
func (r *Runner) MetronomeHistory(ctx context.Context, cmd *cli.Command) error {
	sessions, err := r.sessionStore()
	if err != nil {
		return err
	}

	exerciseID := cmd.String("exercise")
	list, err := sessions.List(exerciseID, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if list == nil {
		list = []*models.PracticeSession{}
	}
	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}

	total, err := sessions.TotalPractice(exerciseID)
	if err != nil {
		return fmt.Errorf("failed to total sessions: %w", err)
	}

	r.writePlainHeader(fmt.Sprintf("Practice history (%s total)", total.Round(time.Second)))
	if len(list) == 0 {
		return r.writePlain("No sessions recorded\n")
	}
	for _, s := range list {
		status := "stopped"
		if s.Completed {
			status = "complete"
		}
		exercise := s.ExerciseID
		if exercise == "" {
			exercise = "-"
		}
		r.writePlain("%s  %3d bpm %d/4  %-9s %-8s %s\n",
			s.StartedAt.Format("2006-01-02 15:04"), s.BPM, s.BeatsPerBar,
			s.Elapsed.Round(time.Second), status, exercise)
	}
	return nil
}
