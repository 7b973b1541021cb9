package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/server"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	store, err := r.exerciseStore()
	if err != nil {
		return err
	}

	if cmd.Bool("seed") {
		if err := r.seed(store); err != nil {
			return err
		}
	}

	cfg := r.config.Server
	cfg.Host = cmd.String("host")
	cfg.Port = cmd.Int("port")

	srv := server.New(cfg, r.config.Fretboard, store, r.logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting server", "addr", srv.Addr(), "storage", r.config.Storage.Driver)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	r.logger.Info("server stopped")
	return nil
}

func sampleExercise() *models.Exercise {
	return models.NewExercise(
		"Sample Scale Exercise",
		models.ScaleExercise(music.C, music.HeptatonicScale(music.Major), 3, 7),
	).WithDescription("C major across frets 3 to 7")
}

// seed saves the sample exercise into an empty store.
func (r *Runner) seed(store models.ExerciseStore) error {
	existing, err := store.FindAll()
	if err != nil {
		return fmt.Errorf("failed to list exercises: %w", err)
	}
	if len(existing) > 0 {
		r.logger.Debug("store already has exercises, skipping seed", "count", len(existing))
		return nil
	}

	e := sampleExercise()
	if err := store.Save(e); err != nil {
		return fmt.Errorf("failed to seed sample exercise: %w", err)
	}
	r.logger.Info("seeded sample exercise", "id", e.ID, "name", e.Name)
	return nil
}
