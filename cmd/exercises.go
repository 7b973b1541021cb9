package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretx/internal/formatter"
	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/render"
	"github.com/desertthunder/fretx/internal/shared"
	"github.com/desertthunder/fretx/internal/tasks"
)

// ExercisesList prints every stored exercise.
func (r *Runner) ExercisesList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.exerciseStore()
	if err != nil {
		return err
	}

	exercises, err := store.FindAll()
	if err != nil {
		return fmt.Errorf("failed to list exercises: %w", err)
	}

	if cmd.Bool("json") {
		if exercises == nil {
			exercises = []*models.Exercise{}
		}
		return r.writeJSON(exercises, cmd.Bool("pretty"))
	}

	if len(exercises) == 0 {
		return r.writePlain("No exercises found\n")
	}

	r.writePlainHeader(fmt.Sprintf("Exercises (%d)", len(exercises)))
	for _, e := range exercises {
		r.writePlain("%-18s %-30s %s\n", e.ID, e.Name, e.ExerciseType)
	}
	return nil
}

// ExercisesShow prints one exercise with its scale notes.
func (r *Runner) ExercisesShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("%w: exercise id", shared.ErrMissingArgument)
	}

	store, err := r.exerciseStore()
	if err != nil {
		return err
	}
	e, err := store.FindByID(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(e, cmd.Bool("pretty"))
	}

	r.writePlainHeader(e.Name)
	r.writePlain("ID:          %s\n", e.ID)
	r.writePlain("Type:        %s\n", e.ExerciseType)
	r.writePlain("Description: %s\n", e.DescriptionOr("-"))
	if scale, err := e.ExerciseType.Scale(); err == nil {
		r.writePlain("Notes:       %s\n", formatter.ScaleNotes(scale))
	}
	return nil
}

// ExercisesAdd validates the flags into an exercise and saves it.
func (r *Runner) ExercisesAdd(ctx context.Context, cmd *cli.Command) error {
	kind, err := models.ParseKind(cmd.String("type"))
	if err != nil {
		return err
	}

	var t models.ExerciseType
	switch kind {
	case models.KindScale, models.KindTriad:
		root, err := music.ParseNote(cmd.String("root"))
		if err != nil {
			return err
		}
		st, err := music.ParseScaleType(cmd.String("scale"))
		if err != nil {
			return err
		}
		lo, hi := cmd.Int("min-fret"), cmd.Int("max-fret")
		if kind == models.KindScale {
			t = models.ScaleExercise(root, st, lo, hi)
		} else {
			t = models.TriadExercise(root, st, lo, hi)
		}
	case models.KindTechnique:
		t = models.Technique()
	case models.KindSong:
		t = models.Song()
	}

	store, err := r.exerciseStore()
	if err != nil {
		return err
	}

	e := models.NewExercise(cmd.String("name"), t).WithDescription(cmd.String("description"))
	if err := store.Save(e); err != nil {
		return fmt.Errorf("failed to save exercise: %w", err)
	}
	r.logger.Info("exercise saved", "id", e.ID, "name", e.Name)
	return r.writePlain("✓ Added %s (%s)\n", e.Name, e.ID)
}

// ExercisesDelete removes one exercise.
func (r *Runner) ExercisesDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("%w: exercise id", shared.ErrMissingArgument)
	}

	store, err := r.exerciseStore()
	if err != nil {
		return err
	}
	if err := store.Delete(id); err != nil {
		return err
	}
	r.logger.Info("exercise deleted", "id", id)
	return r.writePlain("✓ Deleted %s\n", id)
}

// ExercisesExport writes exercises to one file, or with --bulk one file per
// exercise plus a manifest.
func (r *Runner) ExercisesExport(ctx context.Context, cmd *cli.Command) error {
	store, err := r.exerciseStore()
	if err != nil {
		return err
	}
	ids := cmd.StringSlice("id")

	if cmd.Bool("bulk") {
		return r.bulkExport(ctx, store, ids, cmd)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	exercises, err := selectExercises(store, ids)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(exercises, format, cmd.String("output"))
	if err != nil {
		return err
	}
	r.logger.Info("exported exercises", "count", len(exercises), "format", format, "path", path)
	return r.writePlain("✓ Exported %d exercises to %s\n", len(exercises), path)
}

func selectExercises(store models.ExerciseStore, ids []string) ([]*models.Exercise, error) {
	if len(ids) == 0 {
		exercises, err := store.FindAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list exercises: %w", err)
		}
		return exercises, nil
	}

	exercises := make([]*models.Exercise, 0, len(ids))
	for _, id := range ids {
		e, err := store.FindByID(id)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, nil
}

func (r *Runner) bulkExport(ctx context.Context, store models.ExerciseStore, ids []string, cmd *cli.Command) error {
	board := render.DefaultBoardOptions()
	board.Preset = r.config.Fretboard.Preset

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		Board:      board,
		MIDI:       formatter.DefaultMIDIOptions(),
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Info(u.Message, "step", u.Step, "total", u.Total)
		}
	}()

	result, err := tasks.NewExporter(store).BulkExport(ctx, progress, ids, opts)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("bulk export failed: %w", err)
	}

	r.writePlainHeader("Bulk Export")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported:  %d/%d\n", result.SuccessfulExports, result.TotalExercises)
	r.writePlain("Manifest:  %s\n", result.ManifestPath)
	for _, res := range result.Results {
		if res.Error != nil {
			r.writePlain("  ✗ %s: %v\n", res.ExerciseName, res.Error)
		}
	}
	return nil
}
