package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/render"
	"github.com/desertthunder/fretx/internal/shared"
	"github.com/desertthunder/fretx/internal/ui"
)

// TUI launches the interactive exercise browser and interval trainer.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("%w: the TUI needs an interactive terminal", shared.ErrInvalidArgument)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(cmd.String("log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	r.SetLogger(fileLogger)

	store, err := r.exerciseStore()
	if err != nil {
		return err
	}

	seed := uint64(cmd.Int("seed"))
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	board := render.DefaultBoardOptions()
	board.Preset = r.config.Fretboard.Preset
	board.StartFret = r.config.Fretboard.StartFret
	board.EndFret = r.config.Fretboard.EndFret
	board.ExtraFrets = r.config.Fretboard.ExtraFrets

	model := ui.NewModel(store, board, fretboard.NewRandom(seed))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	r.logger.Info("starting TUI", "storage", r.config.Storage.Driver, "seed", seed)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
