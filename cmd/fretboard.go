package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/desertthunder/fretx/internal/formatter"
	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/layout"
	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/render"
	"github.com/desertthunder/fretx/internal/shared"
)

// boardOptions reads the flags declared by [boardFlags].
//
// A scale is projected when --root or --scale is given; the missing half
// defaults to C or major.
func boardOptions(cmd *cli.Command) (render.BoardOptions, error) {
	opts := render.BoardOptions{
		Preset:      cmd.String("preset"),
		StartFret:   cmd.Int("start"),
		EndFret:     cmd.Int("end"),
		ExtraFrets:  cmd.Int("extra"),
		AspectRatio: cmd.Float("aspect"),
	}
	if opts.AspectRatio < 0 {
		return opts, fmt.Errorf("%w: aspect must be positive", shared.ErrInvalidFlag)
	}

	if name := cmd.String("position"); name != "" {
		pos, ok := fretboard.LookupPosition(name)
		if !ok {
			return opts, fmt.Errorf("%w: unknown position %q", shared.ErrInvalidFlag, name)
		}
		opts.StartFret, opts.EndFret = pos.Start, pos.End
	}

	root, scale := cmd.String("root"), cmd.String("scale")
	if root == "" && scale == "" {
		return opts, nil
	}
	if root == "" {
		root = "C"
	}
	if scale == "" {
		scale = "major"
	}
	s, err := parseScale(root, scale)
	if err != nil {
		return opts, err
	}
	opts.Scale = &s
	return opts, nil
}

func parseScale(root, scaleType string) (music.Scale, error) {
	n, err := music.ParseNote(root)
	if err != nil {
		return music.Scale{}, err
	}
	st, err := music.ParseScaleType(scaleType)
	if err != nil {
		return music.Scale{}, err
	}
	return music.NewScale(n, st)
}

// FretboardRender writes a board, or a stored exercise's board, as SVG.
func (r *Runner) FretboardRender(ctx context.Context, cmd *cli.Command) error {
	opts, err := boardOptions(cmd)
	if err != nil {
		return err
	}

	var svg []byte
	if id := cmd.String("exercise"); id != "" {
		store, err := r.exerciseStore()
		if err != nil {
			return err
		}
		e, err := store.FindByID(id)
		if err != nil {
			return err
		}
		if svg, err = formatter.ExerciseSVG(e, opts); err != nil {
			return err
		}
	} else {
		m, err := opts.Build()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := render.WriteBoardSVG(&buf, m); err != nil {
			return err
		}
		svg = buf.Bytes()
	}

	path := cmd.String("output")
	if path == "" {
		_, err := r.output.Write(svg)
		return err
	}
	if err := os.WriteFile(path, svg, 0644); err != nil {
		return fmt.Errorf("failed to write SVG: %w", err)
	}
	r.logger.Info("rendered fretboard", "path", path, "preset", opts.Preset)
	return nil
}

// FretboardLayout prints the geometry snapshot of a board.
func (r *Runner) FretboardLayout(ctx context.Context, cmd *cli.Command) error {
	opts, err := boardOptions(cmd)
	if err != nil {
		return err
	}
	m, err := opts.Build()
	if err != nil {
		return err
	}
	return r.writeJSON(layout.NewEngine().ForModel(m), cmd.Bool("pretty"))
}

// FretboardPresets lists the instrument presets and named positions.
func (r *Runner) FretboardPresets(ctx context.Context, cmd *cli.Command) error {
	presets, positions := fretboard.Presets(), fretboard.PositionPresets()
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"presets": presets, "positions": positions}, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Presets")
	for _, p := range presets {
		r.writePlain("%-13s %-18s %s\n", p.Name, p.Tuning, p.Description)
	}
	r.writePlainln("Positions")
	for _, p := range positions {
		r.writePlain("%-3s frets %d-%d\n", p.Name, p.Start, p.End)
	}
	return nil
}

// Scale prints the notes of <root> <type>, or the known types with --list.
func (r *Runner) Scale(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("list") {
		for _, st := range music.AllScaleTypes() {
			r.writePlain("%-20s %s\n", st.Slug(), st)
		}
		return nil
	}

	if cmd.Args().Len() < 2 {
		return fmt.Errorf("%w: usage: scale <root> <type>", shared.ErrMissingArgument)
	}
	s, err := parseScale(cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return err
	}

	r.writePlainHeader(s.String())
	for i, n := range s.Notes() {
		r.writePlain("%2d. %s\n", i+1, n.Name(music.Both))
	}
	return nil
}

// MIDI writes a stored exercise, or --root/--scale, as a standard MIDI file.
func (r *Runner) MIDI(ctx context.Context, cmd *cli.Command) error {
	opts := formatter.DefaultMIDIOptions()
	opts.BPM = cmd.Float("bpm")
	opts.Octave = cmd.Int("octave")

	var (
		file *smf.SMF
		err  error
		name string
	)
	if id := cmd.Args().First(); id != "" {
		store, serr := r.exerciseStore()
		if serr != nil {
			return serr
		}
		var e *models.Exercise
		if e, err = store.FindByID(id); err != nil {
			return err
		}
		name = e.Name
		if cmd.Bool("triads") {
			scale, serr := e.ExerciseType.Scale()
			if serr != nil {
				return serr
			}
			file, err = formatter.TriadMIDI(scale, opts)
		} else {
			file, err = formatter.ExerciseMIDI(e, opts)
		}
	} else {
		scale, serr := parseScale(cmd.String("root"), cmd.String("scale"))
		if serr != nil {
			return serr
		}
		name = scale.String()
		if cmd.Bool("triads") {
			file, err = formatter.TriadMIDI(scale, opts)
		} else {
			file, err = formatter.ScaleMIDI(scale, opts)
		}
	}
	if err != nil {
		return err
	}

	path, err := formatter.WriteMIDIFile(file, cmd.String("output"))
	if err != nil {
		return err
	}
	r.logger.Info("wrote MIDI", "path", path, "source", name, "bpm", opts.BPM)
	return r.writePlain("✓ Wrote %s (%s)\n", path, name)
}
