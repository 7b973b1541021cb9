// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretx/internal/formatter"
	"github.com/desertthunder/fretx/internal/tasks"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
	}
}

// boardFlags describe a board; defaults come from the [fretboard] config section.
func boardFlags(r *Runner) []cli.Flag {
	fc := r.config.Fretboard
	return []cli.Flag{
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: "Instrument preset", Value: fc.Preset},
		&cli.IntFlag{Name: "start", Usage: "First playable fret", Value: fc.StartFret},
		&cli.IntFlag{Name: "end", Usage: "Last playable fret", Value: fc.EndFret},
		&cli.IntFlag{Name: "extra", Usage: "Frets shown beyond the playable range", Value: fc.ExtraFrets},
		&cli.FloatFlag{Name: "aspect", Usage: "Width to height ratio (0 keeps the preset's)"},
		&cli.StringFlag{Name: "position", Usage: "Named position (R, 1-4); overrides --start and --end"},
		&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Scale root note, e.g. C or F#"},
		&cli.StringFlag{Name: "scale", Aliases: []string{"s"}, Usage: "Scale type, e.g. major, minor-pentatonic, chromatic"},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml with default settings",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Usage: "Where to write the file", Value: "config.toml"},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// serveCommand runs the REST API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the exercise and fretboard HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host", Value: r.config.Server.Host},
			&cli.IntFlag{Name: "port", Usage: "Listen port", Value: r.config.Server.Port},
			&cli.BoolFlag{Name: "seed", Usage: "Insert a sample exercise when the store is empty"},
		},
		Action: r.Serve,
	}
}

// exercisesCommand handles stored exercise operations.
func exercisesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "exercises",
		Aliases: []string{"ex"},
		Usage:   "Manage practice exercises",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List exercises",
				Flags:  jsonFlags(),
				Action: r.ExercisesList,
			},
			{
				Name:      "show",
				Usage:     "Show one exercise",
				ArgsUsage: "<id>",
				Flags:     jsonFlags(),
				Action:    r.ExercisesShow,
			},
			{
				Name:  "add",
				Usage: "Add an exercise",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Unique exercise name", Required: true},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "scale, triad, technique or song", Value: "scale"},
					&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Root note for scale and triad exercises", Value: "C"},
					&cli.StringFlag{Name: "scale", Aliases: []string{"s"}, Usage: "Scale type for scale and triad exercises", Value: "major"},
					&cli.IntFlag{Name: "min-fret", Usage: "Lowest fret of the exercise", Value: 0},
					&cli.IntFlag{Name: "max-fret", Usage: "Highest fret of the exercise", Value: 12},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Optional description"},
				},
				Action: r.ExercisesAdd,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete an exercise",
				ArgsUsage: "<id>",
				Action:    r.ExercisesDelete,
			},
			{
				Name:  "export",
				Usage: "Export exercises to a file, or one file per exercise with --bulk",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage: "Single file: " + joinFormats() +
							"; bulk: " + strings.Join(tasks.ExportFormats(), ", "),
						Value: string(formatter.FormatJSON),
					},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file, or directory with --bulk"},
					&cli.BoolFlag{Name: "bulk", Usage: "Write one file per exercise and a manifest"},
					&cli.StringSliceFlag{Name: "id", Usage: "Exercise to export (repeatable); default all"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent export workers", Value: 4},
					&cli.FloatFlag{Name: "rate", Usage: "Exports per second, 0 for unlimited"},
				},
				Action: r.ExercisesExport,
			},
		},
	}
}

func joinFormats() string {
	names := make([]string, 0, len(formatter.Formats()))
	for _, f := range formatter.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// fretboardCommand renders boards outside the server.
func fretboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "fretboard",
		Aliases: []string{"fb"},
		Usage:   "Render fretboards",
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "Render a board as SVG",
				Flags: append(boardFlags(r),
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "SVG file (default stdout)"},
					&cli.StringFlag{Name: "exercise", Aliases: []string{"e"}, Usage: "Render a stored exercise instead of --root/--scale"},
				),
				Action: r.FretboardRender,
			},
			{
				Name:   "layout",
				Usage:  "Print the computed board geometry as JSON",
				Flags:  append(boardFlags(r), jsonFlags()[1]),
				Action: r.FretboardLayout,
			},
			{
				Name:   "presets",
				Usage:  "List instrument and position presets",
				Flags:  jsonFlags(),
				Action: r.FretboardPresets,
			},
		},
	}
}

// scaleCommand prints the notes of a scale.
func scaleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "scale",
		Usage:     "Show the notes of a scale",
		ArgsUsage: "<root> <type>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "list", Aliases: []string{"l"}, Usage: "List the known scale types"},
		},
		Action: r.Scale,
	}
}

// midiCommand writes a scale or triad exercise as a standard MIDI file.
func midiCommand(r *Runner) *cli.Command {
	defaults := formatter.DefaultMIDIOptions()
	return &cli.Command{
		Name:      "midi",
		Usage:     "Write a scale (or its triads) as a MIDI file",
		ArgsUsage: "[exercise-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Scale root when no exercise is given", Value: "C"},
			&cli.StringFlag{Name: "scale", Aliases: []string{"s"}, Usage: "Scale type when no exercise is given", Value: "major"},
			&cli.BoolFlag{Name: "triads", Usage: "Write diatonic triads instead of the scale run"},
			&cli.FloatFlag{Name: "bpm", Usage: "Tempo", Value: defaults.BPM},
			&cli.IntFlag{Name: "octave", Usage: "Octave of the root (4 = middle C)", Value: defaults.Octave},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "MIDI file path (default scale.mid)"},
		},
		Action: r.MIDI,
	}
}

// metronomeCommand handles practice timing.
func metronomeCommand(r *Runner) *cli.Command {
	pc := r.config.Practice
	tempo := []cli.Flag{
		&cli.IntFlag{Name: "bpm", Aliases: []string{"b"}, Usage: "Beats per minute", Value: pc.BPM},
		&cli.IntFlag{Name: "beats", Usage: "Beats per bar", Value: pc.BeatsPerBar},
	}
	return &cli.Command{
		Name:    "metronome",
		Aliases: []string{"met"},
		Usage:   "Metronome, practice timer and click tracks",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a timed practice session",
				Flags: append(tempo,
					&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Session length, 0 runs until interrupted", Value: minutes(pc.Minutes)},
					&cli.StringFlag{Name: "exercise", Aliases: []string{"e"}, Usage: "Exercise the session belongs to"},
					&cli.BoolFlag{Name: "no-record", Usage: "Do not store the session"},
				),
				Action: r.MetronomeRun,
			},
			{
				Name:  "click",
				Usage: "Render a click track to a WAV file",
				Flags: append(tempo,
					&cli.IntFlag{Name: "bars", Usage: "Bars to render", Value: 4},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "WAV file", Value: "click.wav"},
				),
				Action: r.MetronomeClick,
			},
			{
				Name:  "history",
				Usage: "Show recorded practice sessions",
				Flags: append(jsonFlags(),
					&cli.StringFlag{Name: "exercise", Aliases: []string{"e"}, Usage: "Only sessions for this exercise"},
					&cli.IntFlag{Name: "limit", Usage: "Most recent sessions to show", Value: 20},
				),
				Action: r.MetronomeHistory,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive practice.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive exercise browser and interval trainer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log", Usage: "Log file while the TUI owns the terminal", Value: "./tmp/fretx-tui.log"},
			&cli.IntFlag{Name: "seed", Usage: "Trainer random seed (default time based)"},
		},
		Action: r.TUI,
	}
}
