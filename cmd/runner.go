package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/repositories"
	"github.com/desertthunder/fretx/internal/shared"
)

// SessionStore records and reads practice sessions.
type SessionStore interface {
	Create(s *models.PracticeSession) error
	List(exerciseID string, limit int) ([]*models.PracticeSession, error)
	TotalPractice(exerciseID string) (time.Duration, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Stores are opened on first use from the configured storage driver unless
// supplied through [RunnerOpts].
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	store    models.ExerciseStore
	sessions SessionStore
	db       *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Logger   *log.Logger
	Output   io.Writer
	Store    models.ExerciseStore
	Sessions SessionStore
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		store:    opts.Store,
		sessions: opts.Sessions,
	}
}

// SetLogger replaces the logger, e.g. when the TUI takes over the terminal.
func (r *Runner) SetLogger(l *log.Logger) { r.logger = l }

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, exercisesCommand, fretboardCommand, scaleCommand, midiCommand, metronomeCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// exerciseStore opens the configured store: sqlite through the migrated
// database, or one JSON file per exercise under storage.dir.
func (r *Runner) exerciseStore() (models.ExerciseStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	switch r.config.Storage.Driver {
	case shared.StorageFile:
		fs, err := repositories.NewFileStore(r.config.Storage.Dir)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("using file store", "dir", fs.Dir())
		r.store = fs
	default:
		db, err := r.database()
		if err != nil {
			return nil, err
		}
		r.store = repositories.NewExerciseRepository(db)
	}
	return r.store, nil
}

// sessionStore returns the practice history store. It needs the sqlite driver.
func (r *Runner) sessionStore() (SessionStore, error) {
	if r.sessions != nil {
		return r.sessions, nil
	}
	if r.config.Storage.Driver == shared.StorageFile {
		return nil, fmt.Errorf("%w: practice history needs the sqlite storage driver", shared.ErrInvalidConfig)
	}
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	r.sessions = repositories.NewSessionRepository(db)
	return r.sessions, nil
}

func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	r.logger.Debug("opening database", "path", r.config.Database.Path)
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	return db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
