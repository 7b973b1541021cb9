package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/fretx/internal/formatter"
	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/render"
	"github.com/desertthunder/fretx/internal/shared"
)

// Per-exercise export formats.
const (
	ExportJSON     = "json"
	ExportMIDI     = "midi"
	ExportSVG      = "svg"
	ExportMarkdown = "markdown"
)

// ExportFormats lists the per-exercise export formats.
func ExportFormats() []string {
	return []string{ExportJSON, ExportMIDI, ExportSVG, ExportMarkdown}
}

// BulkExportOpts contains configuration for bulk exercise exports.
type BulkExportOpts struct {
	Format     string                // Export format: json, midi, svg, markdown
	OutputDir  string                // Base output directory (default: exercises_export_{epoch})
	NumWorkers int                   // Concurrent workers (default: 4, max: 10)
	RateLimit  float64               // Exercises read per second, 0 for unlimited
	Board      render.BoardOptions   // Board used for svg and markdown diagrams
	MIDI       formatter.MIDIOptions // Playback used for midi
}

// ExerciseExportJob is one exercise queued for a worker.
type ExerciseExportJob struct {
	Exercise *models.Exercise
}

// ExerciseExportResult is the outcome for one exercise.
type ExerciseExportResult struct {
	ExerciseID   string
	ExerciseName string
	Success      bool
	Files        []string
	Error        error
}

// BulkExportResult summarises a bulk export.
type BulkExportResult struct {
	TotalExercises    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []ExerciseExportResult
}

// Exporter writes exercises from a store to disk.
type Exporter struct {
	store models.ExerciseStore
}

func NewExporter(store models.ExerciseStore) *Exporter {
	return &Exporter{store: store}
}

// BulkExport exports exercises concurrently with rate limiting and progress tracking.
//
// An empty ids exports every exercise. Exercises that cannot be read or written
// are reported as failures without stopping the others. A manifest summarising
// the run is written to {OutputDir}/export_manifest.json.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: exercise store not initialized", shared.ErrMissingConfig)
	}

	if opts.Format == "" {
		opts.Format = ExportJSON
	}
	if !validExportFormat(opts.Format) {
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("exercises_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.Board.Preset == "" {
		opts.Board = render.DefaultBoardOptions()
	}
	if opts.MIDI.BPM == 0 {
		opts.MIDI = formatter.DefaultMIDIOptions()
	}

	if len(ids) == 0 {
		all, err := e.store.FindAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list exercises: %w", err)
		}
		for _, ex := range all {
			ids = append(ids, ex.ID)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalExercises:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ExerciseExportResult, 0, len(ids)),
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	jobs := make(chan ExerciseExportJob, len(ids))
	results := make(chan ExerciseExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			ex, err := e.store.FindByID(id)
			if err != nil {
				results <- ExerciseExportResult{
					ExerciseID:   id,
					ExerciseName: fmt.Sprintf("Unknown (%s)", id),
					Error:        fmt.Errorf("failed to load exercise: %w", err),
				}
				continue
			}
			jobs <- ExerciseExportJob{Exercise: ex}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.ExerciseName, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.ExerciseName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(manifest(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func validExportFormat(f string) bool {
	for _, v := range ExportFormats() {
		if v == f {
			return true
		}
	}
	return false
}

func manifest(r *BulkExportResult, format string) formatter.BulkExportManifest {
	m := formatter.BulkExportManifest{
		Format:            format,
		ExportedAt:        time.Now().UTC(),
		TotalExercises:    r.TotalExercises,
		SuccessfulExports: r.SuccessfulExports,
		FailedExports:     r.FailedExports,
		Exercises:         make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := formatter.ManifestEntry{
			ID:      res.ExerciseID,
			Name:    res.ExerciseName,
			Success: res.Success,
			Files:   res.Files,
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Exercises = append(m.Exercises, entry)
	}
	return m
}

// exportWorker is a worker goroutine that exports exercises from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan ExerciseExportJob,
	results chan<- ExerciseExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- exportSingleExercise(job, opts)
	}
}

// exportSingleExercise writes one exercise in the requested format.
func exportSingleExercise(j ExerciseExportJob, opts BulkExportOpts) ExerciseExportResult {
	ex := j.Exercise
	result := ExerciseExportResult{
		ExerciseID:   ex.ID,
		ExerciseName: ex.Name,
		Files:        []string{},
	}

	switch opts.Format {
	case ExportMIDI:
		file, err := formatter.ExerciseMIDI(ex, opts.MIDI)
		if err != nil {
			result.Error = fmt.Errorf("MIDI export failed: %w", err)
			return result
		}
		path, err := formatter.WriteMIDIFile(file, filepath.Join(opts.OutputDir, ex.ID+".mid"))
		if err != nil {
			result.Error = err
			return result
		}
		result.Files = []string{path}

	case ExportSVG:
		data, err := formatter.ExerciseSVG(ex, opts.Board)
		if err != nil {
			result.Error = fmt.Errorf("SVG export failed: %w", err)
			return result
		}
		path := filepath.Join(opts.OutputDir, ex.ID+".svg")
		if err := os.WriteFile(path, data, 0644); err != nil {
			result.Error = fmt.Errorf("SVG write failed: %w", err)
			return result
		}
		result.Files = []string{path}

	case ExportMarkdown:
		mdRes, err := formatter.WriteMarkdownExport([]*models.Exercise{ex}, filepath.Join(opts.OutputDir, ex.ID))
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files

	default:
		path := filepath.Join(opts.OutputDir, ex.ID+".json")
		data, err := shared.MarshalJSON(ex, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}
