// package formatter exports exercises to CSV, Markdown, JSON, plain text and MIDI
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/render"
	"github.com/desertthunder/fretx/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatText     Format = "text"
)

// Formats lists the export encodings.
func Formats() []Format {
	return []Format{FormatCSV, FormatMarkdown, FormatJSON, FormatText}
}

// ParseFormat accepts the format names and the file extensions md and txt.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// Export encodes exercises in format f.
func Export(f Format, exercises []*models.Exercise) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(exercises)
	case FormatMarkdown:
		return ExportToMarkdown(exercises, "Exercises", nil)
	case FormatJSON:
		return ExportToJSON(exercises)
	case FormatText:
		return ExportToText(exercises)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, f)
	}
}

// scaleColumns returns root, scale type and the fret bounds, blank for variants without a scale.
func scaleColumns(t models.ExerciseType) (string, string, string, string) {
	if !t.HasScale() {
		return "", "", "", ""
	}
	s := t.Spec
	return s.RootNote.Name(music.Both), s.ScaleType.String(),
		strconv.Itoa(s.FretRange.Min()), strconv.Itoa(s.FretRange.Max())
}

// ExportToCSV writes columns: ID, Name, Type, Root, Scale, Min Fret, Max Fret, Description
func ExportToCSV(exercises []*models.Exercise) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Type", "Root", "Scale", "Min Fret", "Max Fret", "Description"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range exercises {
		root, scale, lo, hi := scaleColumns(e.ExerciseType)
		record := []string{
			e.ID,
			e.Name,
			string(e.ExerciseType.Kind),
			root,
			scale,
			lo,
			hi,
			e.DescriptionOr(""),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown writes a titled list of exercises.
//
// diagrams maps exercise IDs to image paths; an entry embeds that board below its exercise.
func ExportToMarkdown(exercises []*models.Exercise, title string, diagrams map[string]string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Exercises**: %d\n\n", len(exercises))

	buf.WriteString("## Exercises\n\n")
	for i, e := range exercises {
		fmt.Fprintf(&buf, "%d. **%s** - %s\n", i+1, e.Name, e.ExerciseType)
		if e.Description != nil && *e.Description != "" {
			fmt.Fprintf(&buf, "   %s\n", *e.Description)
		}
		if e.ExerciseType.HasScale() {
			if scale, err := e.ExerciseType.Scale(); err == nil {
				fmt.Fprintf(&buf, "   Notes: %s\n", ScaleNotes(scale))
			}
		}
		if img, ok := diagrams[e.ID]; ok {
			fmt.Fprintf(&buf, "\n   ![%s](%s)\n", e.Name, img)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText writes one line per exercise.
func ExportToText(exercises []*models.Exercise) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Exercises: %d\n\n", len(exercises))
	for i, e := range exercises {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, e.Name, e.ExerciseType)
	}

	return buf.Bytes(), nil
}

// ExportToJSON writes the exercises in their wire form.
func ExportToJSON(exercises []*models.Exercise) ([]byte, error) {
	if exercises == nil {
		exercises = []*models.Exercise{}
	}
	return shared.MarshalJSON(exercises, true)
}

// ScaleNotes joins the scale's note names, e.g. "C D E F G A B".
func ScaleNotes(s music.Scale) string {
	notes := s.Notes()
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.Name(music.Both)
	}
	return strings.Join(names, " ")
}

// WriteExport writes exercises to path in format f.
//
// Defaults to exercises.{ext} as the filename.
func WriteExport(exercises []*models.Exercise, f Format, path string) (string, error) {
	if path == "" {
		path = "exercises." + f.Extension()
	}

	data, err := Export(f, exercises)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Diagrams  []string
}

// WriteMarkdownExport writes {dir}/README.md plus one {id}.svg board per scale exercise.
//
// A board that fails to render is skipped and its exercise listed without a diagram.
func WriteMarkdownExport(exercises []*models.Exercise, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "exercises"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
		Diagrams:  []string{},
	}

	diagrams := map[string]string{}
	for _, e := range exercises {
		data, err := ExerciseSVG(e, render.DefaultBoardOptions())
		if err != nil {
			continue
		}
		name := e.ID + ".svg"
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write diagram: %w", err)
		}
		diagrams[e.ID] = name
		result.Diagrams = append(result.Diagrams, path)
		result.Files = append(result.Files, path)
	}

	mdData, err := ExportToMarkdown(exercises, "Exercises", diagrams)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// ExerciseBoard builds base over the exercise's fret range with its scale projected.
func ExerciseBoard(e *models.Exercise, base render.BoardOptions) (*fretboard.Model, error) {
	scale, err := e.ExerciseType.Scale()
	if err != nil {
		return nil, err
	}
	fr, _ := e.ExerciseType.FretRange()
	base.StartFret, base.EndFret = fr.Min(), fr.Max()
	base.Scale = &scale
	return base.Build()
}

// ExerciseSVG renders the exercise's scale over its fret range on a board built from base.
func ExerciseSVG(e *models.Exercise, base render.BoardOptions) ([]byte, error) {
	m, err := ExerciseBoard(e, base)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := render.WriteBoardSVG(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
