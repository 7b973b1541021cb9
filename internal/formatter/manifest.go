package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/fretx/internal/shared"
)

// ManifestEntry records the outcome of one exercise in a bulk export.
type ManifestEntry struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Success bool     `json:"success"`
	Files   []string `json:"files"`
	Error   string   `json:"error,omitempty"`
}

// BulkExportManifest summarises a bulk export.
type BulkExportManifest struct {
	Format            string          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	TotalExercises    int             `json:"total_exercises"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Exercises         []ManifestEntry `json:"exercises"`
}

// WriteBulkExportManifest writes the manifest as indented JSON.
func WriteBulkExportManifest(m BulkExportManifest, path string) error {
	if m.Exercises == nil {
		m.Exercises = []ManifestEntry{}
	}
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
