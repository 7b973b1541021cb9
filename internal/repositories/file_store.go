package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/shared"
)

// FileStore implements [models.ExerciseStore] as one JSON document per exercise.
//
// Files are named exercise_<id>.json. Deletes remove the file. A mutex
// serialises access from concurrent HTTP handlers within one process.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, "exercise_"+id+".json")
}

// validID rejects IDs that would escape the store directory.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

func (s *FileStore) read(path string) (*models.Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e models.Exercise
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return &e, nil
}

// write stores e atomically by renaming a temp file over the target.
func (s *FileStore) write(e *models.Exercise) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode exercise: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".exercise-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write exercise: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write exercise: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(e.ID)); err != nil {
		return fmt.Errorf("failed to store exercise: %w", err)
	}
	return nil
}

// all reads every document in the directory, ordered by ID.
func (s *FileStore) all() ([]*models.Exercise, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "exercise_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}

	exercises := make([]*models.Exercise, 0, len(matches))
	for _, m := range matches {
		e, err := s.read(m)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	slices.SortFunc(exercises, func(a, b *models.Exercise) int { return compareIDs(a.ID, b.ID) })
	return exercises, nil
}

// compareIDs orders "ex_<millis>" IDs numerically by length first, then lexically.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

func (s *FileStore) FindAll() ([]*models.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.all()
}

func (s *FileStore) FindByID(id string) (*models.Exercise, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %s", shared.ErrExerciseNotFound, id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.read(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrExerciseNotFound, id)
	}
	return e, err
}

func (s *FileStore) Save(e *models.Exercise) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if e.ID == "" {
		e.ID = shared.GenerateID()
	}
	if !validID(e.ID) {
		return fmt.Errorf("%w: exercise id %q", shared.ErrInvalidInput, e.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if exists, err := s.nameExists(e.Name, ""); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%w: %q", shared.ErrDuplicateName, e.Name)
	}
	if _, err := os.Stat(s.path(e.ID)); err == nil {
		return fmt.Errorf("%w: exercise %s already exists", shared.ErrInvalidInput, e.ID)
	}
	return s.write(e)
}

func (s *FileStore) Update(e *models.Exercise) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if !validID(e.ID) {
		return fmt.Errorf("%w: %s", shared.ErrExerciseNotFound, e.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(e.ID)); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", shared.ErrExerciseNotFound, e.ID)
	}
	if exists, err := s.nameExists(e.Name, e.ID); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%w: %q", shared.ErrDuplicateName, e.Name)
	}
	return s.write(e)
}

func (s *FileStore) Delete(id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: %s", shared.ErrExerciseNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", shared.ErrExerciseNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete exercise: %w", err)
	}
	return nil
}

func (s *FileStore) NameExists(name, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nameExists(name, excludeID)
}

func (s *FileStore) nameExists(name, excludeID string) (bool, error) {
	exercises, err := s.all()
	if err != nil {
		return false, err
	}
	name = strings.TrimSpace(name)
	return slices.ContainsFunc(exercises, func(e *models.Exercise) bool {
		return e.ID != excludeID && e.Name == name
	}), nil
}

var _ models.ExerciseStore = (*FileStore)(nil)
