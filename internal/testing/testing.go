// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/shared"
)

// ScriptedRandom replays fixed values for fretboard.RandomSource.
//
// Each Range call consumes the next value, clamped into [lo, hi). Once the
// script runs out it returns lo.
type ScriptedRandom struct {
	values []int
	calls  int
}

func NewScriptedRandom(values ...int) *ScriptedRandom {
	return &ScriptedRandom{values: values}
}

func (r *ScriptedRandom) Range(lo, hi int) int {
	defer func() { r.calls++ }()
	if r.calls >= len(r.values) || hi <= lo {
		return lo
	}
	return max(lo, min(r.values[r.calls], hi-1))
}

// Calls returns the number of draws so far.
func (r *ScriptedRandom) Calls() int { return r.calls }

// MemoryStore is an in-memory [models.ExerciseStore].
type MemoryStore struct {
	mu    sync.Mutex
	order []string
	items map[string]*models.Exercise
}

func NewMemoryStore(seed ...*models.Exercise) *MemoryStore {
	s := &MemoryStore{items: map[string]*models.Exercise{}}
	for _, e := range seed {
		if err := s.Save(e); err != nil {
			panic(fmt.Sprintf("invalid seed exercise: %v", err))
		}
	}
	return s
}

func (s *MemoryStore) FindAll() ([]*models.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Exercise, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) FindByID(id string) (*models.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrExerciseNotFound, id)
	}
	return e.Clone(), nil
}

func (s *MemoryStore) Save(e *models.Exercise) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameExists(e.Name, "") {
		return fmt.Errorf("%w: %q", shared.ErrDuplicateName, e.Name)
	}
	if e.ID == "" {
		e.ID = shared.GenerateID()
	}
	s.items[e.ID] = e.Clone()
	s.order = append(s.order, e.ID)
	return nil
}

func (s *MemoryStore) Update(e *models.Exercise) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[e.ID]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrExerciseNotFound, e.ID)
	}
	if s.nameExists(e.Name, e.ID) {
		return fmt.Errorf("%w: %q", shared.ErrDuplicateName, e.Name)
	}
	s.items[e.ID] = e.Clone()
	return nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrExerciseNotFound, id)
	}
	delete(s.items, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) NameExists(name, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nameExists(name, excludeID), nil
}

func (s *MemoryStore) nameExists(name, excludeID string) bool {
	name = strings.TrimSpace(name)
	for id, e := range s.items {
		if id != excludeID && e.Name == name {
			return true
		}
	}
	return false
}

// FailingStore returns Err from every operation.
type FailingStore struct {
	Err error
}

func (f FailingStore) FindAll() ([]*models.Exercise, error) { return nil, f.Err }
func (f FailingStore) FindByID(string) (*models.Exercise, error) { return nil, f.Err }
func (f FailingStore) Save(*models.Exercise) error { return f.Err }
func (f FailingStore) Update(*models.Exercise) error { return f.Err }
func (f FailingStore) Delete(string) error { return f.Err }
func (f FailingStore) NameExists(string, string) (bool, error) { return false, f.Err }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MemWriteSeeker is an in-memory io.WriteSeeker for encoders that patch headers after writing.
type MemWriteSeeker struct {
	buf []byte
	pos int
}

func (m *MemWriteSeeker) Write(p []byte) (int, error) {
	if need := m.pos + len(p); need > len(m.buf) {
		m.buf = append(m.buf, make([]byte, need-len(m.buf))...)
	}
	copy(m.buf[m.pos:], p)
	m.pos += len(p)
	return len(p), nil
}

func (m *MemWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = len(m.buf)
	default:
		return 0, errors.New("invalid whence")
	}
	next := base + int(offset)
	if next < 0 {
		return 0, errors.New("negative position")
	}
	m.pos = next
	return int64(next), nil
}

func (m *MemWriteSeeker) Bytes() []byte { return m.buf }

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

var (
	_ models.ExerciseStore = (*MemoryStore)(nil)
	_ models.ExerciseStore = FailingStore{}
)
