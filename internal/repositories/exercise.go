package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/shared"
)

// ExerciseRepository implements [models.ExerciseStore] on SQLite.
type ExerciseRepository struct {
	db *sql.DB
}

// NewExerciseRepository creates a new [ExerciseRepository] with the given database connection
func NewExerciseRepository(db *sql.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

const exerciseColumns = `id, name, description, kind, root_note, scale_type, min_fret, max_fret`

// exerciseRow is the column form of an exercise.
type exerciseRow struct {
	id          string
	name        string
	description sql.NullString
	kind        string
	rootNote    sql.NullString
	scaleType   sql.NullString
	minFret     sql.NullInt64
	maxFret     sql.NullInt64
}

func toRow(e *models.Exercise) exerciseRow {
	r := exerciseRow{id: e.ID, name: e.Name, kind: string(e.ExerciseType.Kind)}
	if e.Description != nil {
		r.description = sql.NullString{String: *e.Description, Valid: true}
	}
	if spec := e.ExerciseType.Spec; e.ExerciseType.HasScale() {
		root, _ := spec.RootNote.MarshalText()
		r.rootNote = sql.NullString{String: string(root), Valid: true}
		r.scaleType = sql.NullString{String: spec.ScaleType.Slug(), Valid: true}
		r.minFret = sql.NullInt64{Int64: int64(spec.FretRange.Min()), Valid: true}
		r.maxFret = sql.NullInt64{Int64: int64(spec.FretRange.Max()), Valid: true}
	}
	return r
}

func (r exerciseRow) exercise() (*models.Exercise, error) {
	e := &models.Exercise{ID: r.id, Name: r.name}
	if r.description.Valid {
		d := r.description.String
		e.Description = &d
	}

	kind, err := models.ParseKind(r.kind)
	if err != nil {
		return nil, fmt.Errorf("corrupt exercise %s: %w", r.id, err)
	}
	e.ExerciseType = models.ExerciseType{Kind: kind}
	if kind != models.KindScale && kind != models.KindTriad {
		return e, nil
	}

	root, err := music.ParseNote(r.rootNote.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt exercise %s: %w", r.id, err)
	}
	st, err := music.ParseScaleType(r.scaleType.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt exercise %s: %w", r.id, err)
	}
	e.ExerciseType.Spec = &models.ScaleSpec{
		RootNote:  root,
		ScaleType: st,
		FretRange: models.FretRange{int(r.minFret.Int64), int(r.maxFret.Int64)},
	}
	return e, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(s scanner) (*models.Exercise, error) {
	var r exerciseRow
	if err := s.Scan(&r.id, &r.name, &r.description, &r.kind, &r.rootNote, &r.scaleType, &r.minFret, &r.maxFret); err != nil {
		return nil, err
	}
	return r.exercise()
}

// Save inserts e, generating an ID when it has none.
func (r *ExerciseRepository) Save(e *models.Exercise) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	exists, err := r.NameExists(e.Name, "")
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", shared.ErrDuplicateName, e.Name)
	}

	sequence, err := NextSequence(r.db, "exercises")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if e.ID == "" {
		e.ID = shared.GenerateID()
	}

	now := time.Now()
	row := toRow(e)
	query := `
		INSERT INTO exercises (id, sequence, name, description, kind, root_note, scale_type, min_fret, max_fret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, row.id, sequence, row.name, row.description, row.kind,
		row.rootNote, row.scaleType, row.minFret, row.maxFret, now, now)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %q", shared.ErrDuplicateName, e.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert exercise: %w", err)
	}
	return nil
}

// FindByID retrieves an exercise by ID, excluding soft-deleted exercises
func (r *ExerciseRepository) FindByID(id string) (*models.Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE id = ? AND deleted_at IS NULL`

	e, err := scanExercise(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrExerciseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query exercise: %w", err)
	}
	return e, nil
}

// FindAll lists live exercises in insertion order
func (r *ExerciseRepository) FindAll() ([]*models.Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE deleted_at IS NULL ORDER BY sequence ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercises: %w", err)
	}
	defer rows.Close()

	exercises := []*models.Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		exercises = append(exercises, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return exercises, nil
}

// Update replaces every field of the exercise with e.ID. An exercise may keep its own name.
func (r *ExerciseRepository) Update(e *models.Exercise) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	exists, err := r.NameExists(e.Name, e.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", shared.ErrDuplicateName, e.Name)
	}

	row := toRow(e)
	query := `
		UPDATE exercises
		SET name = ?, description = ?, kind = ?, root_note = ?, scale_type = ?, min_fret = ?, max_fret = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query, row.name, row.description, row.kind, row.rootNote, row.scaleType,
		row.minFret, row.maxFret, time.Now(), row.id)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %q", shared.ErrDuplicateName, e.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update exercise: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: not found or already deleted: %s", shared.ErrExerciseNotFound, e.ID)
	}
	return nil
}

// Delete soft-deletes an exercise by ID. Its name becomes available again.
func (r *ExerciseRepository) Delete(id string) error {
	query := `UPDATE exercises SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete exercise: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: not found or already deleted: %s", shared.ErrExerciseNotFound, id)
	}
	return nil
}

// NameExists reports whether a live exercise other than excludeID is called name.
// Names compare case-sensitively after trimming.
func (r *ExerciseRepository) NameExists(name, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM exercises WHERE name = TRIM(?) AND id != ? AND deleted_at IS NULL)`

	var exists bool
	if err := r.db.QueryRow(query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check exercise name: %w", err)
	}
	return exists, nil
}

var _ models.ExerciseStore = (*ExerciseRepository)(nil)
