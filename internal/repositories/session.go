package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/fretx/internal/models"
)

// SessionRepository stores [models.PracticeSession] rows.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts s and sets its ID.
func (r *SessionRepository) Create(s *models.PracticeSession) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var exerciseID sql.NullString
	if s.ExerciseID != "" {
		exerciseID = sql.NullString{String: s.ExerciseID, Valid: true}
	}

	query := `
		INSERT INTO practice_sessions (exercise_id, bpm, beats_per_bar, planned_seconds, elapsed_seconds, completed, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query, exerciseID, s.BPM, s.BeatsPerBar,
		int64(s.Planned/time.Second), int64(s.Elapsed/time.Second), s.Completed, s.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert practice session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read practice session id: %w", err)
	}
	s.ID = id
	return nil
}

// List returns sessions newest first. A non-empty exerciseID filters to that exercise.
func (r *SessionRepository) List(exerciseID string, limit int) ([]*models.PracticeSession, error) {
	query := `
		SELECT id, exercise_id, bpm, beats_per_bar, planned_seconds, elapsed_seconds, completed, started_at
		FROM practice_sessions
	`
	args := []any{}
	if exerciseID != "" {
		query += " WHERE exercise_id = ?"
		args = append(args, exerciseID)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query practice sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*models.PracticeSession{}
	for rows.Next() {
		var (
			s                models.PracticeSession
			exercise         sql.NullString
			planned, elapsed int64
		)
		if err := rows.Scan(&s.ID, &exercise, &s.BPM, &s.BeatsPerBar, &planned, &elapsed, &s.Completed, &s.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan practice session: %w", err)
		}
		s.ExerciseID = exercise.String
		s.Planned = time.Duration(planned) * time.Second
		s.Elapsed = time.Duration(elapsed) * time.Second
		sessions = append(sessions, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}

// TotalPractice sums elapsed time, optionally for one exercise.
func (r *SessionRepository) TotalPractice(exerciseID string) (time.Duration, error) {
	query := `SELECT COALESCE(SUM(elapsed_seconds), 0) FROM practice_sessions`
	args := []any{}
	if exerciseID != "" {
		query += " WHERE exercise_id = ?"
		args = append(args, exerciseID)
	}

	var seconds int64
	if err := r.db.QueryRow(query, args...).Scan(&seconds); err != nil {
		return 0, fmt.Errorf("failed to sum practice time: %w", err)
	}
	return time.Duration(seconds) * time.Second, nil
}
