package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hadirku/hadirku-api/internal/models"
)

const sessionColumns = `s.id, s.slot_id, s.date, s.start_at, s.end_at,
s.class_id, c.name AS class_name,
s.subject_id, sub.name AS subject_name,
s.teacher_id, t.full_name AS teacher_name,
s.substitute_teacher_id, st.full_name AS substitute_teacher_name,
s.substitute_checked_in, s.substitute_checked_in_at,
s.created_at, s.updated_at`

const sessionJoins = `FROM sessions s
LEFT JOIN classes c ON c.id = s.class_id
LEFT JOIN subjects sub ON sub.id = s.subject_id
LEFT JOIN teachers t ON t.id = s.teacher_id
LEFT JOIN teachers st ON st.id = s.substitute_teacher_id`

// SessionRepository handles persistence for per-date session rows.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// ListWindow returns sessions overlapping [from, to], ordered by start time
// ascending. A session already underway at from is still served; the board
// needs exactly those rows. The window is bounded by the caller; this query
// never serves an unbounded range.
func (r *SessionRepository) ListWindow(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	query := fmt.Sprintf(`SELECT %s %s
WHERE s.end_at >= $1 AND s.start_at <= $2
ORDER BY s.start_at ASC`, sessionColumns, sessionJoins)

	var rows []models.Session
	if err := r.db.SelectContext(ctx, &rows, query, filter.From, filter.To); err != nil {
		return nil, fmt.Errorf("list session window: %w", err)
	}
	return rows, nil
}

// ListOnDate returns every session scheduled for the given calendar date.
func (r *SessionRepository) ListOnDate(ctx context.Context, date time.Time) ([]models.Session, error) {
	query := fmt.Sprintf(`SELECT %s %s
WHERE s.date = $1
ORDER BY s.start_at ASC`, sessionColumns, sessionJoins)

	var rows []models.Session
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("list sessions on date: %w", err)
	}
	return rows, nil
}

// FindByID loads one session with resolved names.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE s.id = $1`, sessionColumns, sessionJoins)

	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// AssignSubstitute sets the substitute atomically. The predicate only matches
// while the field is still NULL, so of two concurrent attempts exactly one
// observes a row change; the other sees zero rows and loses.
func (r *SessionRepository) AssignSubstitute(ctx context.Context, sessionID, teacherID string) (bool, error) {
	query := `UPDATE sessions
SET substitute_teacher_id = $2, updated_at = $3
WHERE id = $1 AND substitute_teacher_id IS NULL`

	res, err := r.db.ExecContext(ctx, query, sessionID, teacherID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("assign substitute: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("assign substitute rows affected: %w", err)
	}
	return affected == 1, nil
}

// MarkSubstituteCheckedIn records the assigned substitute's presence. Guarded
// so only the assigned teacher can check in, and only once.
func (r *SessionRepository) MarkSubstituteCheckedIn(ctx context.Context, sessionID, teacherID string) (bool, error) {
	now := time.Now().UTC()
	query := `UPDATE sessions
SET substitute_checked_in = TRUE, substitute_checked_in_at = $3, updated_at = $3
WHERE id = $1 AND substitute_teacher_id = $2 AND substitute_checked_in = FALSE`

	res, err := r.db.ExecContext(ctx, query, sessionID, teacherID, now)
	if err != nil {
		return false, fmt.Errorf("mark substitute checked in: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark substitute checked in rows affected: %w", err)
	}
	return affected == 1, nil
}

// CreateMany materialises session rows, skipping dates already expanded.
// Returns the number of rows actually inserted.
func (r *SessionRepository) CreateMany(ctx context.Context, sessions []models.Session) (int, error) {
	if len(sessions) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin session expansion: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	query := `INSERT INTO sessions (id, slot_id, date, start_at, end_at, class_id, subject_id, teacher_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (slot_id, date) DO NOTHING`

	now := time.Now().UTC()
	inserted := 0
	for i := range sessions {
		s := &sessions[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		res, err := tx.ExecContext(ctx, query, s.ID, s.SlotID, s.Date, s.StartAt, s.EndAt, s.ClassID, s.SubjectID, s.TeacherID, now, now)
		if err != nil {
			return 0, fmt.Errorf("insert session: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert session rows affected: %w", err)
		}
		inserted += int(affected)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit session expansion: %w", err)
	}
	commit = true
	return inserted, nil
}
