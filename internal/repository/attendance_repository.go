package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hadirku/hadirku-api/internal/models"
)

// AttendanceRepository handles the regular (daily) teacher attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// CheckIn inserts the teacher's attendance row for the date. A repeated
// check-in keeps the original timestamp; created reports whether this call
// inserted the row.
func (r *AttendanceRepository) CheckIn(ctx context.Context, teacherID string, date, at time.Time) (*models.TeacherAttendance, bool, error) {
	now := time.Now().UTC()
	query := `INSERT INTO teacher_attendance (id, teacher_id, date, check_in_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (teacher_id, date) DO NOTHING
RETURNING id, teacher_id, date, check_in_at, check_out_at, created_at, updated_at`

	var stored models.TeacherAttendance
	err := r.db.GetContext(ctx, &stored, query, uuid.NewString(), teacherID, date, at, now)
	if err == nil {
		return &stored, true, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("check in: %w", err)
	}

	existing, err := r.FindForDate(ctx, teacherID, date)
	if err != nil {
		return nil, false, fmt.Errorf("check in reload: %w", err)
	}
	return existing, false, nil
}

// CheckOut stamps the check-out once. The predicate rejects a second
// check-out for the same day.
func (r *AttendanceRepository) CheckOut(ctx context.Context, teacherID string, date, at time.Time) (bool, error) {
	query := `UPDATE teacher_attendance
SET check_out_at = $3, updated_at = $4
WHERE teacher_id = $1 AND date = $2 AND check_out_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, teacherID, date, at, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("check out: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check out rows affected: %w", err)
	}
	return affected == 1, nil
}

// FindForDate loads one teacher's attendance row for a date.
func (r *AttendanceRepository) FindForDate(ctx context.Context, teacherID string, date time.Time) (*models.TeacherAttendance, error) {
	query := `SELECT id, teacher_id, date, check_in_at, check_out_at, created_at, updated_at
FROM teacher_attendance
WHERE teacher_id = $1 AND date = $2`

	var record models.TeacherAttendance
	if err := r.db.GetContext(ctx, &record, query, teacherID, date); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListForDate returns every attendance row for the date with teacher names,
// the raw input of the availability projection.
func (r *AttendanceRepository) ListForDate(ctx context.Context, date time.Time) ([]models.TeacherAttendanceRecord, error) {
	query := `SELECT ta.id, ta.teacher_id, ta.date, ta.check_in_at, ta.check_out_at, ta.created_at, ta.updated_at,
t.full_name AS teacher_name
FROM teacher_attendance ta
JOIN teachers t ON t.id = ta.teacher_id
WHERE ta.date = $1
ORDER BY t.full_name ASC`

	var rows []models.TeacherAttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("list attendance for date: %w", err)
	}
	return rows, nil
}
