package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attendanceRow(checkIn time.Time, checkOut *time.Time) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "teacher_id", "date", "check_in_at", "check_out_at", "created_at", "updated_at"}).
		AddRow("att-1", "teacher-1", checkIn.Truncate(24*time.Hour), checkIn, checkOut, now, now)
}

func TestAttendanceRepositoryCheckInInserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	at := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO teacher_attendance .+ ON CONFLICT \(teacher_id, date\) DO NOTHING RETURNING`).
		WithArgs(sqlmock.AnyArg(), "teacher-1", date, at, sqlmock.AnyArg()).
		WillReturnRows(attendanceRow(at, nil))

	record, created, err := repo.CheckIn(context.Background(), "teacher-1", date, at)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "teacher-1", record.TeacherID)
	assert.Nil(t, record.CheckOutAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCheckInIsIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	first := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	again := first.Add(2 * time.Hour)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	// Conflict path: insert returns no row, existing record is reloaded.
	mock.ExpectQuery(`INSERT INTO teacher_attendance .+ DO NOTHING RETURNING`).
		WithArgs(sqlmock.AnyArg(), "teacher-1", date, again, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT .+ FROM teacher_attendance WHERE teacher_id = \$1 AND date = \$2`).
		WithArgs("teacher-1", date).
		WillReturnRows(attendanceRow(first, nil))

	record, created, err := repo.CheckIn(context.Background(), "teacher-1", date, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, record.CheckInAt.UTC())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCheckOutOnlyOnce(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE teacher_attendance SET check_out_at = \$3, updated_at = \$4 WHERE teacher_id = \$1 AND date = \$2 AND check_out_at IS NULL`).
		WithArgs("teacher-1", date, at, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	done, err := repo.CheckOut(context.Background(), "teacher-1", date, at)
	require.NoError(t, err)
	assert.True(t, done)

	mock.ExpectExec(`UPDATE teacher_attendance SET check_out_at = \$3`).
		WithArgs("teacher-1", date, at, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	done, err = repo.CheckOut(context.Background(), "teacher-1", date, at)
	require.NoError(t, err)
	assert.False(t, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}
