package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadirku/hadirku-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "slot_id", "date", "start_at", "end_at",
		"class_id", "class_name", "subject_id", "subject_name",
		"teacher_id", "teacher_name", "substitute_teacher_id", "substitute_teacher_name",
		"substitute_checked_in", "substitute_checked_in_at", "created_at", "updated_at",
	}).AddRow(
		"session-1", "slot-1", now, now.Add(time.Hour), now.Add(2*time.Hour),
		"class-1", "X IPA 1", "subject-1", "Matematika",
		"teacher-1", "Pak Budi", nil, nil,
		false, nil, now, now,
	)
}

func TestSessionRepositoryListWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	from := time.Now().UTC()
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(`SELECT .+ FROM sessions s .+ WHERE s\.end_at >= \$1 AND s\.start_at <= \$2 ORDER BY s\.start_at ASC`).
		WithArgs(from, to).
		WillReturnRows(sessionRows())

	sessions, err := repo.ListWindow(context.Background(), models.SessionFilter{From: from, To: to})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "session-1", sessions[0].ID)
	assert.Nil(t, sessions[0].SubstituteTeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryAssignSubstituteWinner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(`UPDATE sessions SET substitute_teacher_id = \$2, updated_at = \$3 WHERE id = \$1 AND substitute_teacher_id IS NULL`).
		WithArgs("session-1", "teacher-7", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assigned, err := repo.AssignSubstitute(context.Background(), "session-1", "teacher-7")
	require.NoError(t, err)
	assert.True(t, assigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryAssignSubstituteLoser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	// The predicate no longer matches once another writer has won the row.
	mock.ExpectExec(`UPDATE sessions SET substitute_teacher_id = \$2, updated_at = \$3 WHERE id = \$1 AND substitute_teacher_id IS NULL`).
		WithArgs("session-1", "teacher-9", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assigned, err := repo.AssignSubstitute(context.Background(), "session-1", "teacher-9")
	require.NoError(t, err)
	assert.False(t, assigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryMarkSubstituteCheckedIn(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(`UPDATE sessions SET substitute_checked_in = TRUE, substitute_checked_in_at = \$3, updated_at = \$3 WHERE id = \$1 AND substitute_teacher_id = \$2 AND substitute_checked_in = FALSE`).
		WithArgs("session-1", "teacher-7", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	marked, err := repo.MarkSubstituteCheckedIn(context.Background(), "session-1", "teacher-7")
	require.NoError(t, err)
	assert.True(t, marked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateManySkipsExpanded(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		{SlotID: "slot-1", Date: date, StartAt: date.Add(7 * time.Hour), EndAt: date.Add(9 * time.Hour), ClassID: "class-1", SubjectID: "subject-1", TeacherID: "teacher-1"},
		{SlotID: "slot-2", Date: date, StartAt: date.Add(9 * time.Hour), EndAt: date.Add(11 * time.Hour), ClassID: "class-1", SubjectID: "subject-2", TeacherID: "teacher-2"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO sessions .+ ON CONFLICT \(slot_id, date\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO sessions .+ ON CONFLICT \(slot_id, date\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	inserted, err := repo.CreateMany(context.Background(), sessions)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
