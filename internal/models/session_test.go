package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionAt(t *testing.T, start, end string) *Session {
	t.Helper()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	parse := func(v string) time.Time {
		parsed, err := time.Parse("15:04", v)
		require.NoError(t, err)
		return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
	}
	return &Session{
		ID:        "session-1",
		Date:      day,
		StartAt:   parse(start),
		EndAt:     parse(end),
		ClassID:   "class-1",
		SubjectID: "subject-1",
		TeacherID: "teacher-1",
	}
}

func TestEvaluateStatusPhases(t *testing.T) {
	s := sessionAt(t, "10:00", "11:30")

	assert.Equal(t, SessionScheduled, s.StatusAt(s.StartAt.Add(-time.Minute)))
	assert.Equal(t, SessionOngoing, s.StatusAt(s.StartAt))
	assert.Equal(t, SessionOngoing, s.StatusAt(s.StartAt.Add(45*time.Minute)))
	assert.Equal(t, SessionOngoing, s.StatusAt(s.EndAt))
	assert.Equal(t, SessionCompleted, s.StatusAt(s.EndAt.Add(time.Second)))
}

func TestEvaluateStatusDegenerateWindow(t *testing.T) {
	zero := sessionAt(t, "10:00", "10:00")
	inverted := sessionAt(t, "11:00", "10:00")

	for _, offset := range []time.Duration{-time.Hour, 0, time.Hour} {
		assert.Equal(t, SessionCompleted, zero.StatusAt(zero.StartAt.Add(offset)))
		assert.Equal(t, SessionCompleted, inverted.StatusAt(inverted.StartAt.Add(offset)))
	}
}

func TestEvaluateStatusCompletedIsMonotonic(t *testing.T) {
	s := sessionAt(t, "10:00", "11:30")

	first := s.EndAt.Add(time.Millisecond)
	require.Equal(t, SessionCompleted, s.StatusAt(first))
	for _, later := range []time.Duration{time.Second, time.Hour, 24 * time.Hour, 365 * 24 * time.Hour} {
		assert.Equal(t, SessionCompleted, s.StatusAt(first.Add(later)))
	}
}

func TestWarningAt(t *testing.T) {
	s := sessionAt(t, "10:00", "11:30")
	during := s.StartAt.Add(45 * time.Minute)

	assert.True(t, s.WarningAt(during))
	assert.False(t, s.WarningAt(s.StartAt.Add(-time.Minute)))
	assert.False(t, s.WarningAt(s.EndAt.Add(time.Minute)))

	subID := "teacher-2"
	s.SubstituteTeacherID = &subID
	assert.False(t, s.WarningAt(during))

	s.SubstituteCheckedIn = true
	assert.False(t, s.WarningAt(during))
}

func TestSessionOverlaps(t *testing.T) {
	s := sessionAt(t, "10:00", "11:30")

	assert.True(t, s.Overlaps(s.StartAt.Add(-time.Hour), s.StartAt))
	assert.True(t, s.Overlaps(s.EndAt, s.EndAt.Add(time.Hour)))
	assert.True(t, s.Overlaps(s.StartAt.Add(10*time.Minute), s.EndAt.Add(-10*time.Minute)))
	assert.False(t, s.Overlaps(s.EndAt.Add(time.Minute), s.EndAt.Add(time.Hour)))
	assert.False(t, s.Overlaps(s.StartAt.Add(-time.Hour), s.StartAt.Add(-time.Minute)))
}

func TestAssignedTeacherIDs(t *testing.T) {
	s := sessionAt(t, "10:00", "11:30")
	assert.Equal(t, []string{"teacher-1"}, s.AssignedTeacherIDs())

	subID := "teacher-2"
	s.SubstituteTeacherID = &subID
	assert.Equal(t, []string{"teacher-1", "teacher-2"}, s.AssignedTeacherIDs())
}
