package models

import "time"

// SessionStatus is the lifecycle phase of a session, derived from time.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionOngoing   SessionStatus = "ongoing"
	SessionCompleted SessionStatus = "completed"
)

// Session is one concrete occurrence of a scheduled class period on a date.
// Lifecycle status is never stored; it is always derived from the absolute
// start/end instants and a caller-supplied "now".
type Session struct {
	ID                    string     `db:"id" json:"id"`
	SlotID                string     `db:"slot_id" json:"slot_id"`
	Date                  time.Time  `db:"date" json:"date"`
	StartAt               time.Time  `db:"start_at" json:"start_at"`
	EndAt                 time.Time  `db:"end_at" json:"end_at"`
	ClassID               string     `db:"class_id" json:"class_id"`
	ClassName             *string    `db:"class_name" json:"class_name,omitempty"`
	SubjectID             string     `db:"subject_id" json:"subject_id"`
	SubjectName           *string    `db:"subject_name" json:"subject_name,omitempty"`
	TeacherID             string     `db:"teacher_id" json:"teacher_id"`
	TeacherName           *string    `db:"teacher_name" json:"teacher_name,omitempty"`
	SubstituteTeacherID   *string    `db:"substitute_teacher_id" json:"substitute_teacher_id,omitempty"`
	SubstituteTeacherName *string    `db:"substitute_teacher_name" json:"substitute_teacher_name,omitempty"`
	SubstituteCheckedIn   bool       `db:"substitute_checked_in" json:"substitute_checked_in"`
	SubstituteCheckedInAt *time.Time `db:"substitute_checked_in_at" json:"substitute_checked_in_at,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// EvaluateStatus computes the lifecycle phase for the closed interval
// [start, end]. A zero-length or inverted window is immediately completed.
func EvaluateStatus(start, end, now time.Time) SessionStatus {
	if !end.After(start) {
		return SessionCompleted
	}
	if now.Before(start) {
		return SessionScheduled
	}
	if now.After(end) {
		return SessionCompleted
	}
	return SessionOngoing
}

// StatusAt derives the session's status at the given instant.
func (s *Session) StatusAt(now time.Time) SessionStatus {
	return EvaluateStatus(s.StartAt, s.EndAt, now)
}

// WarningAt reports whether the session is actively running with nobody
// covering it: ongoing, no substitute assigned, substitute not checked in.
func (s *Session) WarningAt(now time.Time) bool {
	return s.StatusAt(now) == SessionOngoing &&
		s.SubstituteTeacherID == nil &&
		!s.SubstituteCheckedIn
}

// Overlaps reports whether the session window intersects [start, end].
func (s *Session) Overlaps(start, end time.Time) bool {
	return !s.EndAt.Before(start) && !s.StartAt.After(end)
}

// AssignedTeacherIDs returns the teachers currently responsible for the
// session: the home teacher plus the substitute when one is set.
func (s *Session) AssignedTeacherIDs() []string {
	ids := []string{s.TeacherID}
	if s.SubstituteTeacherID != nil {
		ids = append(ids, *s.SubstituteTeacherID)
	}
	return ids
}

// SessionFilter scopes window queries.
type SessionFilter struct {
	From time.Time
	To   time.Time
}
