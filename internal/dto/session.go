package dto

import (
	"time"

	"github.com/hadirku/hadirku-api/internal/models"
)

// SessionSnapshot is the client-facing view of one session, enriched with
// the derived lifecycle status and warning flag. Absolute instants are
// duplicated as epoch millis so clients can recompute countdowns locally
// against server_time_ms instead of trusting their own wall clock.
type SessionSnapshot struct {
	ID                    string               `json:"id"`
	SlotID                string               `json:"slot_id"`
	Date                  time.Time            `json:"date"`
	StartAt               time.Time            `json:"start_at"`
	EndAt                 time.Time            `json:"end_at"`
	StartAtMs             int64                `json:"start_at_ms"`
	EndAtMs               int64                `json:"end_at_ms"`
	ClassID               string               `json:"class_id"`
	ClassName             *string              `json:"class_name,omitempty"`
	SubjectID             string               `json:"subject_id"`
	SubjectName           *string              `json:"subject_name,omitempty"`
	TeacherID             string               `json:"teacher_id"`
	TeacherName           *string              `json:"teacher_name,omitempty"`
	SubstituteTeacherID   *string              `json:"substitute_teacher_id,omitempty"`
	SubstituteTeacherName *string              `json:"substitute_teacher_name,omitempty"`
	SubstituteCheckedIn   bool                 `json:"substitute_checked_in"`
	Status                models.SessionStatus `json:"status"`
	Warning               bool                 `json:"warning"`
}

// NewSessionSnapshot derives the snapshot for one session at the given instant.
func NewSessionSnapshot(s models.Session, now time.Time) SessionSnapshot {
	return SessionSnapshot{
		ID:                    s.ID,
		SlotID:                s.SlotID,
		Date:                  s.Date,
		StartAt:               s.StartAt,
		EndAt:                 s.EndAt,
		StartAtMs:             s.StartAt.UnixMilli(),
		EndAtMs:               s.EndAt.UnixMilli(),
		ClassID:               s.ClassID,
		ClassName:             s.ClassName,
		SubjectID:             s.SubjectID,
		SubjectName:           s.SubjectName,
		TeacherID:             s.TeacherID,
		TeacherName:           s.TeacherName,
		SubstituteTeacherID:   s.SubstituteTeacherID,
		SubstituteTeacherName: s.SubstituteTeacherName,
		SubstituteCheckedIn:   s.SubstituteCheckedIn,
		Status:                s.StatusAt(now),
		Warning:               s.WarningAt(now),
	}
}

// SessionWindowResponse is the full board snapshot for [now, now+H].
type SessionWindowResponse struct {
	ServerTimeMs int64             `json:"server_time_ms"`
	WindowFrom   time.Time         `json:"window_from"`
	WindowTo     time.Time         `json:"window_to"`
	Sessions     []SessionSnapshot `json:"sessions"`
}

// AssignSubstituteRequest is the assignment command payload.
type AssignSubstituteRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
}

// ExpandSessionsRequest asks for per-date session rows to be materialised.
type ExpandSessionsRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}
