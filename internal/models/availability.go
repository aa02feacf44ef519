package models

import "time"

// AvailabilityState is the tri-state availability of a teacher on a date.
type AvailabilityState string

const (
	AvailabilityFree       AvailabilityState = "free"
	AvailabilityBusy       AvailabilityState = "busy"
	AvailabilityCheckedOut AvailabilityState = "checked_out"
)

// TeacherAvailability is a read-time projection, never persisted. Teachers
// with no check-in today do not appear at all.
type TeacherAvailability struct {
	TeacherID     string            `json:"teacher_id"`
	TeacherName   string            `json:"teacher_name"`
	State         AvailabilityState `json:"state"`
	CheckInAt     time.Time         `json:"check_in_at"`
	CheckOutAt    *time.Time        `json:"check_out_at,omitempty"`
	BusySessionID *string           `json:"busy_session_id,omitempty"`
}

// AvailabilityBoard partitions today's checked-in teachers. Every teacher
// with a check-in appears in exactly one bucket.
type AvailabilityBoard struct {
	Date       time.Time             `json:"date"`
	Free       []TeacherAvailability `json:"free"`
	Busy       []TeacherAvailability `json:"busy"`
	CheckedOut []TeacherAvailability `json:"checked_out"`
}
