package models

import "time"

// TeacherAttendance is one regular (daily) attendance row per teacher per
// date. Presence at school is a precondition distinct from being inside a
// specific teaching session.
type TeacherAttendance struct {
	ID         string     `db:"id" json:"id"`
	TeacherID  string     `db:"teacher_id" json:"teacher_id"`
	Date       time.Time  `db:"date" json:"date"`
	CheckInAt  time.Time  `db:"check_in_at" json:"check_in_at"`
	CheckOutAt *time.Time `db:"check_out_at" json:"check_out_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// CheckedOut reports whether the teacher has ended their day.
func (a *TeacherAttendance) CheckedOut() bool {
	return a != nil && a.CheckOutAt != nil
}

// TeacherAttendanceRecord extends the row with teacher metadata for listings.
type TeacherAttendanceRecord struct {
	TeacherAttendance
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}
