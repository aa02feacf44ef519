package dto

// CheckInRequest records a teacher's arrival for the day. Geofence and QR
// verification happen upstream; by the time this payload arrives the scan
// has already been validated.
type CheckInRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
}

// CheckOutRequest ends a teacher's day.
type CheckOutRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
}

// SubstituteCheckInRequest marks the assigned substitute present on a session.
type SubstituteCheckInRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
}
