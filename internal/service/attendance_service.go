package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hadirku/hadirku-api/internal/dto"
	"github.com/hadirku/hadirku-api/internal/events"
	"github.com/hadirku/hadirku-api/internal/models"
	appErrors "github.com/hadirku/hadirku-api/pkg/errors"
)

type attendanceRepository interface {
	CheckIn(ctx context.Context, teacherID string, date, at time.Time) (*models.TeacherAttendance, bool, error)
	CheckOut(ctx context.Context, teacherID string, date, at time.Time) (bool, error)
	FindForDate(ctx context.Context, teacherID string, date time.Time) (*models.TeacherAttendance, error)
}

// AttendanceService records regular daily check-in/out. Every state change
// is broadcast because presence flips availability for everyone watching
// the assignment board.
type AttendanceService struct {
	attendance attendanceRepository
	teachers   teacherReader
	publisher  events.Publisher
	validator  *validator.Validate
	logger     *zap.Logger

	now func() time.Time
}

// NewAttendanceService creates the service.
func NewAttendanceService(
	attendance attendanceRepository,
	teachers teacherReader,
	publisher events.Publisher,
	validate *validator.Validate,
	logger *zap.Logger,
) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance: attendance,
		teachers:   teachers,
		publisher:  publisher,
		validator:  validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CheckIn records arrival for the day. Re-checking in is harmless and keeps
// the original timestamp; the event only fires for the first check-in.
func (s *AttendanceService) CheckIn(ctx context.Context, req dto.CheckInRequest) (*models.TeacherAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	now := s.now()
	date := dateOf(now)
	record, created, err := s.attendance.CheckIn(ctx, req.TeacherID, date, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-in")
	}
	if created && s.publisher != nil {
		s.publisher.Publish(events.Event{
			Name:    events.TeacherCheckin,
			Payload: events.TeacherPayload{TeacherID: req.TeacherID, Date: date},
		})
	}
	return record, nil
}

// CheckOut ends the teacher's day. Checking out twice is a conflict; the
// teacher stays checked-out either way.
func (s *AttendanceService) CheckOut(ctx context.Context, req dto.CheckOutRequest) (*models.TeacherAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-out payload")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	now := s.now()
	date := dateOf(now)
	done, err := s.attendance.CheckOut(ctx, req.TeacherID, date, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-out")
	}
	if !done {
		record, err := s.attendance.FindForDate(ctx, req.TeacherID, date)
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher has not checked in today")
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
		if record.CheckedOut() {
			return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already checked out")
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "check-out could not be recorded")
	}

	if s.publisher != nil {
		s.publisher.Publish(events.Event{
			Name:    events.TeacherCheckout,
			Payload: events.TeacherPayload{TeacherID: req.TeacherID, Date: date},
		})
	}

	record, err := s.attendance.FindForDate(ctx, req.TeacherID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return record, nil
}

// dateOf truncates an instant to its calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
