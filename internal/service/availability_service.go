package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hadirku/hadirku-api/internal/models"
	appErrors "github.com/hadirku/hadirku-api/pkg/errors"
)

type attendanceListReader interface {
	ListForDate(ctx context.Context, date time.Time) ([]models.TeacherAttendanceRecord, error)
}

type sessionDateReader interface {
	ListOnDate(ctx context.Context, date time.Time) ([]models.Session, error)
}

// AvailabilityService projects the tri-state availability board. It is a
// pure read-time projection recomputed on every request: busy and free flip
// continuously as sessions start and end, so nothing here may be cached.
type AvailabilityService struct {
	attendance attendanceListReader
	sessions   sessionDateReader
	logger     *zap.Logger

	now func() time.Time
}

// NewAvailabilityService creates the service.
func NewAvailabilityService(attendance attendanceListReader, sessions sessionDateReader, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		attendance: attendance,
		sessions:   sessions,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Board partitions every teacher checked in on the date into exactly one of
// {free, busy, checked_out}. Teachers with no check-in are not at school and
// do not appear at all. Checked-out wins over busy.
func (s *AvailabilityService) Board(ctx context.Context, date time.Time) (*models.AvailabilityBoard, error) {
	records, err := s.attendance.ListForDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	sessions, err := s.sessions.ListOnDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}

	now := s.now()
	busySession := make(map[string]string)
	for i := range sessions {
		session := &sessions[i]
		if session.StatusAt(now) != models.SessionOngoing {
			continue
		}
		for _, teacherID := range session.AssignedTeacherIDs() {
			if _, ok := busySession[teacherID]; !ok {
				busySession[teacherID] = session.ID
			}
		}
	}

	board := &models.AvailabilityBoard{
		Date:       date,
		Free:       []models.TeacherAvailability{},
		Busy:       []models.TeacherAvailability{},
		CheckedOut: []models.TeacherAvailability{},
	}
	for _, record := range records {
		entry := models.TeacherAvailability{
			TeacherID:   record.TeacherID,
			TeacherName: record.TeacherName,
			CheckInAt:   record.CheckInAt,
			CheckOutAt:  record.CheckOutAt,
		}
		switch {
		case record.CheckedOut():
			entry.State = models.AvailabilityCheckedOut
			board.CheckedOut = append(board.CheckedOut, entry)
		case busySession[record.TeacherID] != "":
			sessionID := busySession[record.TeacherID]
			entry.State = models.AvailabilityBusy
			entry.BusySessionID = &sessionID
			board.Busy = append(board.Busy, entry)
		default:
			entry.State = models.AvailabilityFree
			board.Free = append(board.Free, entry)
		}
	}
	return board, nil
}
