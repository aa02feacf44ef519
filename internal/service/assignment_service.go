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

type assignmentSessionRepo interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	ListOnDate(ctx context.Context, date time.Time) ([]models.Session, error)
	AssignSubstitute(ctx context.Context, sessionID, teacherID string) (bool, error)
	MarkSubstituteCheckedIn(ctx context.Context, sessionID, teacherID string) (bool, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type attendanceDateReader interface {
	FindForDate(ctx context.Context, teacherID string, date time.Time) (*models.TeacherAttendance, error)
}

// AssignmentService is the only mutator of session assignment state. The
// commit is a storage-level conditional update, so two concurrent attempts
// on the same session cannot both win regardless of what the preconditions
// observed; the loser gets a conflict and must refetch.
type AssignmentService struct {
	sessions   assignmentSessionRepo
	teachers   teacherReader
	attendance attendanceDateReader
	publisher  events.Publisher
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger

	now func() time.Time
}

// NewAssignmentService creates the service.
func NewAssignmentService(
	sessions assignmentSessionRepo,
	teachers teacherReader,
	attendance attendanceDateReader,
	publisher events.Publisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		sessions:   sessions,
		teachers:   teachers,
		attendance: attendance,
		publisher:  publisher,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Assign sets teacher as the substitute for the session. Assign-once: a
// session that already has a substitute is never overwritten.
func (s *AssignmentService) Assign(ctx context.Context, sessionID string, req dto.AssignSubstituteRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.SubstituteTeacherID != nil {
		return nil, s.reject(appErrors.Clone(appErrors.ErrConflict, "session already has a substitute"), "conflict")
	}

	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Active {
		return nil, s.reject(appErrors.Clone(appErrors.ErrTeacherUnavailable, "teacher is not active"), "unavailable")
	}

	if err := s.ensureTeacherAvailable(ctx, session, teacher.ID); err != nil {
		return nil, err
	}

	assigned, err := s.sessions.AssignSubstitute(ctx, sessionID, teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit assignment")
	}
	if !assigned {
		// Another writer won between the precondition read and the commit.
		return nil, s.reject(appErrors.Clone(appErrors.ErrConflict, "session already has a substitute"), "conflict")
	}

	session.SubstituteTeacherID = &teacher.ID
	session.SubstituteTeacherName = &teacher.FullName

	if s.metrics != nil {
		s.metrics.RecordAssignment("assigned")
	}
	if s.publisher != nil {
		s.publisher.Publish(events.Event{
			Name: events.SubstituteAssigned,
			Payload: events.AssignmentPayload{
				SessionID:   session.ID,
				TeacherID:   teacher.ID,
				TeacherName: teacher.FullName,
			},
		})
	}
	s.logger.Info("substitute assigned",
		zap.String("session_id", session.ID),
		zap.String("teacher_id", teacher.ID),
	)
	return session, nil
}

// ensureTeacherAvailable rejects teachers who are not at school, already
// done for the day, or covering another session that collides with this one.
// The attendance gate applies only to same-day sessions; a session on a
// future date cannot demand a check-in that has not happened yet.
func (s *AssignmentService) ensureTeacherAvailable(ctx context.Context, session *models.Session, teacherID string) error {
	if sameDay(session.Date, s.now()) {
		attendance, err := s.attendance.FindForDate(ctx, teacherID, session.Date)
		if err != nil {
			if err == sql.ErrNoRows {
				return s.reject(appErrors.Clone(appErrors.ErrTeacherUnavailable, "teacher has not checked in today"), "unavailable")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
		if attendance.CheckedOut() {
			return s.reject(appErrors.Clone(appErrors.ErrTeacherUnavailable, "teacher already checked out"), "unavailable")
		}
	}

	others, err := s.sessions.ListOnDate(ctx, session.Date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	now := s.now()
	for i := range others {
		other := &others[i]
		if other.ID == session.ID {
			continue
		}
		if !teacherIn(other.AssignedTeacherIDs(), teacherID) {
			continue
		}
		if other.StatusAt(now) == models.SessionOngoing || other.Overlaps(session.StartAt, session.EndAt) {
			return s.reject(appErrors.Clone(appErrors.ErrTeacherUnavailable, "teacher is busy in another session"), "unavailable")
		}
	}
	return nil
}

// SubstituteCheckIn marks the assigned substitute present on the session.
func (s *AssignmentService) SubstituteCheckIn(ctx context.Context, sessionID string, req dto.SubstituteCheckInRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.SubstituteTeacherID == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "session has no substitute assigned")
	}
	if *session.SubstituteTeacherID != req.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher is not the assigned substitute")
	}

	marked, err := s.sessions.MarkSubstituteCheckedIn(ctx, sessionID, req.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record substitute check-in")
	}
	if !marked {
		return nil, appErrors.Clone(appErrors.ErrConflict, "substitute already checked in")
	}

	session.SubstituteCheckedIn = true
	now := s.now()
	session.SubstituteCheckedInAt = &now
	return session, nil
}

func (s *AssignmentService) reject(err *appErrors.Error, result string) error {
	if s.metrics != nil {
		s.metrics.RecordAssignment(result)
	}
	return err
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func teacherIn(ids []string, teacherID string) bool {
	for _, id := range ids {
		if id == teacherID {
			return true
		}
	}
	return false
}
