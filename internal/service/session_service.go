package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hadirku/hadirku-api/internal/dto"
	"github.com/hadirku/hadirku-api/internal/events"
	"github.com/hadirku/hadirku-api/internal/models"
	appErrors "github.com/hadirku/hadirku-api/pkg/errors"
)

type sessionRepository interface {
	ListWindow(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
	ListOnDate(ctx context.Context, date time.Time) ([]models.Session, error)
	CreateMany(ctx context.Context, sessions []models.Session) (int, error)
}

type scheduleSlotReader interface {
	ListByDay(ctx context.Context, dayOfWeek string) ([]models.ScheduleSlot, error)
}

// SessionService serves the session board: bounded lookahead snapshots with
// derived lifecycle status, plus expansion of recurring slots into per-date
// rows. Status is never stored; lifecycle events are published when a read
// or write path observes a transition, so no timer subsystem is needed.
type SessionService struct {
	sessions  sessionRepository
	schedules scheduleSlotReader
	publisher events.Publisher
	validator *validator.Validate
	logger    *zap.Logger

	defaultLookahead time.Duration
	maxLookahead     time.Duration

	mu       sync.Mutex
	observed map[string]sessionTrack

	now func() time.Time
}

// sessionTrack remembers the last derived status of a tracked session plus
// enough of the row to publish its completion after it leaves the window.
type sessionTrack struct {
	status  models.SessionStatus
	endAt   time.Time
	payload events.SessionPayload
}

// NewSessionService creates the service. Lookahead bounds are hours.
func NewSessionService(
	sessions sessionRepository,
	schedules scheduleSlotReader,
	publisher events.Publisher,
	defaultLookaheadHours, maxLookaheadHours int,
	validate *validator.Validate,
	logger *zap.Logger,
) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultLookaheadHours <= 0 {
		defaultLookaheadHours = 24
	}
	if maxLookaheadHours <= 0 || maxLookaheadHours > 168 {
		maxLookaheadHours = 168
	}
	return &SessionService{
		sessions:         sessions,
		schedules:        schedules,
		publisher:        publisher,
		validator:        validate,
		logger:           logger,
		defaultLookahead: time.Duration(defaultLookaheadHours) * time.Hour,
		maxLookahead:     time.Duration(maxLookaheadHours) * time.Hour,
		observed:         make(map[string]sessionTrack),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// DefaultLookaheadHours exposes the configured default for handlers.
func (s *SessionService) DefaultLookaheadHours() int {
	return int(s.defaultLookahead / time.Hour)
}

// Window returns the snapshot of sessions overlapping [now, now+hours],
// ordered by start time ascending. In-flight sessions stay on the board
// until they complete. Requests beyond the cap are clamped so a caller can
// never widen the window past the server-side bound.
func (s *SessionService) Window(ctx context.Context, hours int) (*dto.SessionWindowResponse, error) {
	if hours <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lookahead hours must be positive")
	}
	lookahead := time.Duration(hours) * time.Hour
	if lookahead > s.maxLookahead {
		lookahead = s.maxLookahead
	}

	now := s.now()
	filter := models.SessionFilter{From: now, To: now.Add(lookahead)}
	sessions, err := s.sessions.ListWindow(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list session window")
	}

	s.ObserveTransitions(sessions, now)

	snapshots := make([]dto.SessionSnapshot, 0, len(sessions))
	for _, session := range sessions {
		snapshots = append(snapshots, dto.NewSessionSnapshot(session, now))
	}

	return &dto.SessionWindowResponse{
		ServerTimeMs: now.UnixMilli(),
		WindowFrom:   filter.From,
		WindowTo:     filter.To,
		Sessions:     snapshots,
	}, nil
}

// ObserveTransitions publishes session:started / session:ended for every
// session whose derived status moved since this process last saw it.
// Completed sessions are dropped from the tracker: completion is terminal.
// A session exits the window feed the instant it completes, so tracked
// entries missing from the feed whose end instant has passed are published
// as ended and pruned on the same pass, keeping the tracker bounded.
func (s *SessionService) ObserveTransitions(sessions []models.Session, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	present := make(map[string]struct{}, len(sessions))
	for i := range sessions {
		session := &sessions[i]
		present[session.ID] = struct{}{}
		current := session.StatusAt(now)
		track, seen := s.observed[session.ID]
		if seen && track.status != current {
			s.publishTransition(sessionPayload(session, current), track.status, current)
		}
		if current == models.SessionCompleted {
			delete(s.observed, session.ID)
			continue
		}
		s.observed[session.ID] = sessionTrack{
			status:  current,
			endAt:   session.EndAt,
			payload: sessionPayload(session, current),
		}
	}

	for id, track := range s.observed {
		if _, inFeed := present[id]; inFeed {
			continue
		}
		if track.endAt.After(now) {
			continue
		}
		payload := track.payload
		payload.Status = string(models.SessionCompleted)
		s.publishTransition(payload, track.status, models.SessionCompleted)
		delete(s.observed, id)
	}
}

func sessionPayload(session *models.Session, status models.SessionStatus) events.SessionPayload {
	return events.SessionPayload{
		SessionID: session.ID,
		ClassID:   session.ClassID,
		SubjectID: session.SubjectID,
		Status:    string(status),
	}
}

func (s *SessionService) publishTransition(payload events.SessionPayload, from, to models.SessionStatus) {
	if s.publisher == nil {
		return
	}
	switch to {
	case models.SessionOngoing:
		s.publisher.Publish(events.Event{Name: events.SessionStarted, Payload: payload})
	case models.SessionCompleted:
		s.publisher.Publish(events.Event{Name: events.SessionEnded, Payload: payload})
	}
	s.logger.Debug("session transition",
		zap.String("session_id", payload.SessionID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
}

// ExpandDate materialises per-date session rows for every slot recurring on
// the date's weekday. Already-expanded slots are skipped by the storage
// layer, so re-running the command is harmless.
func (s *SessionService) ExpandDate(ctx context.Context, req dto.ExpandSessionsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expansion payload")
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid expansion date")
	}

	day := strings.ToUpper(date.Weekday().String())
	slots, err := s.schedules.ListByDay(ctx, day)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}
	if len(slots) == 0 {
		return 0, nil
	}

	sessions := make([]models.Session, 0, len(slots))
	for _, slot := range slots {
		startAt, err := resolveInstant(date, slot.StartTime)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("slot %s has malformed start time", slot.ID))
		}
		endAt, err := resolveInstant(date, slot.EndTime)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("slot %s has malformed end time", slot.ID))
		}
		sessions = append(sessions, models.Session{
			SlotID:    slot.ID,
			Date:      date,
			StartAt:   startAt,
			EndAt:     endAt,
			ClassID:   slot.ClassID,
			SubjectID: slot.SubjectID,
			TeacherID: slot.TeacherID,
		})
	}

	inserted, err := s.sessions.CreateMany(ctx, sessions)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expand sessions")
	}
	s.logger.Info("sessions expanded",
		zap.String("date", req.Date),
		zap.Int("slots", len(slots)),
		zap.Int("inserted", inserted),
	)
	return inserted, nil
}

// resolveInstant anchors an HH:MM time-of-day on the given date.
func resolveInstant(date time.Time, timeOfDay string) (time.Time, error) {
	parsed, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}
