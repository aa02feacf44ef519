package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadirku/hadirku-api/internal/dto"
	"github.com/hadirku/hadirku-api/internal/middleware"
	"github.com/hadirku/hadirku-api/internal/models"
	appErrors "github.com/hadirku/hadirku-api/pkg/errors"
)

type sessionServiceMock struct {
	window     *dto.SessionWindowResponse
	lastHours  int
	expandErr  error
}

func (m *sessionServiceMock) Window(ctx context.Context, hours int) (*dto.SessionWindowResponse, error) {
	m.lastHours = hours
	if hours <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lookahead hours must be positive")
	}
	return m.window, nil
}

func (m *sessionServiceMock) ExpandDate(ctx context.Context, req dto.ExpandSessionsRequest) (int, error) {
	return 3, m.expandErr
}

func (m *sessionServiceMock) DefaultLookaheadHours() int { return 24 }

type assignmentServiceMock struct {
	err error
}

func (m *assignmentServiceMock) Assign(ctx context.Context, sessionID string, req dto.AssignSubstituteRequest) (*models.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Session{ID: sessionID, SubstituteTeacherID: &req.TeacherID}, nil
}

func (m *assignmentServiceMock) SubstituteCheckIn(ctx context.Context, sessionID string, req dto.SubstituteCheckInRequest) (*models.Session, error) {
	return &models.Session{ID: sessionID, SubstituteCheckedIn: true}, nil
}

func newTestContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestSessionHandlerWindowDefaultsHours(t *testing.T) {
	svc := &sessionServiceMock{window: &dto.SessionWindowResponse{}}
	h := NewSessionHandler(svc, &assignmentServiceMock{})

	c, w := newTestContext(t, http.MethodGet, "/sessions", "")
	h.Window(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 24, svc.lastHours)
}

func TestSessionHandlerWindowRejectsMalformedHours(t *testing.T) {
	h := NewSessionHandler(&sessionServiceMock{}, &assignmentServiceMock{})

	c, w := newTestContext(t, http.MethodGet, "/sessions?hours=abc", "")
	h.Window(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(t, http.MethodGet, "/sessions?hours=-3", "")
	h.Window(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerAssignConflict(t *testing.T) {
	h := NewSessionHandler(&sessionServiceMock{}, &assignmentServiceMock{
		err: appErrors.Clone(appErrors.ErrConflict, "session already has a substitute"),
	})

	c, w := newTestContext(t, http.MethodPost, "/sessions/session-42/substitute", `{"teacher_id":"teacher-9"}`)
	c.Params = gin.Params{{Key: "id", Value: "session-42"}}
	h.Assign(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

func TestSessionHandlerAssign(t *testing.T) {
	h := NewSessionHandler(&sessionServiceMock{}, &assignmentServiceMock{})

	c, w := newTestContext(t, http.MethodPost, "/sessions/session-42/substitute", `{"teacher_id":"teacher-7"}`)
	c.Params = gin.Params{{Key: "id", Value: "session-42"}}
	h.Assign(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "teacher-7")
}

func TestSessionHandlerSubstituteCheckInForbiddenForOtherTeacher(t *testing.T) {
	h := NewSessionHandler(&sessionServiceMock{}, &assignmentServiceMock{})

	c, w := newTestContext(t, http.MethodPost, "/sessions/session-42/substitute/check-in", `{"teacher_id":"teacher-9"}`)
	c.Params = gin.Params{{Key: "id", Value: "session-42"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-7", Role: models.RoleTeacher})
	h.SubstituteCheckIn(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionHandlerSubstituteCheckInSelf(t *testing.T) {
	h := NewSessionHandler(&sessionServiceMock{}, &assignmentServiceMock{})

	c, w := newTestContext(t, http.MethodPost, "/sessions/session-42/substitute/check-in", `{"teacher_id":"teacher-7"}`)
	c.Params = gin.Params{{Key: "id", Value: "session-42"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-7", Role: models.RoleTeacher})
	h.SubstituteCheckIn(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionHandlerExpandRejectsBadPayload(t *testing.T) {
	h := NewSessionHandler(&sessionServiceMock{}, &assignmentServiceMock{})

	c, w := newTestContext(t, http.MethodPost, "/sessions/expand", `{`)
	h.Expand(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
