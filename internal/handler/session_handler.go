package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hadirku/hadirku-api/internal/dto"
	"github.com/hadirku/hadirku-api/internal/models"
	appErrors "github.com/hadirku/hadirku-api/pkg/errors"
	"github.com/hadirku/hadirku-api/pkg/response"
)

type sessionService interface {
	Window(ctx context.Context, hours int) (*dto.SessionWindowResponse, error)
	ExpandDate(ctx context.Context, req dto.ExpandSessionsRequest) (int, error)
	DefaultLookaheadHours() int
}

type assignmentService interface {
	Assign(ctx context.Context, sessionID string, req dto.AssignSubstituteRequest) (*models.Session, error)
	SubstituteCheckIn(ctx context.Context, sessionID string, req dto.SubstituteCheckInRequest) (*models.Session, error)
}

// SessionHandler exposes the session board and the assignment command.
type SessionHandler struct {
	sessions    sessionService
	assignments assignmentService
}

// NewSessionHandler builds a new handler.
func NewSessionHandler(sessions sessionService, assignments assignmentService) *SessionHandler {
	return &SessionHandler{sessions: sessions, assignments: assignments}
}

// Window godoc
// @Summary List sessions in the lookahead window
// @Tags Sessions
// @Produce json
// @Param hours query int false "Lookahead hours (default 24, capped server-side)"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) Window(c *gin.Context) {
	hours := h.sessions.DefaultLookaheadHours()
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "hours must be an integer"))
			return
		}
		hours = parsed
	}

	window, err := h.sessions.Window(c.Request.Context(), hours)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, window)
}

// Expand godoc
// @Summary Materialise per-date session rows from recurring slots
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.ExpandSessionsRequest true "Expansion payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/expand [post]
func (h *SessionHandler) Expand(c *gin.Context) {
	var req dto.ExpandSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid expansion payload"))
		return
	}
	inserted, err := h.sessions.ExpandDate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"inserted": inserted})
}

// Assign godoc
// @Summary Assign a substitute teacher to a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.AssignSubstituteRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/substitute [post]
func (h *SessionHandler) Assign(c *gin.Context) {
	var req dto.AssignSubstituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	session, err := h.assignments.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// SubstituteCheckIn godoc
// @Summary Record the assigned substitute's presence on a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SubstituteCheckInRequest true "Check-in payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/substitute/check-in [post]
func (h *SessionHandler) SubstituteCheckIn(c *gin.Context) {
	var req dto.SubstituteCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check-in payload"))
		return
	}
	if err := requireSelfOrAdmin(c, req.TeacherID); err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.assignments.SubstituteCheckIn(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}
