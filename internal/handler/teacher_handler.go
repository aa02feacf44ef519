package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hadirku/hadirku-api/internal/models"
	appErrors "github.com/hadirku/hadirku-api/pkg/errors"
	"github.com/hadirku/hadirku-api/pkg/response"
)

type availabilityService interface {
	Board(ctx context.Context, date time.Time) (*models.AvailabilityBoard, error)
}

type teacherLister interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

// TeacherHandler exposes the roster and the availability board.
type TeacherHandler struct {
	teachers     teacherLister
	availability availabilityService
}

// NewTeacherHandler builds a new handler.
func NewTeacherHandler(teachers teacherLister, availability availabilityService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, availability: availability}
}

// List godoc
// @Summary List the active teacher roster
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.teachers.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers"))
		return
	}
	response.JSON(c, http.StatusOK, teachers)
}

// Availability godoc
// @Summary Partition today's teachers into free, busy and checked-out
// @Tags Teachers
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /teachers/availability [get]
func (h *TeacherHandler) Availability(c *gin.Context) {
	now := time.Now().UTC()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid date"))
			return
		}
		date = parsed
	}

	board, err := h.availability.Board(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board)
}
