package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hadirku/hadirku-api/internal/dto"
	"github.com/hadirku/hadirku-api/internal/models"
	appErrors "github.com/hadirku/hadirku-api/pkg/errors"
	"github.com/hadirku/hadirku-api/pkg/response"
)

type attendanceService interface {
	CheckIn(ctx context.Context, req dto.CheckInRequest) (*models.TeacherAttendance, error)
	CheckOut(ctx context.Context, req dto.CheckOutRequest) (*models.TeacherAttendance, error)
}

// AttendanceHandler exposes daily check-in/out commands.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler builds a new handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// CheckIn godoc
// @Summary Record a teacher's daily check-in
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.CheckInRequest true "Check-in payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check-in payload"))
		return
	}
	if err := requireSelfOrAdmin(c, req.TeacherID); err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.service.CheckIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// CheckOut godoc
// @Summary Record a teacher's daily check-out
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.CheckOutRequest true "Check-out payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req dto.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid check-out payload"))
		return
	}
	if err := requireSelfOrAdmin(c, req.TeacherID); err != nil {
		response.Error(c, err)
		return
	}
	record, err := h.service.CheckOut(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}
