package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/geoattend/attendance-api/internal/models"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
	"github.com/geoattend/attendance-api/pkg/response"
)

type attendanceService interface {
	Mark(ctx context.Context, identity *models.Identity, req models.MarkAttendanceRequest) (*models.MarkResult, error)
	Status(ctx context.Context, identity *models.Identity, lessonID int64, date string) (*models.AttendanceStatusResponse, error)
	History(ctx context.Context, identity *models.Identity) ([]models.AttendanceHistoryRow, error)
}

// AttendanceHandler serves student attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark attendance
// @Description Mark the caller present (within the lesson, at the location) or absent (after the lesson)
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.MarkAttendanceRequest true "Mark payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /student/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req models.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid attendance payload"))
		return
	}

	result, err := h.service.Mark(c.Request.Context(), identityFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, response.Envelope{Success: true, Message: result.Message, Data: result})
}

// Status godoc
// @Summary Attendance status
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param lesson_id query int true "Lesson ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /student/attendance/status [get]
func (h *AttendanceHandler) Status(c *gin.Context) {
	lessonID, err := strconv.ParseInt(c.Query("lesson_id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, "lesson_id must be a positive integer"))
		return
	}

	status, err := h.service.Status(c.Request.Context(), identityFromContext(c), lessonID, c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// History godoc
// @Summary Attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /student/attendance/history [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	rows, err := h.service.History(c.Request.Context(), identityFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}
