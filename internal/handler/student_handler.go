package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geoattend/attendance-api/internal/models"
	"github.com/geoattend/attendance-api/pkg/response"
)

type studentService interface {
	Timetable(ctx context.Context, identity *models.Identity, date string) ([]models.TimetableEntry, error)
	Dashboard(ctx context.Context, identity *models.Identity, date string) (*models.StudentDashboard, error)
	Profile(ctx context.Context, identity *models.Identity) (*models.StudentProfile, error)
}

// StudentHandler serves the student portal.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// Timetable godoc
// @Summary Timetable for a date
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /student/timetable [get]
func (h *StudentHandler) Timetable(c *gin.Context) {
	entries, err := h.service.Timetable(c.Request.Context(), identityFromContext(c), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// Dashboard godoc
// @Summary Student dashboard
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /student/dashboard [get]
func (h *StudentHandler) Dashboard(c *gin.Context) {
	dash, err := h.service.Dashboard(c.Request.Context(), identityFromContext(c), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash)
}

// Profile godoc
// @Summary Student profile
// @Tags Student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /student/profile [get]
func (h *StudentHandler) Profile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), identityFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}
