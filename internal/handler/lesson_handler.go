package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/geoattend/attendance-api/internal/models"
)

type lessonService interface {
	List(ctx context.Context) ([]models.LessonSchedule, error)
	Create(ctx context.Context, req models.CreateLessonRequest) (*models.Lesson, error)
	Delete(ctx context.Context, id int64) error
}

// LessonHandler serves admin lesson management.
type LessonHandler struct {
	service lessonService
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(svc lessonService) *LessonHandler {
	return &LessonHandler{service: svc}
}

// List godoc
// @Summary List lessons
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/lessons [get]
func (h *LessonHandler) List(c *gin.Context) { list(c, h.service.List) }

// Create godoc
// @Summary Create lesson
// @Description Weekly lesson; start_date <= end_date and start_time < end_time
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateLessonRequest true "Lesson"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/lessons [post]
func (h *LessonHandler) Create(c *gin.Context) { create(c, h.service.Create) }

// Delete godoc
// @Summary Delete lesson
// @Description Removes the lesson and its attendance
// @Tags Admin
// @Param id path int true "Lesson ID"
// @Success 204
// @Router /admin/lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) { remove(c, h.service.Delete) }
