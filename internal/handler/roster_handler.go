package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geoattend/attendance-api/internal/models"
	"github.com/geoattend/attendance-api/pkg/response"
)

type rosterService interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, req models.CreateGroupRequest) (*models.Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	GroupStudents(ctx context.Context, groupID int64) ([]models.Student, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
	CreateStudent(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	CreateTeacher(ctx context.Context, req models.CreateTeacherRequest) (*models.Teacher, error)
	DeleteTeacher(ctx context.Context, id int64) error
	ListLocations(ctx context.Context) ([]models.Location, error)
	CreateLocation(ctx context.Context, req models.CreateLocationRequest) (*models.Location, error)
	DeleteLocation(ctx context.Context, id int64) error
	ListSubjects(ctx context.Context) ([]models.Subject, error)
}

// RosterHandler serves admin management of groups, students, teachers,
// locations and subjects.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(svc rosterService) *RosterHandler {
	return &RosterHandler{service: svc}
}

func list[T any](c *gin.Context, fetch func(context.Context) ([]T, error)) {
	items, err := fetch(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

func create[Req any, T any](c *gin.Context, store func(context.Context, Req) (*T, error)) {
	var req Req
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	item, err := store(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

func remove(c *gin.Context, del func(context.Context, int64) error) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListGroups godoc
// @Summary List groups
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/groups [get]
func (h *RosterHandler) ListGroups(c *gin.Context) { list(c, h.service.ListGroups) }

// CreateGroup godoc
// @Summary Create group
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateGroupRequest true "Group"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/groups [post]
func (h *RosterHandler) CreateGroup(c *gin.Context) { create(c, h.service.CreateGroup) }

// DeleteGroup godoc
// @Summary Delete group
// @Tags Admin
// @Param id path int true "Group ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /admin/groups/{id} [delete]
func (h *RosterHandler) DeleteGroup(c *gin.Context) { remove(c, h.service.DeleteGroup) }

// GroupStudents godoc
// @Summary Students of a group
// @Tags Admin
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /admin/groups/{id}/students [get]
func (h *RosterHandler) GroupStudents(c *gin.Context) {
	groupID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	list(c, func(ctx context.Context) ([]models.Student, error) {
		return h.service.GroupStudents(ctx, groupID)
	})
}

// ListStudents godoc
// @Summary List students
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) { list(c, h.service.ListStudents) }

// CreateStudent godoc
// @Summary Create student
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateStudentRequest true "Student"
// @Success 201 {object} response.Envelope
// @Router /admin/students [post]
func (h *RosterHandler) CreateStudent(c *gin.Context) { create(c, h.service.CreateStudent) }

// DeleteStudent godoc
// @Summary Delete student
// @Tags Admin
// @Param id path int true "Student ID"
// @Success 204
// @Router /admin/students/{id} [delete]
func (h *RosterHandler) DeleteStudent(c *gin.Context) { remove(c, h.service.DeleteStudent) }

// ListTeachers godoc
// @Summary List teachers
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/teachers [get]
func (h *RosterHandler) ListTeachers(c *gin.Context) { list(c, h.service.ListTeachers) }

// CreateTeacher godoc
// @Summary Create teacher
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateTeacherRequest true "Teacher"
// @Success 201 {object} response.Envelope
// @Router /admin/teachers [post]
func (h *RosterHandler) CreateTeacher(c *gin.Context) { create(c, h.service.CreateTeacher) }

// DeleteTeacher godoc
// @Summary Delete teacher
// @Tags Admin
// @Param id path int true "Teacher ID"
// @Success 204
// @Router /admin/teachers/{id} [delete]
func (h *RosterHandler) DeleteTeacher(c *gin.Context) { remove(c, h.service.DeleteTeacher) }

// ListLocations godoc
// @Summary List locations
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/locations [get]
func (h *RosterHandler) ListLocations(c *gin.Context) { list(c, h.service.ListLocations) }

// CreateLocation godoc
// @Summary Create location
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateLocationRequest true "Location"
// @Success 201 {object} response.Envelope
// @Router /admin/locations [post]
func (h *RosterHandler) CreateLocation(c *gin.Context) { create(c, h.service.CreateLocation) }

// DeleteLocation godoc
// @Summary Delete location
// @Tags Admin
// @Param id path int true "Location ID"
// @Success 204
// @Router /admin/locations/{id} [delete]
func (h *RosterHandler) DeleteLocation(c *gin.Context) { remove(c, h.service.DeleteLocation) }

// ListSubjects godoc
// @Summary List subjects
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/subjects [get]
func (h *RosterHandler) ListSubjects(c *gin.Context) { list(c, h.service.ListSubjects) }
