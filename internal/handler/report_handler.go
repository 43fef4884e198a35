package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geoattend/attendance-api/internal/middleware"
	"github.com/geoattend/attendance-api/internal/models"
	"github.com/geoattend/attendance-api/internal/service"
	"github.com/geoattend/attendance-api/pkg/response"
)

type reportService interface {
	Build(ctx context.Context, req models.ReportRequest) ([]models.SessionRow, bool, error)
	Export(ctx context.Context, req models.ReportRequest, format string) (*service.ReportFile, error)
	SubjectsByGroup(ctx context.Context, groupID int64) ([]string, error)
}

// ReportHandler exposes attendance reports.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Attendance godoc
// @Summary Attendance report
// @Description One row per lesson occurrence with every student of the group
// @Tags Reports
// @Produce json
// @Param group_id query int true "Group ID"
// @Param start_date query string false "From (YYYY-MM-DD)"
// @Param end_date query string false "To (YYYY-MM-DD)"
// @Param subject query string false "Subject name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid report filter"))
		return
	}

	rows, hit, err := h.reports.Build(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, rows, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export attendance report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param group_id query int true "Group ID"
// @Param start_date query string false "From (YYYY-MM-DD)"
// @Param end_date query string false "To (YYYY-MM-DD)"
// @Param subject query string false "Subject name"
// @Param format query string false "csv (default), pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/reports/attendance/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid report filter"))
		return
	}

	file, err := h.reports.Export(c.Request.Context(), req, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Subjects godoc
// @Summary Subjects taught to a group
// @Tags Reports
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /admin/groups/{id}/subjects [get]
func (h *ReportHandler) Subjects(c *gin.Context) {
	groupID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	names, err := h.reports.SubjectsByGroup(c.Request.Context(), groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, names)
}
