package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/service"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
	"github.com/uniplan/timetable-api/pkg/response"
)

type cacheObserver interface {
	RecordCacheOperation(hit bool)
}

// ScheduleHandler wires schedule reads, generation and export to HTTP routes.
type ScheduleHandler struct {
	schedule  *service.ScheduleService
	generator *service.ScheduleGeneratorService
	exporter  *service.ExportService
	metrics   cacheObserver
}

// NewScheduleHandler constructs a new ScheduleHandler.
func NewScheduleHandler(schedule *service.ScheduleService, generator *service.ScheduleGeneratorService, exporter *service.ExportService, metrics cacheObserver) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule, generator: generator, exporter: exporter, metrics: metrics}
}

// List godoc
// @Summary Read the composed weekly schedule
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param groupId query string false "Filter by group"
// @Param teacherId query string false "Filter by teacher"
// @Param startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	query := dto.ScheduleQuery{
		GroupID:   strings.TrimSpace(c.Query("groupId")),
		TeacherID: strings.TrimSpace(c.Query("teacherId")),
		StartDate: strings.TrimSpace(c.Query("startDate")),
		EndDate:   strings.TrimSpace(c.Query("endDate")),
	}

	lessons, cached, err := h.schedule.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCacheOperation(cached)
	}

	response.JSON(c, http.StatusOK, lessons, nil, map[string]interface{}{"cached": cached})
}

// Generate godoc
// @Summary Rebuild the weekly schedule from lesson templates
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "generation already in progress"
// @Router /schedule/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListRuns godoc
// @Summary List generation run history
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedule/runs [get]
func (h *ScheduleHandler) ListRuns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	runs, pagination, err := h.generator.ListRuns(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, pagination)
}

// GetRun godoc
// @Summary Get one generation run
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/runs/{id} [get]
func (h *ScheduleHandler) GetRun(c *gin.Context) {
	run, err := h.generator.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// Export godoc
// @Summary Export the schedule as CSV or PDF
// @Tags Schedule
// @Security BearerAuth
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format (csv/pdf), defaults to csv"
// @Param groupId query string false "Filter by group"
// @Param teacherId query string false "Filter by teacher"
// @Success 200 {file} file "rendered schedule"
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	query := dto.ExportScheduleQuery{
		ScheduleQuery: dto.ScheduleQuery{
			GroupID:   strings.TrimSpace(c.Query("groupId")),
			TeacherID: strings.TrimSpace(c.Query("teacherId")),
			StartDate: strings.TrimSpace(c.Query("startDate")),
			EndDate:   strings.TrimSpace(c.Query("endDate")),
		},
		Format: strings.TrimSpace(c.Query("format")),
	}

	result, err := h.exporter.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
