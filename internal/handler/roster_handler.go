package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/service"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
	"github.com/uniplan/timetable-api/pkg/response"
)

// RosterHandler wires teacher and student roster reads to HTTP routes.
type RosterHandler struct {
	roster *service.RosterService
}

// NewRosterHandler constructs a new RosterHandler.
func NewRosterHandler(roster *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// ListTeachers godoc
// @Summary List the teaching roster
// @Tags Roster
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *RosterHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.roster.ListTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// ListStudents godoc
// @Summary List student records
// @Tags Roster
// @Security BearerAuth
// @Produce json
// @Param groupId query string false "Filter by group"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *RosterHandler) ListStudents(c *gin.Context) {
	students, err := h.roster.ListStudents(c.Request.Context(), strings.TrimSpace(c.Query("groupId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// ReassignStudent godoc
// @Summary Move a student to another group
// @Tags Roster
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.ReassignStudentRequest true "Target group"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *RosterHandler) ReassignStudent(c *gin.Context) {
	var req dto.ReassignStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	student, err := h.roster.ReassignStudent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
