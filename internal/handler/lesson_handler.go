package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/service"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
	"github.com/uniplan/timetable-api/pkg/response"
)

// LessonHandler wires manual lesson edits to HTTP routes.
type LessonHandler struct {
	lessons *service.LessonService
}

// NewLessonHandler constructs a new LessonHandler.
func NewLessonHandler(lessons *service.LessonService) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

// Get godoc
// @Summary Get a lesson
// @Tags Lessons
// @Security BearerAuth
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	lesson, err := h.lessons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Create godoc
// @Summary Place a lesson manually
// @Tags Lessons
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	lesson, err := h.lessons.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// Update godoc
// @Summary Update a lesson
// @Tags Lessons
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body dto.UpdateLessonRequest true "Lesson payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [put]
func (h *LessonHandler) Update(c *gin.Context) {
	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	lesson, err := h.lessons.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Delete godoc
// @Summary Delete a lesson
// @Tags Lessons
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Success 204 "deleted"
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	if err := h.lessons.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
