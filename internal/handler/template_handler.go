package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/service"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
	"github.com/uniplan/timetable-api/pkg/response"
)

// TemplateHandler wires lesson template management to HTTP routes.
type TemplateHandler struct {
	templates *service.TemplateService
}

// NewTemplateHandler constructs a new TemplateHandler.
func NewTemplateHandler(templates *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// List godoc
// @Summary List lesson templates
// @Tags Templates
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, nil)
}

// Get godoc
// @Summary Get a lesson template
// @Tags Templates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /templates/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	template, err := h.templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}

// Create godoc
// @Summary Create a lesson template
// @Tags Templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Router /templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	template, err := h.templates.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, template)
}

// Update godoc
// @Summary Update a lesson template
// @Tags Templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param payload body dto.UpdateTemplateRequest true "Template payload"
// @Success 200 {object} response.Envelope
// @Router /templates/{id} [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	template, err := h.templates.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}

// Delete godoc
// @Summary Delete a lesson template
// @Tags Templates
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 204 "deleted"
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
