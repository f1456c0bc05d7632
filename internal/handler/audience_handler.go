package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/service"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
	"github.com/uniplan/timetable-api/pkg/response"
)

// AudienceHandler wires room management to HTTP routes.
type AudienceHandler struct {
	audiences *service.AudienceService
}

// NewAudienceHandler constructs a new AudienceHandler.
func NewAudienceHandler(audiences *service.AudienceService) *AudienceHandler {
	return &AudienceHandler{audiences: audiences}
}

// List godoc
// @Summary List audiences
// @Tags Audiences
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /audiences [get]
func (h *AudienceHandler) List(c *gin.Context) {
	audiences, err := h.audiences.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, audiences, nil)
}

// Get godoc
// @Summary Get an audience
// @Tags Audiences
// @Security BearerAuth
// @Produce json
// @Param id path string true "Audience ID"
// @Success 200 {object} response.Envelope
// @Router /audiences/{id} [get]
func (h *AudienceHandler) Get(c *gin.Context) {
	audience, err := h.audiences.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, audience, nil)
}

// Create godoc
// @Summary Create an audience
// @Tags Audiences
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateAudienceRequest true "Audience payload"
// @Success 201 {object} response.Envelope
// @Router /audiences [post]
func (h *AudienceHandler) Create(c *gin.Context) {
	var req dto.CreateAudienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	audience, err := h.audiences.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, audience)
}

// Update godoc
// @Summary Update an audience
// @Tags Audiences
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Audience ID"
// @Param payload body dto.UpdateAudienceRequest true "Audience payload"
// @Success 200 {object} response.Envelope
// @Router /audiences/{id} [put]
func (h *AudienceHandler) Update(c *gin.Context) {
	var req dto.UpdateAudienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	audience, err := h.audiences.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, audience, nil)
}

// Delete godoc
// @Summary Delete an audience
// @Tags Audiences
// @Security BearerAuth
// @Param id path string true "Audience ID"
// @Success 204 "deleted"
// @Router /audiences/{id} [delete]
func (h *AudienceHandler) Delete(c *gin.Context) {
	if err := h.audiences.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
