package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/service"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
	"github.com/uniplan/timetable-api/pkg/response"
)

// GroupHandler wires group management to HTTP routes.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler constructs a new GroupHandler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// List godoc
// @Summary List student groups
// @Tags Groups
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Get godoc
// @Summary Get a student group
// @Tags Groups
// @Security BearerAuth
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Create godoc
// @Summary Create a student group
// @Tags Groups
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	group, err := h.groups.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// Update godoc
// @Summary Update a student group
// @Tags Groups
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.UpdateGroupRequest true "Group payload"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [put]
func (h *GroupHandler) Update(c *gin.Context) {
	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	group, err := h.groups.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Delete godoc
// @Summary Delete a student group
// @Tags Groups
// @Security BearerAuth
// @Param id path string true "Group ID"
// @Success 204 "deleted"
// @Router /groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groups.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
