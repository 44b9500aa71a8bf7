package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BigPoppaG/CourseMe/internal/model"
	"github.com/BigPoppaG/CourseMe/internal/response"
	"github.com/BigPoppaG/CourseMe/internal/service"
	"github.com/BigPoppaG/CourseMe/internal/validator"
)

// ModuleHandler handles the lecture module endpoints.
type ModuleHandler struct {
	moduleService *service.ModuleService
	userService   *service.UserService
}

// NewModuleHandler creates a new ModuleHandler.
func NewModuleHandler(moduleService *service.ModuleService, userService *service.UserService) *ModuleHandler {
	return &ModuleHandler{
		moduleService: moduleService,
		userService:   userService,
	}
}

// Catalogue godoc
// GET /api/v1/modules
// Lists all modules for the home page, served from the cache when warm.
func (h *ModuleHandler) Catalogue(c *gin.Context) {
	modules, err := h.moduleService.Catalogue(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"modules": modules})
}

// View godoc
// GET /api/v1/modules/:id
// Returns a module with the viewer's engagement record, creating the record
// on first contact and queueing a view event.
func (h *ModuleHandler) View(c *gin.Context) {
	viewer := currentUser(c, h.userService)
	if viewer == nil {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	module, engagement, err := h.moduleService.View(c.Request.Context(), id, viewer)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"module":     module,
		"engagement": engagement,
	})
}

// Create godoc
// POST /api/v1/modules
// Creates a lecture module authored by the actor.
func (h *ModuleHandler) Create(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	var req model.CreateModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	module, err := h.moduleService.Create(c.Request.Context(), req, actor)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"module": module})
}

// Update godoc
// PUT /api/v1/modules/:id
// Updates a module. Only the author or an administrator may edit.
func (h *ModuleHandler) Update(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateModuleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	module, err := h.moduleService.Update(c.Request.Context(), id, req, actor)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"module": module})
}

// Star godoc
// POST /api/v1/modules/:id/star
// Toggles the viewer's star on a module.
func (h *ModuleHandler) Star(c *gin.Context) {
	viewer := currentUser(c, h.userService)
	if viewer == nil {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	engagement, err := h.moduleService.ToggleStar(c.Request.Context(), id, viewer)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"engagement": engagement})
}

// Vote godoc
// POST /api/v1/modules/:id/vote
// Records the viewer's vote on a module.
func (h *ModuleHandler) Vote(c *gin.Context) {
	viewer := currentUser(c, h.userService)
	if viewer == nil {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.VoteRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	module, err := h.moduleService.Vote(c.Request.Context(), id, req.Vote, viewer)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"module": module})
}
