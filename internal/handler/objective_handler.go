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

// ObjectiveHandler handles the objective graph endpoints.
type ObjectiveHandler struct {
	objectiveService *service.ObjectiveService
	userService      *service.UserService
}

// NewObjectiveHandler creates a new ObjectiveHandler.
func NewObjectiveHandler(objectiveService *service.ObjectiveService, userService *service.UserService) *ObjectiveHandler {
	return &ObjectiveHandler{
		objectiveService: objectiveService,
		userService:      userService,
	}
}

// List godoc
// GET /api/v1/objectives
// Lists the actor's visible objectives ordered by prerequisite depth, so
// foundational objectives come first.
func (h *ObjectiveHandler) List(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	objectives, err := h.objectiveService.ListVisible(c.Request.Context(), actor)
	if err != nil {
		failFromService(c, err)
		return
	}
	if objectives == nil {
		objectives = []model.Objective{}
	}

	response.Success(c, http.StatusOK, gin.H{"objectives": objectives})
}

// Selectable godoc
// GET /api/v1/objectives/selectable?subject_id=N
// Lists the objectives offered in the objective picker: system objectives
// plus any the actor already has adoption records for.
func (h *ObjectiveHandler) Selectable(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	subjectID, _ := strconv.Atoi(c.Query("subject_id"))

	objectives, err := h.objectiveService.SelectableFor(c.Request.Context(), actor, subjectID)
	if err != nil {
		failFromService(c, err)
		return
	}
	if objectives == nil {
		objectives = []model.Objective{}
	}

	response.Success(c, http.StatusOK, gin.H{"objectives": objectives})
}

// Assessable godoc
// GET /api/v1/objectives/assessable?student_id=N&subject_id=N
// Lists the objectives the given student has adopted under the acting tutor.
func (h *ObjectiveHandler) Assessable(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	studentID, err := strconv.Atoi(c.Query("student_id"))
	if err != nil || studentID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	subjectID, _ := strconv.Atoi(c.Query("subject_id"))

	objectives, err := h.objectiveService.AssessableFor(c.Request.Context(), actor, studentID, subjectID)
	if err != nil {
		failFromService(c, err)
		return
	}
	if objectives == nil {
		objectives = []model.Objective{}
	}

	response.Success(c, http.StatusOK, gin.H{"objectives": objectives})
}

// Get godoc
// GET /api/v1/objectives/:id
// Returns a single objective with its direct prerequisites.
func (h *ObjectiveHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	objective, err := h.objectiveService.GetByID(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"objective": objective})
}

// Create godoc
// POST /api/v1/objectives
// Creates an objective owned by the actor, with prerequisites referenced by
// name.
func (h *ObjectiveHandler) Create(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	var req model.CreateObjectiveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	objective, err := h.objectiveService.Create(c.Request.Context(), req, actor)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"objective": objective})
}

// Update godoc
// PUT /api/v1/objectives/:id
// Updates an objective's name, topic and prerequisite set.
func (h *ObjectiveHandler) Update(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateObjectiveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	req.ID = id

	objective, err := h.objectiveService.Update(c.Request.Context(), req, actor)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"objective": objective})
}

// Delete godoc
// DELETE /api/v1/objectives/:id
// Deletes an objective and prunes the prerequisite edges that reference it.
func (h *ObjectiveHandler) Delete(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.objectiveService.Delete(c.Request.Context(), id, actor); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Remove godoc
// POST /api/v1/objectives/remove
// Drops an objective from a student's adopted set. Idempotent.
func (h *ObjectiveHandler) Remove(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	var req model.RemoveObjectiveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.objectiveService.Remove(c.Request.Context(), req, actor); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Assign godoc
// POST /api/v1/objectives/assign
// Records an adoption of an objective for a student, managed by the actor.
func (h *ObjectiveHandler) Assign(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	var req model.AssignObjectiveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.objectiveService.Assign(c.Request.Context(), req, actor)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"adoption": rec})
}

// Assess godoc
// POST /api/v1/objectives/assess
// Records an assessment level on an adoption managed by the actor.
func (h *ObjectiveHandler) Assess(c *gin.Context) {
	actor := currentUser(c, h.userService)
	if actor == nil {
		return
	}

	var req model.AssessObjectiveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.objectiveService.Assess(c.Request.Context(), req, actor); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
