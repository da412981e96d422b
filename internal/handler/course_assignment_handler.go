package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisms/university-api/internal/service"
	appErrors "github.com/unisms/university-api/pkg/errors"
	"github.com/unisms/university-api/pkg/response"
)

// CourseAssignmentHandler wires HTTP endpoints to the assignment service.
type CourseAssignmentHandler struct {
	service *service.CourseAssignmentService
}

// NewCourseAssignmentHandler creates a new handler.
func NewCourseAssignmentHandler(svc *service.CourseAssignmentService) *CourseAssignmentHandler {
	return &CourseAssignmentHandler{service: svc}
}

// Create godoc
// @Summary Assign an instructor to a course
// @Tags CourseAssignments
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /course-assignments [post]
func (h *CourseAssignmentHandler) Create(c *gin.Context) {
	var req service.CreateCourseAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// List godoc
// @Summary List all course assignments
// @Tags CourseAssignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /course-assignments [get]
func (h *CourseAssignmentHandler) List(c *gin.Context) {
	assignments, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments)
}

// ListMine godoc
// @Summary List the authenticated instructor's assignments
// @Tags CourseAssignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /course-assignments/my-assignments [get]
func (h *CourseAssignmentHandler) ListMine(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	assignments, err := h.service.ListForInstructor(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments)
}

// Delete godoc
// @Summary Remove a course assignment
// @Tags CourseAssignments
// @Param id path int true "Assignment id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /course-assignments/{id} [delete]
func (h *CourseAssignmentHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "course assignment deleted")
}
