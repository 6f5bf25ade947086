package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codeyatra/query-engine-api/internal/service"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
	"github.com/codeyatra/query-engine-api/pkg/response"
)

// AdminHandler groups the admin-only account and catalogue operations.
type AdminHandler struct {
	users   *service.UserService
	courses *service.CourseService
	audit   *service.AuditService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(users *service.UserService, courses *service.CourseService, audit *service.AuditService) *AdminHandler {
	return &AdminHandler{users: users, courses: courses, audit: audit}
}

// ListTeachers godoc
// @Summary List teacher accounts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /admin/teachers [get]
func (h *AdminHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.users.ListTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers)
}

// CreateTeacher godoc
// @Summary Provision a teacher account
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateTeacherRequest true "Teacher payload"
// @Success 201 {object} models.User
// @Failure 409 {object} map[string]interface{}
// @Router /admin/teachers [post]
func (h *AdminHandler) CreateTeacher(c *gin.Context) {
	var req service.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid teacher payload"))
		return
	}

	teacher, err := h.users.CreateTeacher(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// DeleteTeacher godoc
// @Summary Delete a teacher and their dependents
// @Description Removes the teacher plus their courses, queries, ratings and notifications in one transaction
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /admin/teachers/{id} [delete]
func (h *AdminHandler) DeleteTeacher(c *gin.Context) {
	if err := h.users.DeleteTeacher(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteStudent godoc
// @Summary Delete a student and their dependents
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /admin/students/{id} [delete]
func (h *AdminHandler) DeleteStudent(c *gin.Context) {
	if err := h.users.DeleteStudent(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} models.Course
// @Failure 404 {object} map[string]interface{}
// @Router /admin/courses [post]
func (h *AdminHandler) CreateCourse(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}

	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// DeleteCourse godoc
// @Summary Delete a course and its dependents
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /admin/courses/{id} [delete]
func (h *AdminHandler) DeleteCourse(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CourseIntakeEvents godoc
// @Summary Intake decision log for a course
// @Description Recent moderation/relevance/duplicate decisions recorded by the intake pipeline
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param limit query int false "Max events" default(100)
// @Success 200 {array} models.IntakeEvent
// @Router /admin/courses/{id}/intake-events [get]
func (h *AdminHandler) CourseIntakeEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	events, err := h.audit.CourseEvents(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events)
}
