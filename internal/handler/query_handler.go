package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/internal/service"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
	"github.com/codeyatra/query-engine-api/pkg/response"
)

// QueryHandler wires HTTP endpoints to the intake pipeline and the
// query lifecycle service.
type QueryHandler struct {
	intake  *service.IntakeService
	queries *service.QueryService
}

// NewQueryHandler creates a new handler.
func NewQueryHandler(intake *service.IntakeService, queries *service.QueryService) *QueryHandler {
	return &QueryHandler{intake: intake, queries: queries}
}

// Submit godoc
// @Summary Submit a question
// @Description Run a question through moderation, subject relevance and duplicate matching. A duplicate returns the existing answered query instead of creating a new one.
// @Tags Queries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SubmitQueryRequest true "Question payload"
// @Success 200 {object} models.Query "new pending query, or a matched duplicate envelope"
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{} "rejected by moderation or subject relevance"
// @Router /queries [post]
func (h *QueryHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query payload"))
		return
	}

	result, err := h.intake.Submit(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Outcome == models.IntakeAutoAnswered {
		response.JSON(c, http.StatusOK, gin.H{
			"matched": true,
			"faq":     result.Match,
			"score":   result.Score,
		})
		return
	}

	response.JSON(c, http.StatusOK, result.Query)
}

// Answer godoc
// @Summary Answer a query
// @Description Record the assigned teacher's answer; the first answer notifies the asking student
// @Tags Queries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Query ID"
// @Param payload body service.AnswerQueryRequest true "Answer payload"
// @Success 200 {object} models.Query
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /queries/answer/{id} [patch]
func (h *QueryHandler) Answer(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.AnswerQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answer payload"))
		return
	}

	query, err := h.queries.Answer(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, query)
}

// FAQ godoc
// @Summary Course FAQ
// @Description Answered queries for one course, newest answers first
// @Tags Queries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {array} models.Query
// @Router /queries/course/{id}/faq [get]
func (h *QueryHandler) FAQ(c *gin.Context) {
	queries, err := h.queries.FAQ(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries)
}

// FAQAll godoc
// @Summary Global FAQ
// @Description Answered queries across all courses
// @Tags Queries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Query
// @Router /queries/faq/all [get]
func (h *QueryHandler) FAQAll(c *gin.Context) {
	queries, err := h.queries.FAQAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries)
}

// MyQueries godoc
// @Summary My queries in a course
// @Tags Queries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {array} models.Query
// @Router /queries/course/{id} [get]
func (h *QueryHandler) MyQueries(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	queries, err := h.queries.MyQueries(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries)
}

// MyAnswered godoc
// @Summary My answered queries in a course
// @Tags Queries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {array} models.Query
// @Router /queries/course/{id}/answered [get]
func (h *QueryHandler) MyAnswered(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	queries, err := h.queries.MyAnswered(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries)
}

// TeacherInbox godoc
// @Summary Queries assigned to me
// @Tags Queries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Query
// @Router /teacher/queries [get]
func (h *QueryHandler) TeacherInbox(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	queries, err := h.queries.TeacherInbox(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries)
}

// TeacherPending godoc
// @Summary My unanswered queries
// @Tags Queries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Query
// @Router /teacher/queries/pending [get]
func (h *QueryHandler) TeacherPending(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	queries, err := h.queries.TeacherPending(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries)
}

// CourseStudents godoc
// @Summary Students who asked in a course
// @Description Roll-up of asking students with a pending flag, for the owning teacher
// @Tags Queries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {array} models.CourseStudent
// @Router /teacher/courses/{id}/students [get]
func (h *QueryHandler) CourseStudents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	students, err := h.queries.CourseStudents(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// StudentThread godoc
// @Summary One student's queries in a course
// @Tags Queries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param studentId path string true "Student ID"
// @Success 200 {array} models.Query
// @Router /teacher/courses/{id}/students/{studentId}/queries [get]
func (h *QueryHandler) StudentThread(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	queries, err := h.queries.StudentThread(c.Request.Context(), claims, c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, queries)
}
