package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeyatra/query-engine-api/internal/service"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
	"github.com/codeyatra/query-engine-api/pkg/response"
)

// RatingHandler wires HTTP endpoints to the rating service.
type RatingHandler struct {
	service *service.RatingService
}

// NewRatingHandler creates a new handler.
func NewRatingHandler(svc *service.RatingService) *RatingHandler {
	return &RatingHandler{service: svc}
}

// Rate godoc
// @Summary Rate an answered query
// @Description Record or overwrite the asking student's 1-5 rating and return the refreshed teacher summary
// @Tags Ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RateRequest true "Rating payload"
// @Success 200 {object} models.TeacherRatingSummary
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /queries/rate [post]
func (h *RatingHandler) Rate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rating payload"))
		return
	}

	summary, err := h.service.Rate(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary)
}

// QueryRating godoc
// @Summary Rating attached to a query
// @Description The rating key is null when the query has not been rated
// @Tags Ratings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Query ID"
// @Success 200 {object} map[string]interface{}
// @Router /queries/rating/{id} [get]
func (h *RatingHandler) QueryRating(c *gin.Context) {
	rating, err := h.service.QueryRating(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	// The client reads body.rating, so an unrated query still gets an
	// object with a null rating rather than a bare null.
	if rating == nil {
		response.JSON(c, http.StatusOK, gin.H{"rating": nil})
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"rating": rating.Value})
}

// TeacherRating godoc
// @Summary Teacher rating summary
// @Tags Ratings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} models.TeacherRatingSummary
// @Router /queries/teacher/{id}/rating [get]
func (h *RatingHandler) TeacherRating(c *gin.Context) {
	summary, err := h.service.TeacherRating(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
