package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/internal/service"
	"github.com/codeyatra/query-engine-api/pkg/config"
)

type ratingRepoStub struct {
	rating  *models.Rating
	findErr error
}

func (s *ratingRepoStub) FindByQueryID(ctx context.Context, queryID string) (*models.Rating, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.rating, nil
}

func (s *ratingRepoStub) UpsertAndRecompute(ctx context.Context, rating *models.Rating) (*models.TeacherRatingSummary, error) {
	return &models.TeacherRatingSummary{TeacherID: rating.TeacherID, AverageRating: float64(rating.Value), TotalRatings: 1}, nil
}

func (s *ratingRepoStub) TeacherSummary(ctx context.Context, teacherID string) (*models.TeacherRatingSummary, error) {
	return &models.TeacherRatingSummary{TeacherID: teacherID}, nil
}

type ratingQueryRepoStub struct{}

func (s *ratingQueryRepoStub) FindByID(ctx context.Context, id string) (*models.Query, error) {
	return nil, sql.ErrNoRows
}

func queryRatingRequest(t *testing.T, repo *ratingRepoStub, queryID string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewRatingService(repo, &ratingQueryRepoStub{}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})
	h := NewRatingHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/queries/rating/"+queryID, nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: queryID}}

	h.QueryRating(c)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func TestRatingHandlerQueryRatingAbsent(t *testing.T) {
	w, body := queryRatingRequest(t, &ratingRepoStub{findErr: sql.ErrNoRows}, "q1")

	// The client reads body.rating, so the unrated case must still be
	// an object carrying the key.
	require.Equal(t, http.StatusOK, w.Code)
	value, ok := body["rating"]
	require.True(t, ok)
	assert.Nil(t, value)
}

func TestRatingHandlerQueryRatingPresent(t *testing.T) {
	w, body := queryRatingRequest(t, &ratingRepoStub{rating: &models.Rating{QueryID: "q1", TeacherID: "t1", StudentID: "s1", Value: 4}}, "q1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), body["rating"])
}
