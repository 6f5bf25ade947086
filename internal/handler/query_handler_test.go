package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/middleware"
	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/internal/service"
)

type courseRepoStub struct {
	course *models.Course
}

func (s *courseRepoStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	return s.course, nil
}

type queryRepoStub struct {
	faq     []models.Query
	created *models.Query
}

func (s *queryRepoStub) ListFAQ(ctx context.Context, courseID string, limit int) ([]models.Query, error) {
	return s.faq, nil
}

func (s *queryRepoStub) Create(ctx context.Context, q *models.Query, notif *models.Notification) error {
	q.ID = "q-new"
	s.created = q
	return nil
}

func newIntakeHandler(faq []models.Query) (*QueryHandler, *queryRepoStub) {
	queries := &queryRepoStub{faq: faq}
	intake := service.NewIntakeService(
		&courseRepoStub{course: &models.Course{ID: "c1", Name: "Operating Systems", Keywords: "process, scheduling, memory", TeacherID: "t1"}},
		queries,
		service.NewSimilarityMatcher(0.82),
		service.NewModerationFilter(nil, 0.6, zap.NewNop()),
		service.NewRelevanceChecker(true, 0.6),
		nil, nil,
		validator.New(), zap.NewNop(), 50,
	)
	return NewQueryHandler(intake, nil), queries
}

func submitRequest(t *testing.T, h *QueryHandler, question string, claims *models.JWTClaims) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, err := json.Marshal(service.SubmitQueryRequest{CourseID: "c1", Question: question})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, "/queries", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}

	h.Submit(c)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func testStudent() *models.JWTClaims {
	return &models.JWTClaims{UserID: "s1", FullName: "Asha Rai", Roll: "CE-42", Role: models.RoleStudent}
}

func TestQueryHandlerSubmitAccepted(t *testing.T) {
	h, queries := newIntakeHandler(nil)

	w, body := submitRequest(t, h, "How does the scheduler pick the next process?", testStudent())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "q-new", body["id"])
	assert.Equal(t, false, body["answered"])
	require.NotNil(t, queries.created)
	assert.Equal(t, "t1", queries.created.TeacherID)
}

func TestQueryHandlerSubmitAutoAnswered(t *testing.T) {
	answer := "By priority."
	h, queries := newIntakeHandler([]models.Query{{
		ID:       "q-old",
		Question: "How does the scheduler pick the next process?",
		Answer:   &answer,
		Answered: true,
	}})

	w, body := submitRequest(t, h, "how does the scheduler pick the next process", testStudent())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["matched"])
	faq, ok := body["faq"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "q-old", faq["id"])
	assert.Nil(t, queries.created)
}

func TestQueryHandlerSubmitModerationRejected(t *testing.T) {
	h, _ := newIntakeHandler(nil)

	w, body := submitRequest(t, h, "why is this stupid scheduler broken", testStudent())
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, true, body["moderation"])
	assert.NotEmpty(t, body["detail"])
}

func TestQueryHandlerSubmitOffTopicRejected(t *testing.T) {
	h, _ := newIntakeHandler(nil)

	w, body := submitRequest(t, h, "recommend good restaurants serving italian pasta near campus tonight", testStudent())
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, true, body["subject_invalid"])
	assert.Contains(t, body["detail"], "Operating Systems")
}

func TestQueryHandlerSubmitUnauthenticated(t *testing.T) {
	h, _ := newIntakeHandler(nil)

	w, _ := submitRequest(t, h, "How does paging work in virtual memory?", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
