package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/internal/repository"
	"github.com/codeyatra/query-engine-api/pkg/config"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

type mockQueryRepo struct {
	query       *models.Query
	findErr     error
	answered    *models.Query
	answerFirst bool
	answerErr   error
	lastNotif   *models.Notification
	faq         []models.Query
	faqCalls    int
	course      []models.Query
}

func (m *mockQueryRepo) FindByID(ctx context.Context, id string) (*models.Query, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.query, nil
}

func (m *mockQueryRepo) Answer(ctx context.Context, id, answer string, notif *models.Notification) (*models.Query, bool, error) {
	if m.answerErr != nil {
		return nil, false, m.answerErr
	}
	m.lastNotif = notif
	return m.answered, m.answerFirst, nil
}

func (m *mockQueryRepo) ListByCourseAndStudent(ctx context.Context, courseID, studentID string, limit int) ([]models.Query, error) {
	return m.course, nil
}

func (m *mockQueryRepo) ListAnsweredByCourseAndStudent(ctx context.Context, courseID, studentID string, limit int) ([]models.Query, error) {
	return m.course, nil
}

func (m *mockQueryRepo) ListFAQ(ctx context.Context, courseID string, limit int) ([]models.Query, error) {
	m.faqCalls++
	return m.faq, nil
}

func (m *mockQueryRepo) ListFAQAll(ctx context.Context, limit int) ([]models.Query, error) {
	m.faqCalls++
	return m.faq, nil
}

func (m *mockQueryRepo) ListByTeacher(ctx context.Context, teacherID string, limit int) ([]models.Query, error) {
	return m.course, nil
}

func (m *mockQueryRepo) ListPendingByTeacher(ctx context.Context, teacherID string, limit int) ([]models.Query, error) {
	return m.course, nil
}

func (m *mockQueryRepo) ListByCourseForTeacher(ctx context.Context, courseID, teacherID string, limit int) ([]models.Query, error) {
	return m.course, nil
}

func (m *mockQueryRepo) ListThread(ctx context.Context, courseID, studentID, teacherID string, limit int) ([]models.Query, error) {
	return m.course, nil
}

type memoryCache struct {
	data    map[string][]models.Query
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]models.Query)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	cached, ok := c.data[key]
	if !ok {
		return errors.New("cache miss")
	}
	out, ok := dest.(*[]models.Query)
	if !ok {
		return errors.New("unexpected dest")
	}
	*out = cached
	return nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	queries, ok := value.([]models.Query)
	if !ok {
		return errors.New("unexpected value")
	}
	c.data[key] = queries
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.data, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

type countingMetrics struct {
	notifications int
	hits          int
	misses        int
}

func (m *countingMetrics) IncNotificationCreated() { m.notifications++ }
func (m *countingMetrics) IncCacheHit()            { m.hits++ }
func (m *countingMetrics) IncCacheMiss()           { m.misses++ }

func teacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "t1", FullName: "Dr. Karki", Role: models.RoleTeacher}
}

func pendingQuery() *models.Query {
	return &models.Query{
		ID:         "q1",
		CourseID:   "c1",
		CourseName: "Operating Systems",
		TeacherID:  "t1",
		StudentID:  "s1",
		Question:   "How does paging work?",
	}
}

func TestQueryServiceAnswerFirstTransition(t *testing.T) {
	answer := "Pages map virtual to physical frames."
	answeredAt := time.Now().UTC()
	repo := &mockQueryRepo{
		query:       pendingQuery(),
		answered:    &models.Query{ID: "q1", CourseID: "c1", TeacherID: "t1", StudentID: "s1", Answer: &answer, Answered: true, AnsweredAt: &answeredAt},
		answerFirst: true,
	}
	cache := newMemoryCache()
	metrics := &countingMetrics{}
	svc := NewQueryService(repo, cache, metrics, validator.New(), zap.NewNop(), config.FAQConfig{CourseLimit: 50, GlobalLimit: 200})

	updated, err := svc.Answer(context.Background(), teacherClaims(), "q1", AnswerQueryRequest{Answer: answer})
	require.NoError(t, err)
	assert.True(t, updated.Answered)

	require.NotNil(t, repo.lastNotif)
	assert.Equal(t, "s1", repo.lastNotif.UserID)
	assert.Equal(t, "Your Operating Systems Query has been answered!!", repo.lastNotif.Message)
	assert.Equal(t, 1, metrics.notifications)

	// FAQ caches for the course and the global view are both dropped.
	assert.Contains(t, cache.deleted, fmt.Sprintf(repository.CacheKeyCourseFAQ, "c1"))
	assert.Contains(t, cache.deleted, repository.CacheKeyGlobalFAQ)
}

func TestQueryServiceAnswerRepeatEditsWithoutNotifying(t *testing.T) {
	answer := "Updated answer."
	repo := &mockQueryRepo{
		query:       pendingQuery(),
		answered:    &models.Query{ID: "q1", Answered: true, Answer: &answer},
		answerFirst: false,
	}
	metrics := &countingMetrics{}
	svc := NewQueryService(repo, newMemoryCache(), metrics, validator.New(), zap.NewNop(), config.FAQConfig{})

	_, err := svc.Answer(context.Background(), teacherClaims(), "q1", AnswerQueryRequest{Answer: answer})
	require.NoError(t, err)
	assert.Zero(t, metrics.notifications)
}

func TestQueryServiceAnswerWrongTeacher(t *testing.T) {
	repo := &mockQueryRepo{query: pendingQuery()}
	svc := NewQueryService(repo, nil, nil, validator.New(), zap.NewNop(), config.FAQConfig{})

	other := &models.JWTClaims{UserID: "t2", Role: models.RoleTeacher}
	_, err := svc.Answer(context.Background(), other, "q1", AnswerQueryRequest{Answer: "mine now"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestQueryServiceAnswerUnknownQuery(t *testing.T) {
	repo := &mockQueryRepo{findErr: sql.ErrNoRows}
	svc := NewQueryService(repo, nil, nil, validator.New(), zap.NewNop(), config.FAQConfig{})

	_, err := svc.Answer(context.Background(), teacherClaims(), "nope", AnswerQueryRequest{Answer: "hello"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestQueryServiceAnswerBlank(t *testing.T) {
	svc := NewQueryService(&mockQueryRepo{query: pendingQuery()}, nil, nil, validator.New(), zap.NewNop(), config.FAQConfig{})

	_, err := svc.Answer(context.Background(), teacherClaims(), "q1", AnswerQueryRequest{Answer: "   "})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestQueryServiceFAQUsesCache(t *testing.T) {
	repo := &mockQueryRepo{faq: []models.Query{{ID: "q1", Answered: true}}}
	cache := newMemoryCache()
	metrics := &countingMetrics{}
	svc := NewQueryService(repo, cache, metrics, validator.New(), zap.NewNop(), config.FAQConfig{CourseLimit: 50, GlobalLimit: 200, CacheTTL: time.Minute})

	first, err := svc.FAQ(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, repo.faqCalls)
	assert.Equal(t, 1, metrics.misses)

	second, err := svc.FAQ(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, 1, repo.faqCalls)
	assert.Equal(t, 1, metrics.hits)
}

func TestQueryServiceCourseStudentsRollup(t *testing.T) {
	repo := &mockQueryRepo{course: []models.Query{
		{StudentID: "s1", StudentName: "Asha", StudentRoll: "CE-42", Answered: true},
		{StudentID: "s2", StudentName: "Bikram", StudentRoll: "CE-07", Answered: false},
		{StudentID: "s1", StudentName: "Asha", StudentRoll: "CE-42", Answered: false},
	}}
	svc := NewQueryService(repo, nil, nil, validator.New(), zap.NewNop(), config.FAQConfig{})

	students, err := svc.CourseStudents(context.Background(), teacherClaims(), "c1")
	require.NoError(t, err)
	require.Len(t, students, 2)

	// First-seen order is preserved; a single pending query flips the flag.
	assert.Equal(t, "s1", students[0].StudentID)
	assert.True(t, students[0].HasPending)
	assert.Equal(t, "s2", students[1].StudentID)
	assert.True(t, students[1].HasPending)
}
