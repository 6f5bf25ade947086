package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/pkg/config"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

type mockRatingRepo struct {
	mu      sync.Mutex
	values  map[string]int
	rating  *models.Rating
	findErr error
	summary *models.TeacherRatingSummary
	upserts int
}

func (m *mockRatingRepo) FindByQueryID(ctx context.Context, queryID string) (*models.Rating, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.rating, nil
}

func (m *mockRatingRepo) UpsertAndRecompute(ctx context.Context, rating *models.Rating) (*models.TeacherRatingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]int)
	}
	m.values[rating.QueryID] = rating.Value
	m.upserts++

	sum, count := 0, 0
	for _, v := range m.values {
		sum += v
		count++
	}
	return &models.TeacherRatingSummary{
		TeacherID:     rating.TeacherID,
		AverageRating: float64(sum) / float64(count),
		TotalRatings:  count,
	}, nil
}

func (m *mockRatingRepo) TeacherSummary(ctx context.Context, teacherID string) (*models.TeacherRatingSummary, error) {
	return m.summary, nil
}

type mockRatingQueryRepo struct {
	query   *models.Query
	findErr error
}

func (m *mockRatingQueryRepo) FindByID(ctx context.Context, id string) (*models.Query, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.query, nil
}

func answeredQuery() *models.Query {
	answer := "Use an index."
	return &models.Query{
		ID:        "q1",
		CourseID:  "c1",
		TeacherID: "t1",
		StudentID: "s1",
		Answer:    &answer,
		Answered:  true,
	}
}

func ratingStudentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "s1", Role: models.RoleStudent}
}

func TestRatingServiceRate(t *testing.T) {
	repo := &mockRatingRepo{}
	svc := NewRatingService(repo, &mockRatingQueryRepo{query: answeredQuery()}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})

	summary, err := svc.Rate(context.Background(), ratingStudentClaims(), RateRequest{QueryID: "q1", TeacherID: "t1", Value: 4})
	require.NoError(t, err)
	assert.Equal(t, "t1", summary.TeacherID)
	assert.Equal(t, 1, summary.TotalRatings)
	assert.Equal(t, 4.0, summary.AverageRating)
}

func TestRatingServiceResubmitOverwrites(t *testing.T) {
	repo := &mockRatingRepo{}
	svc := NewRatingService(repo, &mockRatingQueryRepo{query: answeredQuery()}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})

	_, err := svc.Rate(context.Background(), ratingStudentClaims(), RateRequest{QueryID: "q1", TeacherID: "t1", Value: 2})
	require.NoError(t, err)
	summary, err := svc.Rate(context.Background(), ratingStudentClaims(), RateRequest{QueryID: "q1", TeacherID: "t1", Value: 5})
	require.NoError(t, err)

	// Same query rated twice counts once with the latest value.
	assert.Equal(t, 1, summary.TotalRatings)
	assert.Equal(t, 5.0, summary.AverageRating)
}

func TestRatingServiceRejectsUnanswered(t *testing.T) {
	pending := answeredQuery()
	pending.Answered = false
	pending.Answer = nil
	svc := NewRatingService(&mockRatingRepo{}, &mockRatingQueryRepo{query: pending}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})

	_, err := svc.Rate(context.Background(), ratingStudentClaims(), RateRequest{QueryID: "q1", TeacherID: "t1", Value: 3})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRatingServiceRejectsOtherStudent(t *testing.T) {
	svc := NewRatingService(&mockRatingRepo{}, &mockRatingQueryRepo{query: answeredQuery()}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})

	other := &models.JWTClaims{UserID: "s2", Role: models.RoleStudent}
	_, err := svc.Rate(context.Background(), other, RateRequest{QueryID: "q1", TeacherID: "t1", Value: 3})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestRatingServiceRejectsOutOfRange(t *testing.T) {
	svc := NewRatingService(&mockRatingRepo{}, &mockRatingQueryRepo{query: answeredQuery()}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})

	for _, value := range []int{0, 6, -1} {
		_, err := svc.Rate(context.Background(), ratingStudentClaims(), RateRequest{QueryID: "q1", TeacherID: "t1", Value: value})
		require.Error(t, err, "value %d", value)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
}

func TestRatingServiceRejectsTeacherMismatch(t *testing.T) {
	svc := NewRatingService(&mockRatingRepo{}, &mockRatingQueryRepo{query: answeredQuery()}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})

	_, err := svc.Rate(context.Background(), ratingStudentClaims(), RateRequest{QueryID: "q1", TeacherID: "t9", Value: 3})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRatingServiceUnknownQuery(t *testing.T) {
	svc := NewRatingService(&mockRatingRepo{}, &mockRatingQueryRepo{findErr: sql.ErrNoRows}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})

	_, err := svc.Rate(context.Background(), ratingStudentClaims(), RateRequest{QueryID: "missing", TeacherID: "t1", Value: 3})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRatingServiceConcurrentSameTeacher(t *testing.T) {
	repo := &mockRatingRepo{}
	svc := NewRatingService(repo, &mockRatingQueryRepo{query: answeredQuery()}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Rate(context.Background(), ratingStudentClaims(), RateRequest{QueryID: "q1", TeacherID: "t1", Value: 5})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, repo.upserts)
}

func TestRatingServiceQueryRatingAbsentIsNil(t *testing.T) {
	svc := NewRatingService(&mockRatingRepo{findErr: sql.ErrNoRows}, &mockRatingQueryRepo{}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})

	rating, err := svc.QueryRating(context.Background(), "q1")
	require.NoError(t, err)
	assert.Nil(t, rating)
}

func TestRatingServiceTeacherRatingRounds(t *testing.T) {
	repo := &mockRatingRepo{summary: &models.TeacherRatingSummary{TeacherID: "t1", AverageRating: 11.0 / 3.0, TotalRatings: 3}}
	svc := NewRatingService(repo, &mockRatingQueryRepo{}, nil, nil, validator.New(), zap.NewNop(), config.RatingsConfig{})

	summary, err := svc.TeacherRating(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 3.67, summary.AverageRating)
}
