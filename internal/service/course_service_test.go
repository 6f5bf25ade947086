package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/internal/repository"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

type mockCourseRepo struct {
	course    *models.Course
	findErr   error
	deleteErr error
	deleted   []string
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.course, nil
}

func (m *mockCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	return nil, nil
}

func (m *mockCourseRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	return nil, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	return nil
}

func (m *mockCourseRepo) DeleteCascade(ctx context.Context, courseID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, courseID)
	return nil
}

type mockCourseUserRepo struct {
	user *models.User
	err  error
}

func (m *mockCourseUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func TestCourseServiceDeleteInvalidatesCaches(t *testing.T) {
	repo := &mockCourseRepo{course: &models.Course{ID: "c1", Name: "Operating Systems", TeacherID: "t1"}}
	cache := newMemoryCache()
	svc := NewCourseService(repo, &mockCourseUserRepo{}, cache, nil, nil)

	err := svc.Delete(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, repo.deleted)
	assert.ElementsMatch(t, []string{
		fmt.Sprintf(repository.CacheKeyCourseFAQ, "c1"),
		repository.CacheKeyGlobalFAQ,
		fmt.Sprintf(repository.CacheKeyTeacherRating, "t1"),
	}, cache.deleted)
}

func TestCourseServiceDeleteUnknownCourse(t *testing.T) {
	repo := &mockCourseRepo{findErr: sql.ErrNoRows}
	cache := newMemoryCache()
	svc := NewCourseService(repo, &mockCourseUserRepo{}, cache, nil, nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Empty(t, repo.deleted)
	assert.Empty(t, cache.deleted)
}

func TestCourseServiceCreateRejectsNonTeacher(t *testing.T) {
	userRepo := &mockCourseUserRepo{user: &models.User{ID: "u1", Role: models.RoleStudent}}
	svc := NewCourseService(&mockCourseRepo{}, userRepo, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:      "Operating Systems",
		TeacherID: "7b4a47ea-32c4-4c09-9a1f-5d6fb90fb07d",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
