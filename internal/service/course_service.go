package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/internal/repository"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	DeleteCascade(ctx context.Context, courseID string) error
}

type courseUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type courseCache interface {
	Delete(ctx context.Context, keys ...string) error
}

// CreateCourseRequest creates a course assigned to an existing teacher.
type CreateCourseRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Keywords  string `json:"keywords" validate:"max=2000"`
	TeacherID string `json:"teacher_id" validate:"required,uuid"`
}

// CourseService manages the course catalogue.
type CourseService struct {
	repo      courseRepository
	userRepo  courseUserRepository
	cache     courseCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, userRepo courseUserRepository, cache courseCache, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, userRepo: userRepo, cache: cache, validator: validate, logger: logger}
}

// Create adds a course after verifying the assigned teacher exists and
// actually holds the teacher role.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	teacher, err := s.userRepo.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if teacher.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assigned user is not a teacher")
	}

	course := &models.Course{
		Name:        req.Name,
		Keywords:    req.Keywords,
		TeacherID:   teacher.ID,
		TeacherName: teacher.FullName,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Get fetches a single course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// List returns the whole course catalogue.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Teaching returns the courses assigned to the acting teacher.
func (s *CourseService) Teaching(ctx context.Context, actor *models.JWTClaims) ([]models.Course, error) {
	courses, err := s.repo.ListByTeacher(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teaching courses")
	}
	return courses, nil
}

// Delete removes a course and all dependent queries, ratings and
// notifications in one transaction, then drops the FAQ and teacher
// rating cache entries that referenced them.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	if s.cache != nil {
		keys := []string{
			fmt.Sprintf(repository.CacheKeyCourseFAQ, id),
			repository.CacheKeyGlobalFAQ,
			fmt.Sprintf(repository.CacheKeyTeacherRating, course.TeacherID),
		}
		if err := s.cache.Delete(ctx, keys...); err != nil {
			s.logger.Warn("failed to invalidate course caches", zap.String("course_id", id), zap.Error(err))
		}
	}

	s.logger.Info("course deleted with dependents", zap.String("course_id", id))
	return nil
}
