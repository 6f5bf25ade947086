package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/internal/repository"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

const teacherListLimit = 200

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	ListByRole(ctx context.Context, role models.UserRole, limit int) ([]models.User, error)
	DeleteTeacherCascade(ctx context.Context, teacherID string) (*repository.CascadeImpact, error)
	DeleteStudentCascade(ctx context.Context, studentID string) (*repository.CascadeImpact, error)
}

type userCache interface {
	Delete(ctx context.Context, keys ...string) error
}

// CreateTeacherRequest provisions a teacher account (admin only).
type CreateTeacherRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"name" validate:"required,max=120"`
}

// UserService covers the admin-side account operations, including the
// deletion cascades that keep the data model free of orphans.
type UserService struct {
	repo      userRepository
	cache     userCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, cache userCache, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// ListTeachers returns all teacher accounts with their rating summary
// columns.
func (s *UserService) ListTeachers(ctx context.Context) ([]models.User, error) {
	teachers, err := s.repo.ListByRole(ctx, models.RoleTeacher, teacherListLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// CreateTeacher provisions a teacher account.
func (s *UserService) CreateTeacher(ctx context.Context, req CreateTeacherRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	teacher := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         models.RoleTeacher,
		Active:       true,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// DeleteTeacher removes a teacher together with their courses, queries,
// ratings and notifications.
func (s *UserService) DeleteTeacher(ctx context.Context, teacherID string) error {
	impact, err := s.repo.DeleteTeacherCascade(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	s.invalidateCascadeCaches(ctx, impact)
	s.logger.Info("teacher deleted with dependents", zap.String("teacher_id", teacherID))
	return nil
}

// DeleteStudent removes a student together with their queries, ratings
// and related notifications.
func (s *UserService) DeleteStudent(ctx context.Context, studentID string) error {
	impact, err := s.repo.DeleteStudentCascade(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.invalidateCascadeCaches(ctx, impact)
	s.logger.Info("student deleted with dependents", zap.String("student_id", studentID))
	return nil
}

// invalidateCascadeCaches drops the FAQ and teacher rating cache
// entries that a deletion cascade left stale.
func (s *UserService) invalidateCascadeCaches(ctx context.Context, impact *repository.CascadeImpact) {
	if s.cache == nil || impact == nil {
		return
	}
	keys := []string{repository.CacheKeyGlobalFAQ}
	for _, courseID := range impact.CourseIDs {
		keys = append(keys, fmt.Sprintf(repository.CacheKeyCourseFAQ, courseID))
	}
	for _, teacherID := range impact.TeacherIDs {
		keys = append(keys, fmt.Sprintf(repository.CacheKeyTeacherRating, teacherID))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("failed to invalidate cascade caches", zap.Error(err))
	}
}
