package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/internal/repository"
	"github.com/codeyatra/query-engine-api/pkg/config"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

const defaultListLimit = 100
const courseStudentsLimit = 500

type queryRepository interface {
	FindByID(ctx context.Context, id string) (*models.Query, error)
	Answer(ctx context.Context, id, answer string, notif *models.Notification) (*models.Query, bool, error)
	ListByCourseAndStudent(ctx context.Context, courseID, studentID string, limit int) ([]models.Query, error)
	ListAnsweredByCourseAndStudent(ctx context.Context, courseID, studentID string, limit int) ([]models.Query, error)
	ListFAQ(ctx context.Context, courseID string, limit int) ([]models.Query, error)
	ListFAQAll(ctx context.Context, limit int) ([]models.Query, error)
	ListByTeacher(ctx context.Context, teacherID string, limit int) ([]models.Query, error)
	ListPendingByTeacher(ctx context.Context, teacherID string, limit int) ([]models.Query, error)
	ListByCourseForTeacher(ctx context.Context, courseID, teacherID string, limit int) ([]models.Query, error)
	ListThread(ctx context.Context, courseID, studentID, teacherID string, limit int) ([]models.Query, error)
}

type queryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type queryMetrics interface {
	IncNotificationCreated()
	IncCacheHit()
	IncCacheMiss()
}

// AnswerQueryRequest is the teacher's answer payload.
type AnswerQueryRequest struct {
	Answer string `json:"answer" validate:"required,max=5000"`
}

// QueryService drives the query lifecycle and its read projections.
type QueryService struct {
	repo      queryRepository
	cache     queryCache
	metrics   queryMetrics
	validator *validator.Validate
	logger    *zap.Logger
	faqCfg    config.FAQConfig
}

// NewQueryService constructs a QueryService.
func NewQueryService(repo queryRepository, cache queryCache, metrics queryMetrics, validate *validator.Validate, logger *zap.Logger, faqCfg config.FAQConfig) *QueryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if faqCfg.CourseLimit <= 0 {
		faqCfg.CourseLimit = 50
	}
	if faqCfg.GlobalLimit <= 0 {
		faqCfg.GlobalLimit = 200
	}
	return &QueryService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, faqCfg: faqCfg}
}

// Answer records a teacher's answer. Only the assigned teacher may
// answer; the first pending->answered transition also dispatches the
// student notification, atomically with the update. Re-answering edits
// in place and dispatches nothing.
func (s *QueryService) Answer(ctx context.Context, actor *models.JWTClaims, queryID string, req AnswerQueryRequest) (*models.Query, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid answer payload")
	}
	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "answer must not be empty")
	}

	q, err := s.repo.FindByID(ctx, queryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "query not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load query")
	}
	if q.TeacherID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "this query is not assigned to you")
	}

	notif := &models.Notification{
		UserID:  q.StudentID,
		Message: fmt.Sprintf("Your %s Query has been answered!!", q.CourseName),
	}
	updated, first, err := s.repo.Answer(ctx, queryID, answer, notif)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "query not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to answer query")
	}
	if first && s.metrics != nil {
		s.metrics.IncNotificationCreated()
	}

	s.invalidateFAQ(ctx, q.CourseID)
	return updated, nil
}

// FAQ returns the answered queries of a course, cached.
func (s *QueryService) FAQ(ctx context.Context, courseID string) ([]models.Query, error) {
	key := fmt.Sprintf(repository.CacheKeyCourseFAQ, courseID)
	var cached []models.Query
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	queries, err := s.repo.ListFAQ(ctx, courseID, s.faqCfg.CourseLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faq")
	}
	s.cacheSet(ctx, key, queries)
	return queries, nil
}

// FAQAll returns answered queries across all courses, cached.
func (s *QueryService) FAQAll(ctx context.Context) ([]models.Query, error) {
	var cached []models.Query
	if s.cacheGet(ctx, repository.CacheKeyGlobalFAQ, &cached) {
		return cached, nil
	}

	queries, err := s.repo.ListFAQAll(ctx, s.faqCfg.GlobalLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list global faq")
	}
	s.cacheSet(ctx, repository.CacheKeyGlobalFAQ, queries)
	return queries, nil
}

// MyQueries returns the acting student's queries in a course.
func (s *QueryService) MyQueries(ctx context.Context, actor *models.JWTClaims, courseID string) ([]models.Query, error) {
	queries, err := s.repo.ListByCourseAndStudent(ctx, courseID, actor.UserID, defaultListLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list queries")
	}
	return queries, nil
}

// MyAnswered returns the acting student's answered queries in a course.
func (s *QueryService) MyAnswered(ctx context.Context, actor *models.JWTClaims, courseID string) ([]models.Query, error) {
	queries, err := s.repo.ListAnsweredByCourseAndStudent(ctx, courseID, actor.UserID, defaultListLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list answered queries")
	}
	return queries, nil
}

// TeacherInbox returns every query assigned to the acting teacher.
func (s *QueryService) TeacherInbox(ctx context.Context, actor *models.JWTClaims) ([]models.Query, error) {
	queries, err := s.repo.ListByTeacher(ctx, actor.UserID, defaultListLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher queries")
	}
	return queries, nil
}

// TeacherPending returns the acting teacher's unanswered queries.
func (s *QueryService) TeacherPending(ctx context.Context, actor *models.JWTClaims) ([]models.Query, error) {
	queries, err := s.repo.ListPendingByTeacher(ctx, actor.UserID, defaultListLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending queries")
	}
	return queries, nil
}

// CourseStudents rolls up the students who asked in one of the acting
// teacher's courses, flagging those with unanswered questions.
func (s *QueryService) CourseStudents(ctx context.Context, actor *models.JWTClaims, courseID string) ([]models.CourseStudent, error) {
	queries, err := s.repo.ListByCourseForTeacher(ctx, courseID, actor.UserID, courseStudentsLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course queries")
	}

	order := make([]string, 0)
	students := make(map[string]*models.CourseStudent)
	for i := range queries {
		q := &queries[i]
		entry, ok := students[q.StudentID]
		if !ok {
			entry = &models.CourseStudent{
				StudentID:   q.StudentID,
				StudentName: q.StudentName,
				StudentRoll: q.StudentRoll,
			}
			students[q.StudentID] = entry
			order = append(order, q.StudentID)
		}
		if !q.Answered {
			entry.HasPending = true
		}
	}

	result := make([]models.CourseStudent, 0, len(order))
	for _, id := range order {
		result = append(result, *students[id])
	}
	return result, nil
}

// StudentThread returns one student's queries in a course as seen by
// the owning teacher.
func (s *QueryService) StudentThread(ctx context.Context, actor *models.JWTClaims, courseID, studentID string) ([]models.Query, error) {
	queries, err := s.repo.ListThread(ctx, courseID, studentID, actor.UserID, defaultListLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student thread")
	}
	return queries, nil
}

func (s *QueryService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	if err := s.cache.Get(ctx, key, dest); err != nil {
		if s.metrics != nil {
			s.metrics.IncCacheMiss()
		}
		return false
	}
	if s.metrics != nil {
		s.metrics.IncCacheHit()
	}
	return true
}

func (s *QueryService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.faqCfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache faq", zap.String("key", key), zap.Error(err))
	}
}

func (s *QueryService) invalidateFAQ(ctx context.Context, courseID string) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf(repository.CacheKeyCourseFAQ, courseID)
	if err := s.cache.Delete(ctx, key, repository.CacheKeyGlobalFAQ); err != nil {
		s.logger.Warn("failed to invalidate faq cache", zap.String("course_id", courseID), zap.Error(err))
	}
}
