package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/internal/repository"
	"github.com/codeyatra/query-engine-api/pkg/config"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

type ratingRepository interface {
	FindByQueryID(ctx context.Context, queryID string) (*models.Rating, error)
	UpsertAndRecompute(ctx context.Context, rating *models.Rating) (*models.TeacherRatingSummary, error)
	TeacherSummary(ctx context.Context, teacherID string) (*models.TeacherRatingSummary, error)
}

type ratingQueryRepository interface {
	FindByID(ctx context.Context, id string) (*models.Query, error)
}

type ratingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type ratingMetrics interface {
	IncRatingSubmitted()
	IncCacheHit()
	IncCacheMiss()
}

// RateRequest is the student's rating payload.
type RateRequest struct {
	QueryID   string `json:"query_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	Value     int    `json:"rating" validate:"required,min=1,max=5"`
}

// RatingService accepts per-query ratings and serves teacher summaries.
// Writes for the same teacher are serialised on a per-teacher mutex so
// the recompute never runs on a half-applied upsert.
type RatingService struct {
	repo      ratingRepository
	queryRepo ratingQueryRepository
	cache     ratingCache
	metrics   ratingMetrics
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration

	teacherLocks sync.Map // teacher id -> *sync.Mutex
}

// NewRatingService constructs a RatingService.
func NewRatingService(repo ratingRepository, queryRepo ratingQueryRepository, cache ratingCache, metrics ratingMetrics, validate *validator.Validate, logger *zap.Logger, cfg config.RatingsConfig) *RatingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{
		repo:      repo,
		queryRepo: queryRepo,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cacheTTL:  cfg.CacheTTL,
	}
}

// Rate records or overwrites the acting student's rating for an
// answered query and returns the updated teacher summary.
func (s *RatingService) Rate(ctx context.Context, actor *models.JWTClaims, req RateRequest) (*models.TeacherRatingSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must reference a query and a teacher and be between 1 and 5")
	}

	q, err := s.queryRepo.FindByID(ctx, req.QueryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "query not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load query")
	}
	if q.StudentID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the asking student may rate this query")
	}
	if !q.Answered {
		return nil, appErrors.Clone(appErrors.ErrConflict, "query has not been answered yet")
	}
	if q.TeacherID != req.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher does not match the rated query")
	}

	rating := &models.Rating{
		QueryID:   req.QueryID,
		TeacherID: q.TeacherID,
		StudentID: actor.UserID,
		Value:     req.Value,
	}

	lock := s.teacherLock(q.TeacherID)
	lock.Lock()
	summary, err := s.repo.UpsertAndRecompute(ctx, rating)
	lock.Unlock()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store rating")
	}
	summary.AverageRating = roundRating(summary.AverageRating)

	if s.metrics != nil {
		s.metrics.IncRatingSubmitted()
	}
	s.invalidateTeacherRating(ctx, q.TeacherID)
	return summary, nil
}

// QueryRating returns the rating attached to a query, if any. A query
// without a rating yields nil rather than an error.
func (s *RatingService) QueryRating(ctx context.Context, queryID string) (*models.Rating, error) {
	rating, err := s.repo.FindByQueryID(ctx, queryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rating")
	}
	return rating, nil
}

// TeacherRating returns the cached per-teacher summary, recomputing
// from the ratings table on a miss.
func (s *RatingService) TeacherRating(ctx context.Context, teacherID string) (*models.TeacherRatingSummary, error) {
	key := fmt.Sprintf(repository.CacheKeyTeacherRating, teacherID)
	if s.cache != nil {
		var cached models.TeacherRatingSummary
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.IncCacheHit()
			}
			return &cached, nil
		}
		if s.metrics != nil {
			s.metrics.IncCacheMiss()
		}
	}

	summary, err := s.repo.TeacherSummary(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher rating")
	}
	summary.AverageRating = roundRating(summary.AverageRating)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache teacher rating", zap.String("teacher_id", teacherID), zap.Error(err))
		}
	}
	return summary, nil
}

func (s *RatingService) teacherLock(teacherID string) *sync.Mutex {
	lock, _ := s.teacherLocks.LoadOrStore(teacherID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *RatingService) invalidateTeacherRating(ctx context.Context, teacherID string) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf(repository.CacheKeyTeacherRating, teacherID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate rating cache", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}

// roundRating rounds an average to two decimal places, matching what
// the clients display.
func roundRating(v float64) float64 {
	return math.Round(v*100) / 100
}
