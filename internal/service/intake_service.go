package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

type intakeCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type intakeQueryRepository interface {
	ListFAQ(ctx context.Context, courseID string, limit int) ([]models.Query, error)
	Create(ctx context.Context, q *models.Query, notif *models.Notification) error
}

type intakeAuditor interface {
	Record(event models.IntakeEvent)
}

type intakeMetrics interface {
	ObserveIntake(outcome models.IntakeOutcome)
	IncNotificationCreated()
}

// SubmitQueryRequest is the student submission payload.
type SubmitQueryRequest struct {
	CourseID string `json:"course_id" validate:"required"`
	Question string `json:"question" validate:"required,max=2000"`
}

// IntakeService orchestrates the submission pipeline: moderation, then
// subject relevance, then duplicate matching. The order is fixed so
// behavior stays deterministic: unsafe or off-topic content is rejected
// before any matching effort, and only on-topic questions are eligible
// for FAQ auto-resolution.
type IntakeService struct {
	courses    intakeCourseRepository
	queries    intakeQueryRepository
	matcher    *SimilarityMatcher
	moderation *ModerationFilter
	relevance  *RelevanceChecker
	audit      intakeAuditor
	metrics    intakeMetrics
	validator  *validator.Validate
	logger     *zap.Logger
	candidates int
}

// NewIntakeService constructs an IntakeService.
func NewIntakeService(
	courses intakeCourseRepository,
	queries intakeQueryRepository,
	matcher *SimilarityMatcher,
	moderation *ModerationFilter,
	relevance *RelevanceChecker,
	audit intakeAuditor,
	metrics intakeMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	candidates int,
) *IntakeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if candidates <= 0 {
		candidates = 50
	}
	return &IntakeService{
		courses:    courses,
		queries:    queries,
		matcher:    matcher,
		moderation: moderation,
		relevance:  relevance,
		audit:      audit,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		candidates: candidates,
	}
}

// Submit runs the intake pipeline for one student question.
func (s *IntakeService) Submit(ctx context.Context, actor *models.JWTClaims, req SubmitQueryRequest) (*models.IntakeResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query payload")
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "question must not be empty")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if verdict := s.moderation.Check(question); verdict.Flagged {
		s.record(models.IntakeRejectedModeration, course.ID, actor.UserID, nil, verdict.Score,
			fmt.Sprintf("flagged as %s", verdict.Label))
		return nil, appErrors.Clone(appErrors.ErrModerationRejected, "")
	}

	if onTopic, confidence := s.relevance.IsOnTopic(course, question); !onTopic {
		s.record(models.IntakeRejectedOffTopic, course.ID, actor.UserID, nil, confidence,
			fmt.Sprintf("not related to %s", course.Name))
		return nil, appErrors.Clone(appErrors.ErrOffTopicRejected,
			fmt.Sprintf("question does not appear to be related to %s", course.Name))
	}

	candidates, err := s.queries.ListFAQ(ctx, course.ID, s.candidates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load answered queries")
	}

	if match, score := s.matcher.Match(candidates, question); match != nil {
		s.record(models.IntakeAutoAnswered, course.ID, actor.UserID, &match.ID, score,
			"resolved from existing answer")
		s.logger.Info("query auto-answered",
			zap.String("course_id", course.ID),
			zap.String("matched_query_id", match.ID),
			zap.Float64("score", score))
		return &models.IntakeResult{Outcome: models.IntakeAutoAnswered, Match: match, Score: score}, nil
	}

	query := &models.Query{
		CourseID:    course.ID,
		CourseName:  course.Name,
		TeacherID:   course.TeacherID,
		StudentID:   actor.UserID,
		StudentName: actor.FullName,
		StudentRoll: actor.Roll,
		Question:    question,
	}
	notif := &models.Notification{
		UserID:  course.TeacherID,
		Message: fmt.Sprintf("%s Raised a Question on %s", studentLabel(actor), course.Name),
	}
	if err := s.queries.Create(ctx, query, notif); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create query")
	}

	s.record(models.IntakeAccepted, course.ID, actor.UserID, nil, 0, "accepted as pending")
	if s.metrics != nil {
		s.metrics.IncNotificationCreated()
	}
	return &models.IntakeResult{Outcome: models.IntakeAccepted, Query: query}, nil
}

func (s *IntakeService) record(outcome models.IntakeOutcome, courseID, studentID string, matchedID *string, score float64, detail string) {
	if s.metrics != nil {
		s.metrics.ObserveIntake(outcome)
	}
	if s.audit == nil {
		return
	}
	s.audit.Record(models.IntakeEvent{
		CourseID:       courseID,
		StudentID:      studentID,
		Outcome:        outcome,
		MatchedQueryID: matchedID,
		Score:          score,
		Detail:         detail,
	})
}

func studentLabel(actor *models.JWTClaims) string {
	if actor.Roll != "" {
		return actor.Roll
	}
	return actor.FullName
}
