package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	"github.com/codeyatra/query-engine-api/pkg/config"
	"github.com/codeyatra/query-engine-api/pkg/jobs"
)

const jobTypeIntakeEvent = "intake_event"

type auditRepository interface {
	Create(ctx context.Context, event *models.IntakeEvent) error
	ListByCourse(ctx context.Context, courseID string, limit int) ([]models.IntakeEvent, error)
}

// AuditService records intake decisions off the request path. Events go
// through the background queue; the queue retries transient store
// failures so an auto-answered submission is not silently lost.
type AuditService struct {
	repo   auditRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditService builds the service and its worker queue.
func NewAuditService(repo auditRepository, logger *zap.Logger, cfg config.AuditConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, logger: logger}
	s.queue = jobs.NewQueue("intake-audit", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the background workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains in-flight workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues an intake event for persistence.
func (s *AuditService) Record(event models.IntakeEvent) {
	job := jobs.Job{ID: uuid.NewString(), Type: jobTypeIntakeEvent, Payload: event}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue intake event",
			zap.String("course_id", event.CourseID),
			zap.String("outcome", string(event.Outcome)),
			zap.Error(err))
	}
}

// CourseEvents returns the most recent intake decisions for a course.
func (s *AuditService) CourseEvents(ctx context.Context, courseID string, limit int) ([]models.IntakeEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	events, err := s.repo.ListByCourse(ctx, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("list course intake events: %w", err)
	}
	return events, nil
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.IntakeEvent)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	return s.repo.Create(ctx, &event)
}
