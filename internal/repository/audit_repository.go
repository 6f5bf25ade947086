package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/codeyatra/query-engine-api/internal/models"
)

// AuditRepository persists intake decision events.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts an intake event row.
func (r *AuditRepository) Create(ctx context.Context, event *models.IntakeEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO intake_events (id, course_id, student_id, outcome, matched_query_id, score, detail, created_at)
		VALUES (:id, :course_id, :student_id, :outcome, :matched_query_id, :score, :detail, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create intake event: %w", err)
	}
	return nil
}

// ListByCourse returns the most recent intake events for a course.
func (r *AuditRepository) ListByCourse(ctx context.Context, courseID string, limit int) ([]models.IntakeEvent, error) {
	const query = `SELECT id, course_id, student_id, outcome, matched_query_id, score, detail, created_at FROM intake_events WHERE course_id = $1 ORDER BY created_at DESC LIMIT $2`
	var events []models.IntakeEvent
	if err := r.db.SelectContext(ctx, &events, query, courseID, limit); err != nil {
		return nil, fmt.Errorf("list intake events: %w", err)
	}
	return events, nil
}
