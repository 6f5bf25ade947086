package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/codeyatra/query-engine-api/internal/models"
)

// RatingRepository manages rating rows and the per-teacher summary they
// feed.
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository constructs a RatingRepository.
func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// FindByQueryID fetches the rating attached to a query, if any.
func (r *RatingRepository) FindByQueryID(ctx context.Context, queryID string) (*models.Rating, error) {
	const query = `SELECT id, query_id, teacher_id, student_id, value, created_at, updated_at FROM ratings WHERE query_id = $1`
	var rating models.Rating
	if err := r.db.GetContext(ctx, &rating, query, queryID); err != nil {
		return nil, err
	}
	return &rating, nil
}

// UpsertAndRecompute inserts or updates the rating keyed by query and
// recomputes the teacher's average/count over the whole ratings table,
// storing the result on the users row. One transaction, so a concurrent
// reader never sees a rating without its summary update.
func (r *RatingRepository) UpsertAndRecompute(ctx context.Context, rating *models.Rating) (*models.TeacherRatingSummary, error) {
	now := time.Now().UTC()
	if rating.ID == "" {
		rating.ID = uuid.NewString()
	}
	rating.CreatedAt = now
	rating.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin rating upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const upsert = `INSERT INTO ratings (id, query_id, teacher_id, student_id, value, created_at, updated_at)
		VALUES (:id, :query_id, :teacher_id, :student_id, :value, :created_at, :updated_at)
		ON CONFLICT (query_id) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, upsert, rating); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}

	const recompute = `SELECT $1 AS teacher_id, COALESCE(AVG(value), 0) AS average_rating, COUNT(*) AS total_ratings FROM ratings WHERE teacher_id = $1`
	var summary models.TeacherRatingSummary
	if err := tx.GetContext(ctx, &summary, recompute, rating.TeacherID); err != nil {
		return nil, fmt.Errorf("recompute teacher rating: %w", err)
	}

	const store = `UPDATE users SET average_rating = $2, total_ratings = $3, updated_at = $4 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, store, rating.TeacherID, summary.AverageRating, summary.TotalRatings, now); err != nil {
		return nil, fmt.Errorf("store teacher rating summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rating upsert: %w", err)
	}
	return &summary, nil
}

// TeacherSummary computes the live average/count for a teacher from the
// ratings table.
func (r *RatingRepository) TeacherSummary(ctx context.Context, teacherID string) (*models.TeacherRatingSummary, error) {
	const query = `SELECT $1 AS teacher_id, COALESCE(AVG(value), 0) AS average_rating, COUNT(*) AS total_ratings FROM ratings WHERE teacher_id = $1`
	var summary models.TeacherRatingSummary
	if err := r.db.GetContext(ctx, &summary, query, teacherID); err != nil {
		return nil, fmt.Errorf("teacher rating summary: %w", err)
	}
	return &summary, nil
}
