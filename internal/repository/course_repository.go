package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/codeyatra/query-engine-api/internal/models"
)

const courseColumns = `id, name, keywords, teacher_id, teacher_name, created_at, updated_at`

// CourseRepository manages persistence for courses, including the
// cascade that removes a course together with its queries, ratings and
// notifications.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns all courses.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses ORDER BY name ASC`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListByTeacher returns courses assigned to a teacher.
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE teacher_id = $1 ORDER BY name ASC`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher courses: %w", err)
	}
	return courses, nil
}

// Create inserts a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, name, keywords, teacher_id, teacher_name, created_at, updated_at)
		VALUES (:id, :name, :keywords, :teacher_id, :teacher_name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// DeleteCascade removes a course and every dependent query, rating and
// notification in one transaction. Children go first so a mid-cascade
// failure rolls back rather than leaving orphans.
func (r *CourseRepository) DeleteCascade(ctx context.Context, courseID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course cascade: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteCourseDependents(ctx, tx, courseID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, courseID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit course cascade: %w", err)
	}
	return nil
}

func deleteCourseDependents(ctx context.Context, tx *sqlx.Tx, courseID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("delete course notifications: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ratings WHERE query_id IN (SELECT id FROM queries WHERE course_id = $1)`, courseID); err != nil {
		return fmt.Errorf("delete course ratings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM queries WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("delete course queries: %w", err)
	}
	// The deleted ratings fed the teacher's denormalized summary; the
	// course row still exists here, so it can name the teacher.
	const refresh = `UPDATE users SET
			average_rating = COALESCE((SELECT AVG(value) FROM ratings WHERE teacher_id = users.id), 0),
			total_ratings = (SELECT COUNT(*) FROM ratings WHERE teacher_id = users.id),
			updated_at = NOW()
		WHERE id = (SELECT teacher_id FROM courses WHERE id = $1)`
	if _, err := tx.ExecContext(ctx, refresh, courseID); err != nil {
		return fmt.Errorf("refresh teacher rating summary: %w", err)
	}
	return nil
}
