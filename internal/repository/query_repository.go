package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/codeyatra/query-engine-api/internal/models"
)

const queryColumns = `id, course_id, course_name, teacher_id, student_id, student_name, student_roll, question, answer, answered, created_at, answered_at`

// QueryRepository manages persistence for queries and the notification
// writes that must stay atomic with their lifecycle transitions.
type QueryRepository struct {
	db *sqlx.DB
}

// NewQueryRepository constructs a QueryRepository.
func NewQueryRepository(db *sqlx.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

// FindByID fetches a query by ID.
func (r *QueryRepository) FindByID(ctx context.Context, id string) (*models.Query, error) {
	query := fmt.Sprintf(`SELECT %s FROM queries WHERE id = $1`, queryColumns)
	var q models.Query
	if err := r.db.GetContext(ctx, &q, query, id); err != nil {
		return nil, err
	}
	return &q, nil
}

// Create inserts a pending query and the teacher-facing notification in
// a single transaction.
func (r *QueryRepository) Create(ctx context.Context, q *models.Query, notif *models.Notification) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	q.Answered = false
	q.Answer = nil
	q.AnsweredAt = nil

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create query: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertQuery = `INSERT INTO queries (id, course_id, course_name, teacher_id, student_id, student_name, student_roll, question, answer, answered, created_at, answered_at)
		VALUES (:id, :course_id, :course_name, :teacher_id, :student_id, :student_name, :student_roll, :question, :answer, :answered, :created_at, :answered_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, q); err != nil {
		return fmt.Errorf("create query: %w", err)
	}

	if notif != nil {
		notif.QueryID = q.ID
		notif.CourseID = q.CourseID
		if err := insertNotification(ctx, tx, notif); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create query: %w", err)
	}
	return nil
}

// Answer sets the answer fields under a row lock and, only on the first
// pending->answered transition, inserts the student notification in the
// same transaction. Returns the updated query and whether this call was
// the first transition.
func (r *QueryRepository) Answer(ctx context.Context, id, answer string, notif *models.Notification) (*models.Query, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin answer query: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	lockQuery := fmt.Sprintf(`SELECT %s FROM queries WHERE id = $1 FOR UPDATE`, queryColumns)
	var q models.Query
	if err := tx.GetContext(ctx, &q, lockQuery, id); err != nil {
		return nil, false, err
	}

	first := !q.Answered
	now := time.Now().UTC()

	const update = `UPDATE queries SET answer = $2, answered = TRUE, answered_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, id, answer, now); err != nil {
		return nil, false, fmt.Errorf("answer query: %w", err)
	}

	if first && notif != nil {
		notif.QueryID = q.ID
		notif.CourseID = q.CourseID
		if err := insertNotification(ctx, tx, notif); err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit answer query: %w", err)
	}

	q.Answer = &answer
	q.Answered = true
	q.AnsweredAt = &now
	return &q, first, nil
}

// ListByCourseAndStudent returns a student's queries in a course, newest first.
func (r *QueryRepository) ListByCourseAndStudent(ctx context.Context, courseID, studentID string, limit int) ([]models.Query, error) {
	query := fmt.Sprintf(`SELECT %s FROM queries WHERE course_id = $1 AND student_id = $2 ORDER BY created_at DESC LIMIT $3`, queryColumns)
	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, query, courseID, studentID, limit); err != nil {
		return nil, fmt.Errorf("list student queries: %w", err)
	}
	return queries, nil
}

// ListAnsweredByCourseAndStudent returns a student's answered queries in
// a course, most recently answered first.
func (r *QueryRepository) ListAnsweredByCourseAndStudent(ctx context.Context, courseID, studentID string, limit int) ([]models.Query, error) {
	query := fmt.Sprintf(`SELECT %s FROM queries WHERE course_id = $1 AND student_id = $2 AND answered = TRUE ORDER BY answered_at DESC LIMIT $3`, queryColumns)
	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, query, courseID, studentID, limit); err != nil {
		return nil, fmt.Errorf("list answered student queries: %w", err)
	}
	return queries, nil
}

// ListFAQ returns the answered queries of a course, most recently
// answered first. This is both the FAQ projection and the candidate
// pool for the similarity matcher.
func (r *QueryRepository) ListFAQ(ctx context.Context, courseID string, limit int) ([]models.Query, error) {
	query := fmt.Sprintf(`SELECT %s FROM queries WHERE course_id = $1 AND answered = TRUE ORDER BY answered_at DESC LIMIT $2`, queryColumns)
	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, query, courseID, limit); err != nil {
		return nil, fmt.Errorf("list course faq: %w", err)
	}
	return queries, nil
}

// ListFAQAll returns answered queries across all courses.
func (r *QueryRepository) ListFAQAll(ctx context.Context, limit int) ([]models.Query, error) {
	query := fmt.Sprintf(`SELECT %s FROM queries WHERE answered = TRUE ORDER BY answered_at DESC LIMIT $1`, queryColumns)
	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, query, limit); err != nil {
		return nil, fmt.Errorf("list global faq: %w", err)
	}
	return queries, nil
}

// ListByTeacher returns all queries assigned to a teacher.
func (r *QueryRepository) ListByTeacher(ctx context.Context, teacherID string, limit int) ([]models.Query, error) {
	query := fmt.Sprintf(`SELECT %s FROM queries WHERE teacher_id = $1 ORDER BY created_at DESC LIMIT $2`, queryColumns)
	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, query, teacherID, limit); err != nil {
		return nil, fmt.Errorf("list teacher queries: %w", err)
	}
	return queries, nil
}

// ListPendingByTeacher returns a teacher's unanswered queries.
func (r *QueryRepository) ListPendingByTeacher(ctx context.Context, teacherID string, limit int) ([]models.Query, error) {
	query := fmt.Sprintf(`SELECT %s FROM queries WHERE teacher_id = $1 AND answered = FALSE ORDER BY created_at DESC LIMIT $2`, queryColumns)
	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, query, teacherID, limit); err != nil {
		return nil, fmt.Errorf("list pending teacher queries: %w", err)
	}
	return queries, nil
}

// ListByCourseForTeacher returns every query a teacher owns in a course.
func (r *QueryRepository) ListByCourseForTeacher(ctx context.Context, courseID, teacherID string, limit int) ([]models.Query, error) {
	query := fmt.Sprintf(`SELECT %s FROM queries WHERE course_id = $1 AND teacher_id = $2 ORDER BY created_at DESC LIMIT $3`, queryColumns)
	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, query, courseID, teacherID, limit); err != nil {
		return nil, fmt.Errorf("list course queries for teacher: %w", err)
	}
	return queries, nil
}

// ListThread returns one student's queries in a course as seen by the
// owning teacher.
func (r *QueryRepository) ListThread(ctx context.Context, courseID, studentID, teacherID string, limit int) ([]models.Query, error) {
	query := fmt.Sprintf(`SELECT %s FROM queries WHERE course_id = $1 AND student_id = $2 AND teacher_id = $3 ORDER BY created_at DESC LIMIT $4`, queryColumns)
	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, query, courseID, studentID, teacherID, limit); err != nil {
		return nil, fmt.Errorf("list student thread: %w", err)
	}
	return queries, nil
}

func insertNotification(ctx context.Context, tx *sqlx.Tx, notif *models.Notification) error {
	if notif.ID == "" {
		notif.ID = uuid.NewString()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now().UTC()
	}
	notif.Read = false

	const query = `INSERT INTO notifications (id, user_id, query_id, course_id, message, read, created_at)
		VALUES (:id, :user_id, :query_id, :course_id, :message, :read, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, notif); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}
