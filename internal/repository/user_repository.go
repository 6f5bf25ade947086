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

const userColumns = `id, email, password_hash, full_name, roll, role, active, average_rating, total_ratings, created_at, updated_at`

// UserRepository manages persistence for users of all roles, including
// the teacher and student deletion cascades.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID fetches a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail fetches a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(email) = LOWER($1)`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail checks if a user already registered the email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check user email: %w", err)
	}
	return true, nil
}

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, email, password_hash, full_name, roll, role, active, average_rating, total_ratings, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :full_name, :roll, :role, :active, :average_rating, :total_ratings, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// ListByRole returns users holding the given role, newest first.
func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole, limit int) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = $1 ORDER BY created_at DESC LIMIT $2`, userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, role, limit); err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}

// CascadeImpact lists the teachers and courses whose cached summaries
// went stale because a deletion cascade removed rows under them.
type CascadeImpact struct {
	TeacherIDs []string
	CourseIDs  []string
}

// DeleteTeacherCascade removes a teacher, their courses and every
// dependent query, rating and notification in one transaction. It
// reports the removed course IDs so callers can drop stale cache
// entries.
func (r *UserRepository) DeleteTeacherCascade(ctx context.Context, teacherID string) (*CascadeImpact, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin teacher cascade: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	impact := &CascadeImpact{TeacherIDs: []string{teacherID}}
	if err := tx.SelectContext(ctx, &impact.CourseIDs, `SELECT id FROM courses WHERE teacher_id = $1`, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher courses for cascade: %w", err)
	}

	steps := []struct {
		name  string
		query string
	}{
		{"delete teacher notifications", `DELETE FROM notifications WHERE user_id = $1 OR course_id IN (SELECT id FROM courses WHERE teacher_id = $1)`},
		{"delete teacher ratings", `DELETE FROM ratings WHERE teacher_id = $1`},
		{"delete teacher queries", `DELETE FROM queries WHERE teacher_id = $1`},
		{"delete teacher courses", `DELETE FROM courses WHERE teacher_id = $1`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, teacherID); err != nil {
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1 AND role = $2`, teacherID, models.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("delete teacher: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("delete teacher result: %w", err)
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit teacher cascade: %w", err)
	}
	return impact, nil
}

// DeleteStudentCascade removes a student with their queries, ratings
// and every notification that references those queries. It reports the
// teachers and courses the removed queries pointed at so callers can
// drop stale cache entries.
func (r *UserRepository) DeleteStudentCascade(ctx context.Context, studentID string) (*CascadeImpact, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin student cascade: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var touched []struct {
		TeacherID string `db:"teacher_id"`
		CourseID  string `db:"course_id"`
	}
	if err := tx.SelectContext(ctx, &touched, `SELECT DISTINCT teacher_id, course_id FROM queries WHERE student_id = $1`, studentID); err != nil {
		return nil, fmt.Errorf("list touched teachers for cascade: %w", err)
	}
	impact := &CascadeImpact{}
	seenTeacher := make(map[string]bool)
	seenCourse := make(map[string]bool)
	for _, row := range touched {
		if !seenTeacher[row.TeacherID] {
			seenTeacher[row.TeacherID] = true
			impact.TeacherIDs = append(impact.TeacherIDs, row.TeacherID)
		}
		if !seenCourse[row.CourseID] {
			seenCourse[row.CourseID] = true
			impact.CourseIDs = append(impact.CourseIDs, row.CourseID)
		}
	}

	steps := []struct {
		name  string
		query string
	}{
		{"delete student notifications", `DELETE FROM notifications WHERE user_id = $1 OR query_id IN (SELECT id FROM queries WHERE student_id = $1)`},
		{"delete student ratings", `DELETE FROM ratings WHERE student_id = $1`},
		// The student's queries still exist here and name every teacher
		// whose denormalized summary lost ratings above.
		{"refresh teacher rating summaries", `UPDATE users SET
			average_rating = COALESCE((SELECT AVG(value) FROM ratings WHERE teacher_id = users.id), 0),
			total_ratings = (SELECT COUNT(*) FROM ratings WHERE teacher_id = users.id),
			updated_at = NOW()
		WHERE id IN (SELECT DISTINCT teacher_id FROM queries WHERE student_id = $1)`},
		{"delete student queries", `DELETE FROM queries WHERE student_id = $1`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, studentID); err != nil {
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1 AND role = $2`, studentID, models.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("delete student result: %w", err)
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit student cascade: %w", err)
	}
	return impact, nil
}
