package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeyatra/query-engine-api/internal/models"
)

func TestUserRepositoryDeleteTeacherCascade(t *testing.T) {
	db, mock, cleanup := newQueryMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM courses WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1").AddRow("c2"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notifications WHERE user_id = $1 OR course_id IN (SELECT id FROM courses WHERE teacher_id = $1)")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ratings WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM queries WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM courses WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1 AND role = $2")).
		WithArgs("t1", models.RoleTeacher).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	impact, err := repo.DeleteTeacherCascade(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, impact.TeacherIDs)
	assert.Equal(t, []string{"c1", "c2"}, impact.CourseIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeleteStudentCascadeRefreshesTeachers(t *testing.T) {
	db, mock, cleanup := newQueryMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT teacher_id, course_id FROM queries WHERE student_id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"teacher_id", "course_id"}).
			AddRow("t1", "c1").
			AddRow("t2", "c1"))
	mock.ExpectExec("DELETE FROM notifications").
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ratings WHERE student_id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id IN (SELECT DISTINCT teacher_id FROM queries WHERE student_id = $1)")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM queries WHERE student_id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1 AND role = $2")).
		WithArgs("s1", models.RoleStudent).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	impact, err := repo.DeleteStudentCascade(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, impact.TeacherIDs)
	assert.Equal(t, []string{"c1"}, impact.CourseIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeleteStudentCascadeUnknown(t *testing.T) {
	db, mock, cleanup := newQueryMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT DISTINCT teacher_id, course_id FROM queries").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"teacher_id", "course_id"}))
	mock.ExpectExec("DELETE FROM notifications").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM ratings").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM queries").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM users").
		WithArgs("missing", models.RoleStudent).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.DeleteStudentCascade(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newQueryMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("other@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByEmail(context.Background(), "other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
