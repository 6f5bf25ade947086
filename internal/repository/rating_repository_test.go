package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeyatra/query-engine-api/internal/models"
)

func TestRatingRepositoryUpsertAndRecompute(t *testing.T) {
	db, mock, cleanup := newQueryMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ratings").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT $1 AS teacher_id, COALESCE(AVG(value), 0) AS average_rating, COUNT(*) AS total_ratings FROM ratings WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"teacher_id", "average_rating", "total_ratings"}).AddRow("t1", 4.5, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET average_rating = $2, total_ratings = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("t1", 4.5, 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	summary, err := repo.UpsertAndRecompute(context.Background(), &models.Rating{QueryID: "q1", TeacherID: "t1", StudentID: "s1", Value: 5})
	require.NoError(t, err)
	assert.Equal(t, 4.5, summary.AverageRating)
	assert.Equal(t, 2, summary.TotalRatings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryUpsertRollsBackOnRecomputeFailure(t *testing.T) {
	db, mock, cleanup := newQueryMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ratings").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .+ FROM ratings WHERE teacher_id").
		WillReturnError(assertableErr("recompute failed"))
	mock.ExpectRollback()

	_, err := repo.UpsertAndRecompute(context.Background(), &models.Rating{QueryID: "q1", TeacherID: "t1", Value: 3})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingRepositoryTeacherSummary(t *testing.T) {
	db, mock, cleanup := newQueryMock(t)
	defer cleanup()
	repo := NewRatingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT $1 AS teacher_id, COALESCE(AVG(value), 0) AS average_rating, COUNT(*) AS total_ratings FROM ratings WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"teacher_id", "average_rating", "total_ratings"}).AddRow("t1", 0.0, 0))

	summary, err := repo.TeacherSummary(context.Background(), "t1")
	require.NoError(t, err)
	assert.Zero(t, summary.AverageRating)
	assert.Zero(t, summary.TotalRatings)
	assert.NoError(t, mock.ExpectationsWereMet())
}
