package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
)

type mockExportQueryRepo struct {
	queries []models.Query
}

func (m *mockExportQueryRepo) ListByTeacher(ctx context.Context, teacherID string, limit int) ([]models.Query, error) {
	return m.queries, nil
}

func TestExportServiceQueryLogCSV(t *testing.T) {
	answer := "Use a page table."
	answeredAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockExportQueryRepo{queries: []models.Query{
		{CourseName: "Operating Systems", StudentName: "Asha", StudentRoll: "CE-42", Question: "How does paging work?", Answer: &answer, Answered: true, CreatedAt: answeredAt.Add(-time.Hour), AnsweredAt: &answeredAt},
		{CourseName: "Operating Systems", StudentName: "Bikram", StudentRoll: "CE-07", Question: "What is a semaphore?", CreatedAt: answeredAt},
	}}
	svc := NewExportService(repo, nil, nil, zap.NewNop())

	result, err := svc.QueryLog(context.Background(), teacherClaims(), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "Course,Student,Roll,Question,Status,Asked At,Answered At")
	assert.Contains(t, body, "answered")
	assert.Contains(t, body, "pending")
	assert.Contains(t, body, "CE-42")
}

func TestExportServiceQueryLogPDF(t *testing.T) {
	svc := NewExportService(&mockExportQueryRepo{}, nil, nil, zap.NewNop())

	result, err := svc.QueryLog(context.Background(), teacherClaims(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.NotEmpty(t, result.Payload)
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&mockExportQueryRepo{}, nil, nil, zap.NewNop())

	_, err := svc.QueryLog(context.Background(), teacherClaims(), ExportFormat("xlsx"))
	require.Error(t, err)
}
