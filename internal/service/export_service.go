package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/codeyatra/query-engine-api/internal/models"
	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
	"github.com/codeyatra/query-engine-api/pkg/export"
)

const exportListLimit = 1000

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportQueryRepository interface {
	ListByTeacher(ctx context.Context, teacherID string, limit int) ([]models.Query, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries the rendered bytes plus download metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders a teacher's query log as a downloadable file.
type ExportService struct {
	queries exportQueryRepository
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(queries exportQueryRepository, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{queries: queries, csv: csv, pdf: pdf, logger: logger}
}

// QueryLog renders the acting teacher's full query log in the requested
// format.
func (s *ExportService) QueryLog(ctx context.Context, actor *models.JWTClaims, format ExportFormat) (*ExportResult, error) {
	queries, err := s.queries.ListByTeacher(ctx, actor.UserID, exportListLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list queries for export")
	}

	dataset := buildQueryLogDataset(queries)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("query-log-%s.csv", stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Query Log")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("query-log-%s.pdf", stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func buildQueryLogDataset(queries []models.Query) export.Dataset {
	headers := []string{"Course", "Student", "Roll", "Question", "Status", "Asked At", "Answered At"}
	rows := make([]map[string]string, 0, len(queries))
	for _, q := range queries {
		status := "pending"
		answeredAt := ""
		if q.Answered {
			status = "answered"
			if q.AnsweredAt != nil {
				answeredAt = q.AnsweredAt.UTC().Format(time.RFC3339)
			}
		}
		rows = append(rows, map[string]string{
			"Course":      q.CourseName,
			"Student":     q.StudentName,
			"Roll":        q.StudentRoll,
			"Question":    q.Question,
			"Status":      status,
			"Asked At":    q.CreatedAt.UTC().Format(time.RFC3339),
			"Answered At": answeredAt,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
