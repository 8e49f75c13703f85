package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sfms-app/sfms-api/internal/models"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
	"github.com/sfms-app/sfms-api/pkg/export"
)

type exportFeedbackRepository interface {
	ListAll(ctx context.Context, filter models.FeedbackFilter) ([]models.FeedbackListItem, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the admin feedback overview as CSV or PDF.
type ExportService struct {
	repo    exportFeedbackRepository
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	maxRows int
	logger  *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(repo exportFeedbackRepository, csv *export.CSVExporter, pdf *export.PDFExporter, maxRows int, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{repo: repo, csv: csv, pdf: pdf, maxRows: maxRows, logger: logger}
}

var feedbackExportHeaders = []string{"Subject", "Student", "Staff", "Status", "Replies", "Submitted"}

// FeedbackOverview exports all feedback matching the status filter in the
// requested format ("csv" or "pdf").
func (s *ExportService) FeedbackOverview(ctx context.Context, format, status string) (*ExportFile, error) {
	items, err := s.repo.ListAll(ctx, models.FeedbackFilter{Status: parseStatusFilter(status)})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback")
	}
	if s.maxRows > 0 && len(items) > s.maxRows {
		s.logger.Warn("export truncated",
			zap.Int("rows", len(items)),
			zap.Int("maxRows", s.maxRows),
		)
		items = items[:s.maxRows]
	}

	dataset := export.Dataset{Headers: feedbackExportHeaders, Rows: make([]map[string]string, 0, len(items))}
	for _, item := range items {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Subject":   item.Subject,
			"Student":   item.StudentName,
			"Staff":     item.StaffName,
			"Status":    string(item.Status),
			"Replies":   strconv.Itoa(item.ReplyCount),
			"Submitted": item.SubmittedAt.Format("2006-01-02 15:04"),
		})
	}

	stamp := time.Now().Format("20060102")
	switch format {
	case "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("feedback-overview-%s.csv", stamp),
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "Feedback Overview")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("feedback-overview-%s.pdf", stamp),
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "Unsupported export format")
}
