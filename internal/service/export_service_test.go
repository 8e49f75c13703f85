package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfms-app/sfms-api/internal/models"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
	"github.com/sfms-app/sfms-api/pkg/export"
)

type stubExportRepo struct {
	items  []models.FeedbackListItem
	filter models.FeedbackFilter
}

func (s *stubExportRepo) ListAll(ctx context.Context, filter models.FeedbackFilter) ([]models.FeedbackListItem, error) {
	s.filter = filter
	return s.items, nil
}

func exportItems(n int) []models.FeedbackListItem {
	items := make([]models.FeedbackListItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.FeedbackListItem{
			Feedback: models.Feedback{
				Subject:     "Course pacing",
				Status:      models.FeedbackPending,
				SubmittedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			},
			StudentName: "Riley Morgan",
			StaffName:   "Sam Carter",
			ReplyCount:  1,
		})
	}
	return items
}

func TestExportServiceFeedbackOverviewCSV(t *testing.T) {
	repo := &stubExportRepo{items: exportItems(2)}
	svc := NewExportService(repo, export.NewCSVExporter(), export.NewPDFExporter(), 100, nil)

	file, err := svc.FeedbackOverview(context.Background(), "csv", "pending")

	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	body := string(file.Content)
	assert.Contains(t, body, "Subject,Student,Staff,Status,Replies,Submitted")
	assert.Contains(t, body, "Riley Morgan")
	require.NotNil(t, repo.filter.Status)
	assert.Equal(t, models.FeedbackPending, *repo.filter.Status)
}

func TestExportServiceFeedbackOverviewPDF(t *testing.T) {
	repo := &stubExportRepo{items: exportItems(1)}
	svc := NewExportService(repo, export.NewCSVExporter(), export.NewPDFExporter(), 100, nil)

	file, err := svc.FeedbackOverview(context.Background(), "pdf", "")

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.NotEmpty(t, file.Content)
}

func TestExportServiceTruncatesAtMaxRows(t *testing.T) {
	repo := &stubExportRepo{items: exportItems(10)}
	svc := NewExportService(repo, export.NewCSVExporter(), export.NewPDFExporter(), 3, nil)

	file, err := svc.FeedbackOverview(context.Background(), "csv", "")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	assert.Len(t, lines, 4) // header plus three rows
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&stubExportRepo{}, export.NewCSVExporter(), export.NewPDFExporter(), 100, nil)

	_, err := svc.FeedbackOverview(context.Background(), "xlsx", "")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
