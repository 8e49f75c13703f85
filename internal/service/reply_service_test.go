package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfms-app/sfms-api/internal/models"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
)

type stubReplyRepo struct {
	created *models.FeedbackReply
	detail  *models.ReplyDetail
	deleted []string
}

func (s *stubReplyRepo) Create(ctx context.Context, reply *models.FeedbackReply) error {
	reply.ID = "r1"
	s.created = reply
	return nil
}

func (s *stubReplyRepo) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubReplyRepo) GetByID(ctx context.Context, id string) (*models.ReplyDetail, error) {
	if s.detail == nil {
		return nil, sql.ErrNoRows
	}
	return s.detail, nil
}

type stubReplyFeedback struct {
	allowed bool
}

func (s *stubReplyFeedback) CanStaffView(ctx context.Context, feedbackID, staffID string) (bool, error) {
	return s.allowed, nil
}

func TestReplyServiceCreate(t *testing.T) {
	repo := &stubReplyRepo{}
	svc := NewReplyService(repo, &stubReplyFeedback{allowed: true}, nil)

	reply, err := svc.Create(context.Background(), "f1", "staff-1", CreateReplyRequest{
		Message: "  Thanks, we will slow down.  ",
	})

	require.NoError(t, err)
	assert.Equal(t, "Thanks, we will slow down.", reply.ReplyMessage)
	assert.Equal(t, "f1", repo.created.FeedbackID)
	assert.Equal(t, "staff-1", repo.created.StaffID)
}

func TestReplyServiceCreateEmptyMessage(t *testing.T) {
	svc := NewReplyService(&stubReplyRepo{}, &stubReplyFeedback{allowed: true}, nil)

	_, err := svc.Create(context.Background(), "f1", "staff-1", CreateReplyRequest{Message: "   "})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReplyServiceCreateForbidden(t *testing.T) {
	svc := NewReplyService(&stubReplyRepo{}, &stubReplyFeedback{allowed: false}, nil)

	_, err := svc.Create(context.Background(), "f1", "staff-2", CreateReplyRequest{Message: "hi"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReplyServiceDeleteOwnReply(t *testing.T) {
	repo := &stubReplyRepo{detail: &models.ReplyDetail{
		FeedbackReply: models.FeedbackReply{ID: "r1", FeedbackID: "f1", StaffID: "staff-1"},
	}}
	svc := NewReplyService(repo, &stubReplyFeedback{}, nil)

	require.NoError(t, svc.Delete(context.Background(), "r1", "staff-1"))
	assert.Equal(t, []string{"r1"}, repo.deleted)
}

func TestReplyServiceDeleteForeignReply(t *testing.T) {
	repo := &stubReplyRepo{detail: &models.ReplyDetail{
		FeedbackReply: models.FeedbackReply{ID: "r1", FeedbackID: "f1", StaffID: "staff-1"},
	}}
	svc := NewReplyService(repo, &stubReplyFeedback{}, nil)

	err := svc.Delete(context.Background(), "r1", "staff-2")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestReplyServiceDeleteNotFound(t *testing.T) {
	svc := NewReplyService(&stubReplyRepo{}, &stubReplyFeedback{}, nil)

	err := svc.Delete(context.Background(), "missing", "staff-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
