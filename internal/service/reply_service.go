package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sfms-app/sfms-api/internal/models"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
)

type replyRepository interface {
	Create(ctx context.Context, reply *models.FeedbackReply) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.ReplyDetail, error)
}

type replyFeedbackRepository interface {
	CanStaffView(ctx context.Context, feedbackID, staffID string) (bool, error)
}

// CreateReplyRequest is the staff payload for replying to feedback.
type CreateReplyRequest struct {
	Message string `json:"message"`
}

// ReplyService implements the reply lifecycle. Creating a reply marks the
// feedback replied; deleting the last reply reverts it to pending. Both
// transitions run inside the repository transaction.
type ReplyService struct {
	repo     replyRepository
	feedback replyFeedbackRepository
	logger   *zap.Logger
}

// NewReplyService constructs a ReplyService instance.
func NewReplyService(repo replyRepository, feedback replyFeedbackRepository, logger *zap.Logger) *ReplyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplyService{repo: repo, feedback: feedback, logger: logger}
}

// Create adds a staff reply to a feedback entry the staff member owns.
func (s *ReplyService) Create(ctx context.Context, feedbackID, staffID string, req CreateReplyRequest) (*models.FeedbackReply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Reply message is required")
	}

	allowed, err := s.feedback.CanStaffView(ctx, feedbackID, staffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check feedback ownership")
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to reply to this feedback")
	}

	reply := &models.FeedbackReply{
		FeedbackID:   feedbackID,
		StaffID:      staffID,
		ReplyMessage: message,
	}
	if err := s.repo.Create(ctx, reply); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reply")
	}

	s.logger.Info("reply created",
		zap.String("replyId", reply.ID),
		zap.String("feedbackId", feedbackID),
		zap.String("staffId", staffID),
	)
	return reply, nil
}

// Delete removes a reply authored by the staff member.
func (s *ReplyService) Delete(ctx context.Context, replyID, staffID string) error {
	reply, err := s.repo.GetByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Reply not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch reply")
	}
	if reply.StaffID != staffID {
		return appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to delete this reply")
	}

	if err := s.repo.Delete(ctx, replyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Reply not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete reply")
	}

	s.logger.Info("reply deleted",
		zap.String("replyId", replyID),
		zap.String("staffId", staffID),
	)
	return nil
}
