package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sfms-app/sfms-api/internal/models"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
)

type feedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	GetByID(ctx context.Context, id string) (*models.FeedbackDetail, error)
	ListByStaffID(ctx context.Context, staffID string, filter models.FeedbackFilter) ([]models.FeedbackListItem, error)
	ListByStudentID(ctx context.Context, studentID string, filter models.FeedbackFilter) ([]models.FeedbackListItem, error)
	ListAll(ctx context.Context, filter models.FeedbackFilter) ([]models.FeedbackListItem, error)
	StatsGlobal(ctx context.Context) (*models.FeedbackStats, error)
}

type feedbackAssignmentRepository interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.StudentAssignment, error)
}

type feedbackReplyRepository interface {
	ListByFeedbackID(ctx context.Context, feedbackID string) ([]models.ReplyDetail, error)
}

// SubmitFeedbackRequest is the student payload for submitting feedback.
type SubmitFeedbackRequest struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// FeedbackThread is one feedback entry with its reply chain.
type FeedbackThread struct {
	Feedback models.FeedbackDetail `json:"feedback"`
	Replies  []models.ReplyDetail  `json:"replies"`
}

// FeedbackOverviewPage is the admin oversight screen: all feedback plus
// global counts.
type FeedbackOverviewPage struct {
	Feedback []models.FeedbackListItem `json:"feedback"`
	Stats    models.FeedbackStats      `json:"stats"`
}

// FeedbackService implements feedback submission and the role-scoped reads.
type FeedbackService struct {
	repo        feedbackRepository
	assignments feedbackAssignmentRepository
	replies     feedbackReplyRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewFeedbackService constructs a FeedbackService instance.
func NewFeedbackService(repo feedbackRepository, assignments feedbackAssignmentRepository, replies feedbackReplyRepository, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &FeedbackService{repo: repo, assignments: assignments, replies: replies, validator: validate, logger: logger}
}

// Submit creates a feedback entry from a student to their assigned staff
// member. The feedback is pinned to the staff member assigned at submission
// time; later reassignment does not move it.
func (s *FeedbackService) Submit(ctx context.Context, studentID string, req SubmitFeedbackRequest) (*models.Feedback, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if req.Subject == "" || req.Message == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Subject and message are required")
	}

	assignment, err := s.assignments.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "You are not assigned to any staff member yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assignment")
	}

	feedback := &models.Feedback{
		StudentID: studentID,
		StaffID:   assignment.StaffID,
		Subject:   req.Subject,
		Message:   req.Message,
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create feedback")
	}

	s.logger.Info("feedback submitted",
		zap.String("feedbackId", feedback.ID),
		zap.String("studentId", studentID),
		zap.String("staffId", assignment.StaffID),
	)
	return feedback, nil
}

// ListForStaff returns feedback addressed to the staff member, optionally
// narrowed by status and student.
func (s *FeedbackService) ListForStaff(ctx context.Context, staffID, status, studentID string) ([]models.FeedbackListItem, error) {
	filter := models.FeedbackFilter{
		Status:    parseStatusFilter(status),
		StudentID: studentID,
	}
	items, err := s.repo.ListByStaffID(ctx, staffID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback")
	}
	return items, nil
}

// ListForStudent returns the student's own feedback, optionally narrowed by
// status.
func (s *FeedbackService) ListForStudent(ctx context.Context, studentID, status string) ([]models.FeedbackListItem, error) {
	filter := models.FeedbackFilter{Status: parseStatusFilter(status)}
	items, err := s.repo.ListByStudentID(ctx, studentID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback")
	}
	return items, nil
}

// DetailForStaff returns a feedback thread the staff member is allowed to
// see. Feedback addressed to someone else is a forbidden, not a not-found.
func (s *FeedbackService) DetailForStaff(ctx context.Context, feedbackID, staffID string) (*FeedbackThread, error) {
	detail, err := s.getDetail(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if detail.StaffID != staffID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to view this feedback")
	}
	return s.withReplies(ctx, detail)
}

// DetailForStudent returns a feedback thread owned by the student.
func (s *FeedbackService) DetailForStudent(ctx context.Context, feedbackID, studentID string) (*FeedbackThread, error) {
	detail, err := s.getDetail(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if detail.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to view this feedback")
	}
	return s.withReplies(ctx, detail)
}

// DetailForAdmin returns any feedback thread, without an ownership check.
func (s *FeedbackService) DetailForAdmin(ctx context.Context, feedbackID string) (*FeedbackThread, error) {
	detail, err := s.getDetail(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	return s.withReplies(ctx, detail)
}

// Overview assembles the admin oversight screen across all feedback.
func (s *FeedbackService) Overview(ctx context.Context, status, search string) (*FeedbackOverviewPage, error) {
	filter := models.FeedbackFilter{
		Status: parseStatusFilter(status),
		Search: strings.TrimSpace(search),
	}
	items, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback")
	}
	stats, err := s.repo.StatsGlobal(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback stats")
	}
	return &FeedbackOverviewPage{Feedback: items, Stats: *stats}, nil
}

func (s *FeedbackService) getDetail(ctx context.Context, feedbackID string) (*models.FeedbackDetail, error) {
	detail, err := s.repo.GetByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Feedback not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback")
	}
	return detail, nil
}

func (s *FeedbackService) withReplies(ctx context.Context, detail *models.FeedbackDetail) (*FeedbackThread, error) {
	replies, err := s.replies.ListByFeedbackID(ctx, detail.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch replies")
	}
	return &FeedbackThread{Feedback: *detail, Replies: replies}, nil
}

// parseStatusFilter maps the query value to a status filter. "all", empty
// and unrecognised values all mean no filtering.
func parseStatusFilter(raw string) *models.FeedbackStatus {
	switch models.FeedbackStatus(raw) {
	case models.FeedbackPending:
		status := models.FeedbackPending
		return &status
	case models.FeedbackReplied:
		status := models.FeedbackReplied
		return &status
	}
	return nil
}
