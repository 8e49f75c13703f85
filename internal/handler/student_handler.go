package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sfms-app/sfms-api/internal/models"
	"github.com/sfms-app/sfms-api/internal/service"
	"github.com/sfms-app/sfms-api/pkg/response"
)

type studentFeedbackService interface {
	Submit(ctx context.Context, studentID string, req service.SubmitFeedbackRequest) (*models.Feedback, error)
	ListForStudent(ctx context.Context, studentID, status string) ([]models.FeedbackListItem, error)
	DetailForStudent(ctx context.Context, feedbackID, studentID string) (*service.FeedbackThread, error)
}

type studentDashboardService interface {
	Student(ctx context.Context, studentID string) (*models.StudentDashboard, error)
}

// StudentHandler exposes the student surface: dashboard, submission and
// own-feedback reads.
type StudentHandler struct {
	feedback  studentFeedbackService
	dashboard studentDashboardService
	logger    *zap.Logger
}

// NewStudentHandler constructs a StudentHandler instance.
func NewStudentHandler(feedback studentFeedbackService, dashboard studentDashboardService, logger *zap.Logger) *StudentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{feedback: feedback, dashboard: dashboard, logger: logger}
}

// Dashboard godoc
// @Summary Student dashboard with assignment and feedback standing
// @Tags student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/dashboard [get]
func (h *StudentHandler) Dashboard(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	dashboard, err := h.dashboard.Student(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard)
}

// SubmitForm godoc
// @Summary Submission form view-model
// @Tags student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/submit [get]
func (h *StudentHandler) SubmitForm(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	dashboard, err := h.dashboard.Student(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"assigned_staff": dashboard.AssignedStaff,
		"can_submit":     dashboard.CanSubmit,
	})
}

// Submit godoc
// @Summary Submit feedback to the assigned staff member
// @Tags student
// @Accept json
// @Produce json
// @Param request body service.SubmitFeedbackRequest true "feedback"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student/submit [post]
func (h *StudentHandler) Submit(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req service.SubmitFeedbackRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Debug("malformed feedback payload", zap.Error(err))
	}
	feedback, err := h.feedback.Submit(c.Request.Context(), identity.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Feedback submitted", feedback)
}

// Feedback godoc
// @Summary The student's own feedback entries
// @Tags student
// @Produce json
// @Param filter query string false "all, pending or replied"
// @Success 200 {object} response.Envelope
// @Router /student/feedback [get]
func (h *StudentHandler) Feedback(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	items, err := h.feedback.ListForStudent(c.Request.Context(), identity.UserID, c.Query("filter"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// FeedbackDetail godoc
// @Summary One of the student's own feedback threads
// @Tags student
// @Produce json
// @Param id path string true "feedback id"
// @Success 200 {object} response.Envelope
// @Failure 403,404 {object} response.Envelope
// @Router /student/feedback/{id} [get]
func (h *StudentHandler) FeedbackDetail(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	thread, err := h.feedback.DetailForStudent(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thread)
}
