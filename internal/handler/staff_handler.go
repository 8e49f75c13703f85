package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sfms-app/sfms-api/internal/middleware"
	"github.com/sfms-app/sfms-api/internal/models"
	"github.com/sfms-app/sfms-api/internal/service"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
	"github.com/sfms-app/sfms-api/pkg/response"
)

type staffFeedbackService interface {
	ListForStaff(ctx context.Context, staffID, status, studentID string) ([]models.FeedbackListItem, error)
	DetailForStaff(ctx context.Context, feedbackID, staffID string) (*service.FeedbackThread, error)
}

type staffReplyService interface {
	Create(ctx context.Context, feedbackID, staffID string, req service.CreateReplyRequest) (*models.FeedbackReply, error)
	Delete(ctx context.Context, replyID, staffID string) error
}

type staffDashboardService interface {
	Staff(ctx context.Context, staffID string) (*models.StaffDashboard, error)
	StaffStudents(ctx context.Context, staffID string) ([]models.StaffStudentOverview, error)
}

// StaffHandler exposes the staff surface: dashboard, roster, feedback inbox
// and replies.
type StaffHandler struct {
	feedback  staffFeedbackService
	replies   staffReplyService
	dashboard staffDashboardService
	logger    *zap.Logger
}

// NewStaffHandler constructs a StaffHandler instance.
func NewStaffHandler(feedback staffFeedbackService, replies staffReplyService, dashboard staffDashboardService, logger *zap.Logger) *StaffHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffHandler{feedback: feedback, replies: replies, dashboard: dashboard, logger: logger}
}

// Dashboard godoc
// @Summary Staff dashboard with inbox counts
// @Tags staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff/dashboard [get]
func (h *StaffHandler) Dashboard(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	dashboard, err := h.dashboard.Staff(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard)
}

// Students godoc
// @Summary Assigned students with per-student feedback counts
// @Tags staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff/students [get]
func (h *StaffHandler) Students(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	roster, err := h.dashboard.StaffStudents(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// Feedback godoc
// @Summary Feedback addressed to the signed-in staff member
// @Tags staff
// @Produce json
// @Param filter query string false "all, pending or replied"
// @Param student query string false "narrow to one student"
// @Success 200 {object} response.Envelope
// @Router /staff/feedback [get]
func (h *StaffHandler) Feedback(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	items, err := h.feedback.ListForStaff(c.Request.Context(), identity.UserID, c.Query("filter"), c.Query("student"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// FeedbackDetail godoc
// @Summary One feedback thread addressed to the staff member
// @Tags staff
// @Produce json
// @Param id path string true "feedback id"
// @Success 200 {object} response.Envelope
// @Failure 403,404 {object} response.Envelope
// @Router /staff/feedback/{id} [get]
func (h *StaffHandler) FeedbackDetail(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	thread, err := h.feedback.DetailForStaff(c.Request.Context(), c.Param("id"), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thread)
}

// Reply godoc
// @Summary Reply to a feedback entry
// @Tags staff
// @Accept json
// @Produce json
// @Param id path string true "feedback id"
// @Param request body service.CreateReplyRequest true "reply"
// @Success 201 {object} response.Envelope
// @Failure 400,403 {object} response.Envelope
// @Router /staff/feedback/{id}/reply [post]
func (h *StaffHandler) Reply(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req service.CreateReplyRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Debug("malformed reply payload", zap.Error(err))
	}
	reply, err := h.replies.Create(c.Request.Context(), c.Param("id"), identity.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Reply sent", reply)
}

// DeleteReply godoc
// @Summary Delete an own reply, reverting the feedback when it was the last
// @Tags staff
// @Produce json
// @Param id path string true "reply id"
// @Success 200 {object} response.Envelope
// @Failure 403,404 {object} response.Envelope
// @Router /staff/replies/{id}/delete [post]
func (h *StaffHandler) DeleteReply(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.replies.Delete(c.Request.Context(), c.Param("id"), identity.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Reply deleted", nil)
}

// requireIdentity pulls the session identity set by the auth gate. Routes
// are registered behind the gate, so a missing identity is a server fault.
func requireIdentity(c *gin.Context) (*models.Identity, bool) {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return nil, false
	}
	return identity, true
}
