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

type adminUserService interface {
	CreateStaff(ctx context.Context, req service.CreateAccountRequest) (*service.CreatedAccount, error)
	CreateStudent(ctx context.Context, req service.CreateAccountRequest) (*service.CreatedAccount, error)
	UpdateAccount(ctx context.Context, id string, req service.UpdateAccountRequest, expectedRole models.UserRole) (*models.User, error)
	ToggleActive(ctx context.Context, id string, expectedRole models.UserRole) error
	GetAccount(ctx context.Context, id string, expectedRole models.UserRole) (*models.User, error)
	ListStaff(ctx context.Context) ([]models.StaffListItem, error)
	ListStudents(ctx context.Context) ([]models.StudentListItem, error)
}

type adminAssignmentService interface {
	Assign(ctx context.Context, req service.AssignRequest) (*service.AssignResult, error)
	Remove(ctx context.Context, id string) error
	Overview(ctx context.Context, staffID string) (*service.AssignmentsPage, error)
}

type adminFeedbackService interface {
	Overview(ctx context.Context, status, search string) (*service.FeedbackOverviewPage, error)
	DetailForAdmin(ctx context.Context, feedbackID string) (*service.FeedbackThread, error)
}

type adminDashboardService interface {
	Admin(ctx context.Context) (*models.AdminDashboard, error)
}

type adminExportService interface {
	FeedbackOverview(ctx context.Context, format, status string) (*service.ExportFile, error)
}

// AdminHandler exposes the admin surface: dashboard, account management,
// assignment management and feedback oversight.
type AdminHandler struct {
	users       adminUserService
	assignments adminAssignmentService
	feedback    adminFeedbackService
	dashboard   adminDashboardService
	export      adminExportService
	logger      *zap.Logger
}

// NewAdminHandler constructs an AdminHandler instance.
func NewAdminHandler(users adminUserService, assignments adminAssignmentService, feedback adminFeedbackService, dashboard adminDashboardService, export adminExportService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		users:       users,
		assignments: assignments,
		feedback:    feedback,
		dashboard:   dashboard,
		export:      export,
		logger:      logger,
	}
}

// Dashboard godoc
// @Summary Admin dashboard with system-wide counts
// @Tags admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.dashboard.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard)
}

// ListStaff godoc
// @Summary List staff accounts with assigned-student counts
// @Tags admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/staff [get]
func (h *AdminHandler) ListStaff(c *gin.Context) {
	items, err := h.users.ListStaff(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// CreateStaff godoc
// @Summary Create a staff account
// @Tags admin
// @Accept json
// @Produce json
// @Param request body service.CreateAccountRequest true "account"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/staff [post]
func (h *AdminHandler) CreateStaff(c *gin.Context) {
	h.createAccount(c, h.users.CreateStaff, "Staff account created")
}

// GetStaff returns one staff account for the edit form.
func (h *AdminHandler) GetStaff(c *gin.Context) {
	h.getAccount(c, models.RoleStaff)
}

// UpdateStaff edits a staff account's name and email.
func (h *AdminHandler) UpdateStaff(c *gin.Context) {
	h.updateAccount(c, models.RoleStaff, "Staff account updated")
}

// ToggleStaff flips a staff account's active flag.
func (h *AdminHandler) ToggleStaff(c *gin.Context) {
	h.toggleAccount(c, models.RoleStaff, "Staff account status updated")
}

// ListStudents godoc
// @Summary List student accounts with their current assignment
// @Tags admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *AdminHandler) ListStudents(c *gin.Context) {
	items, err := h.users.ListStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// CreateStudent godoc
// @Summary Create a student account
// @Tags admin
// @Accept json
// @Produce json
// @Param request body service.CreateAccountRequest true "account"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/students [post]
func (h *AdminHandler) CreateStudent(c *gin.Context) {
	h.createAccount(c, h.users.CreateStudent, "Student account created")
}

// GetStudent returns one student account for the edit form.
func (h *AdminHandler) GetStudent(c *gin.Context) {
	h.getAccount(c, models.RoleStudent)
}

// UpdateStudent edits a student account's name and email.
func (h *AdminHandler) UpdateStudent(c *gin.Context) {
	h.updateAccount(c, models.RoleStudent, "Student account updated")
}

// ToggleStudent flips a student account's active flag.
func (h *AdminHandler) ToggleStudent(c *gin.Context) {
	h.toggleAccount(c, models.RoleStudent, "Student account status updated")
}

// Assignments godoc
// @Summary Assignment overview with pickers for new pairings
// @Tags admin
// @Produce json
// @Param staff query string false "narrow the unassigned picker to students not paired with this staff member"
// @Success 200 {object} response.Envelope
// @Router /admin/assignments [get]
func (h *AdminHandler) Assignments(c *gin.Context) {
	page, err := h.assignments.Overview(c.Request.Context(), c.Query("staff"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// Assign godoc
// @Summary Assign students to a staff member
// @Tags admin
// @Accept json
// @Produce json
// @Param request body service.AssignRequest true "pairings"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/assignments [post]
func (h *AdminHandler) Assign(c *gin.Context) {
	var req service.AssignRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Debug("malformed assign payload", zap.Error(err))
	}
	result, err := h.assignments.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Students assigned", result)
}

// RemoveAssignment godoc
// @Summary Remove a staff-student pairing
// @Tags admin
// @Produce json
// @Param id path string true "assignment id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/assignments/{id}/delete [post]
func (h *AdminHandler) RemoveAssignment(c *gin.Context) {
	if err := h.assignments.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Assignment removed", nil)
}

// FeedbackOverview godoc
// @Summary All feedback with status filter and search
// @Tags admin
// @Produce json
// @Param filter query string false "all, pending or replied"
// @Param q query string false "subject/participant search"
// @Success 200 {object} response.Envelope
// @Router /admin/feedback [get]
func (h *AdminHandler) FeedbackOverview(c *gin.Context) {
	page, err := h.feedback.Overview(c.Request.Context(), c.Query("filter"), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// FeedbackDetail godoc
// @Summary One feedback thread, any participant
// @Tags admin
// @Produce json
// @Param id path string true "feedback id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/feedback/{id} [get]
func (h *AdminHandler) FeedbackDetail(c *gin.Context) {
	thread, err := h.feedback.DetailForAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, thread)
}

// ExportFeedback godoc
// @Summary Download the feedback overview as CSV or PDF
// @Tags admin
// @Produce text/csv,application/pdf
// @Param format query string true "csv or pdf"
// @Param filter query string false "all, pending or replied"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /admin/feedback/export [get]
func (h *AdminHandler) ExportFeedback(c *gin.Context) {
	file, err := h.export.FeedbackOverview(c.Request.Context(), c.Query("format"), c.Query("filter"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func (h *AdminHandler) createAccount(c *gin.Context, create func(context.Context, service.CreateAccountRequest) (*service.CreatedAccount, error), message string) {
	var req service.CreateAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Debug("malformed account payload", zap.Error(err))
	}
	created, err := create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message, created)
}

func (h *AdminHandler) getAccount(c *gin.Context, role models.UserRole) {
	user, err := h.users.GetAccount(c.Request.Context(), c.Param("id"), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

func (h *AdminHandler) updateAccount(c *gin.Context, role models.UserRole, message string) {
	var req service.UpdateAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Debug("malformed account payload", zap.Error(err))
	}
	user, err := h.users.UpdateAccount(c.Request.Context(), c.Param("id"), req, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, message, user)
}

func (h *AdminHandler) toggleAccount(c *gin.Context, role models.UserRole, message string) {
	if err := h.users.ToggleActive(c.Request.Context(), c.Param("id"), role); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, message, nil)
}
