package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/sfms-app/sfms-api/internal/models"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
)

const recentFeedbackLimit = 5

type dashboardUserRepository interface {
	Stats(ctx context.Context) (*models.UserStats, error)
}

type dashboardAssignmentRepository interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.StudentAssignment, error)
	ListActiveStudentsByStaffID(ctx context.Context, staffID string) ([]models.AssignedStudent, error)
	Stats(ctx context.Context) (*models.AssignmentStats, error)
}

type dashboardFeedbackRepository interface {
	ListByStaffID(ctx context.Context, staffID string, filter models.FeedbackFilter) ([]models.FeedbackListItem, error)
	ListByStudentID(ctx context.Context, studentID string, filter models.FeedbackFilter) ([]models.FeedbackListItem, error)
	Recent(ctx context.Context, limit int) ([]models.FeedbackListItem, error)
	StatsGlobal(ctx context.Context) (*models.FeedbackStats, error)
	StatsByStaffID(ctx context.Context, staffID string) (*models.FeedbackStats, error)
	StatsByStudentID(ctx context.Context, studentID string) (*models.FeedbackStats, error)
}

// DashboardService assembles the per-role landing pages.
type DashboardService struct {
	users       dashboardUserRepository
	assignments dashboardAssignmentRepository
	feedback    dashboardFeedbackRepository
	logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(users dashboardUserRepository, assignments dashboardAssignmentRepository, feedback dashboardFeedbackRepository, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{users: users, assignments: assignments, feedback: feedback, logger: logger}
}

// Admin assembles the system-wide dashboard.
func (s *DashboardService) Admin(ctx context.Context) (*models.AdminDashboard, error) {
	userStats, err := s.users.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user stats")
	}
	feedbackStats, err := s.feedback.StatsGlobal(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback stats")
	}
	assignmentStats, err := s.assignments.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assignment stats")
	}
	recent, err := s.feedback.Recent(ctx, recentFeedbackLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch recent feedback")
	}

	return &models.AdminDashboard{
		UserStats:       *userStats,
		FeedbackStats:   *feedbackStats,
		AssignmentStats: *assignmentStats,
		RecentFeedback:  recent,
	}, nil
}

// Staff assembles a staff member's dashboard.
func (s *DashboardService) Staff(ctx context.Context, staffID string) (*models.StaffDashboard, error) {
	students, err := s.assignments.ListActiveStudentsByStaffID(ctx, staffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assigned students")
	}
	stats, err := s.feedback.StatsByStaffID(ctx, staffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback stats")
	}
	pending := models.FeedbackPending
	recent, err := s.feedback.ListByStaffID(ctx, staffID, models.FeedbackFilter{Status: &pending})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch pending feedback")
	}
	if len(recent) > recentFeedbackLimit {
		recent = recent[:recentFeedbackLimit]
	}

	return &models.StaffDashboard{
		AssignedStudents: len(students),
		FeedbackStats:    *stats,
		PendingCount:     stats.Pending,
		RecentFeedback:   recent,
	}, nil
}

// Student assembles a student's dashboard. A missing assignment is not an
// error; it disables submission.
func (s *DashboardService) Student(ctx context.Context, studentID string) (*models.StudentDashboard, error) {
	assignment, err := s.assignments.GetByStudentID(ctx, studentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assignment")
	}
	stats, err := s.feedback.StatsByStudentID(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback stats")
	}
	recent, err := s.feedback.ListByStudentID(ctx, studentID, models.FeedbackFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feedback")
	}
	if len(recent) > recentFeedbackLimit {
		recent = recent[:recentFeedbackLimit]
	}

	return &models.StudentDashboard{
		AssignedStaff:  assignment,
		FeedbackStats:  *stats,
		RecentFeedback: recent,
		CanSubmit:      assignment != nil,
	}, nil
}

// StaffStudents returns a staff member's roster with per-student feedback
// counts.
func (s *DashboardService) StaffStudents(ctx context.Context, staffID string) ([]models.StaffStudentOverview, error) {
	students, err := s.assignments.ListActiveStudentsByStaffID(ctx, staffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assigned students")
	}

	overview := make([]models.StaffStudentOverview, 0, len(students))
	for _, student := range students {
		items, err := s.feedback.ListByStaffID(ctx, staffID, models.FeedbackFilter{StudentID: student.StudentID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student feedback")
		}
		row := models.StaffStudentOverview{AssignedStudent: student, FeedbackCount: len(items)}
		for _, item := range items {
			if item.Status == models.FeedbackPending {
				row.PendingCount++
			}
		}
		overview = append(overview, row)
	}
	return overview, nil
}
