package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfms-app/sfms-api/internal/models"
)

type stubDashboardUsers struct {
	stats *models.UserStats
}

func (s *stubDashboardUsers) Stats(ctx context.Context) (*models.UserStats, error) {
	return s.stats, nil
}

type stubDashboardAssignments struct {
	assignment *models.StudentAssignment
	roster     []models.AssignedStudent
	stats      *models.AssignmentStats
}

func (s *stubDashboardAssignments) GetByStudentID(ctx context.Context, studentID string) (*models.StudentAssignment, error) {
	if s.assignment == nil {
		return nil, sql.ErrNoRows
	}
	return s.assignment, nil
}

func (s *stubDashboardAssignments) ListActiveStudentsByStaffID(ctx context.Context, staffID string) ([]models.AssignedStudent, error) {
	return s.roster, nil
}

func (s *stubDashboardAssignments) Stats(ctx context.Context) (*models.AssignmentStats, error) {
	return s.stats, nil
}

type stubDashboardFeedback struct {
	byStaff   map[string][]models.FeedbackListItem
	byStudent []models.FeedbackListItem
	recent    []models.FeedbackListItem
	global    *models.FeedbackStats
	staff     *models.FeedbackStats
	student   *models.FeedbackStats
}

func (s *stubDashboardFeedback) ListByStaffID(ctx context.Context, staffID string, filter models.FeedbackFilter) ([]models.FeedbackListItem, error) {
	if filter.StudentID != "" {
		return s.byStaff[filter.StudentID], nil
	}
	return s.byStaff[""], nil
}

func (s *stubDashboardFeedback) ListByStudentID(ctx context.Context, studentID string, filter models.FeedbackFilter) ([]models.FeedbackListItem, error) {
	return s.byStudent, nil
}

func (s *stubDashboardFeedback) Recent(ctx context.Context, limit int) ([]models.FeedbackListItem, error) {
	return s.recent, nil
}

func (s *stubDashboardFeedback) StatsGlobal(ctx context.Context) (*models.FeedbackStats, error) {
	return s.global, nil
}

func (s *stubDashboardFeedback) StatsByStaffID(ctx context.Context, staffID string) (*models.FeedbackStats, error) {
	return s.staff, nil
}

func (s *stubDashboardFeedback) StatsByStudentID(ctx context.Context, studentID string) (*models.FeedbackStats, error) {
	return s.student, nil
}

func TestDashboardServiceAdmin(t *testing.T) {
	svc := NewDashboardService(
		&stubDashboardUsers{stats: &models.UserStats{Total: 10, Students: 7}},
		&stubDashboardAssignments{stats: &models.AssignmentStats{TotalAssignments: 6}},
		&stubDashboardFeedback{
			global: &models.FeedbackStats{Total: 4, Pending: 1},
			recent: []models.FeedbackListItem{{StudentName: "Riley"}},
		},
		nil,
	)

	dashboard, err := svc.Admin(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, dashboard.UserStats.Total)
	assert.Equal(t, 6, dashboard.AssignmentStats.TotalAssignments)
	assert.Equal(t, 1, dashboard.FeedbackStats.Pending)
	assert.Len(t, dashboard.RecentFeedback, 1)
}

func TestDashboardServiceStaff(t *testing.T) {
	feedback := &stubDashboardFeedback{
		staff: &models.FeedbackStats{Total: 8, Pending: 3, Replied: 5},
		byStaff: map[string][]models.FeedbackListItem{
			"": {
				{StudentName: "a"}, {StudentName: "b"}, {StudentName: "c"},
				{StudentName: "d"}, {StudentName: "e"}, {StudentName: "f"},
			},
		},
	}
	svc := NewDashboardService(
		&stubDashboardUsers{},
		&stubDashboardAssignments{roster: []models.AssignedStudent{{StudentID: "st1"}, {StudentID: "st2"}}},
		feedback,
		nil,
	)

	dashboard, err := svc.Staff(context.Background(), "staff-1")

	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.AssignedStudents)
	assert.Equal(t, 3, dashboard.PendingCount)
	assert.Len(t, dashboard.RecentFeedback, recentFeedbackLimit)
}

func TestDashboardServiceStudentWithoutAssignment(t *testing.T) {
	svc := NewDashboardService(
		&stubDashboardUsers{},
		&stubDashboardAssignments{},
		&stubDashboardFeedback{student: &models.FeedbackStats{}},
		nil,
	)

	dashboard, err := svc.Student(context.Background(), "student-1")

	require.NoError(t, err)
	assert.Nil(t, dashboard.AssignedStaff)
	assert.False(t, dashboard.CanSubmit)
}

func TestDashboardServiceStudentWithAssignment(t *testing.T) {
	svc := NewDashboardService(
		&stubDashboardUsers{},
		&stubDashboardAssignments{assignment: &models.StudentAssignment{StaffName: "Sam"}},
		&stubDashboardFeedback{
			student:   &models.FeedbackStats{Total: 2},
			byStudent: []models.FeedbackListItem{{Feedback: models.Feedback{ID: "f1"}}},
		},
		nil,
	)

	dashboard, err := svc.Student(context.Background(), "student-1")

	require.NoError(t, err)
	require.NotNil(t, dashboard.AssignedStaff)
	assert.True(t, dashboard.CanSubmit)
	assert.Len(t, dashboard.RecentFeedback, 1)
}

func TestDashboardServiceStaffStudents(t *testing.T) {
	feedback := &stubDashboardFeedback{
		byStaff: map[string][]models.FeedbackListItem{
			"st1": {
				{Feedback: models.Feedback{Status: models.FeedbackPending}},
				{Feedback: models.Feedback{Status: models.FeedbackReplied}},
			},
		},
	}
	svc := NewDashboardService(
		&stubDashboardUsers{},
		&stubDashboardAssignments{roster: []models.AssignedStudent{
			{StudentID: "st1", Name: "Riley"},
			{StudentID: "st2", Name: "Casey"},
		}},
		feedback,
		nil,
	)

	overview, err := svc.StaffStudents(context.Background(), "staff-1")

	require.NoError(t, err)
	require.Len(t, overview, 2)
	assert.Equal(t, 2, overview[0].FeedbackCount)
	assert.Equal(t, 1, overview[0].PendingCount)
	assert.Equal(t, 0, overview[1].FeedbackCount)
}
