package models

// AdminDashboard aggregates system-wide counts and recent activity.
type AdminDashboard struct {
	UserStats       UserStats          `json:"user_stats"`
	FeedbackStats   FeedbackStats      `json:"feedback_stats"`
	AssignmentStats AssignmentStats    `json:"assignment_stats"`
	RecentFeedback  []FeedbackListItem `json:"recent_feedback"`
}

// StaffDashboard summarizes a staff member's inbox.
type StaffDashboard struct {
	AssignedStudents int                `json:"assigned_students"`
	FeedbackStats    FeedbackStats      `json:"feedback_stats"`
	PendingCount     int                `json:"pending_count"`
	RecentFeedback   []FeedbackListItem `json:"recent_feedback"`
}

// StudentDashboard summarizes a student's standing. CanSubmit is true only
// when the student currently holds an assignment.
type StudentDashboard struct {
	AssignedStaff  *StudentAssignment `json:"assigned_staff"`
	FeedbackStats  FeedbackStats      `json:"feedback_stats"`
	RecentFeedback []FeedbackListItem `json:"recent_feedback"`
	CanSubmit      bool               `json:"can_submit"`
}

// StaffStudentOverview is a staff roster row with per-student feedback counts.
type StaffStudentOverview struct {
	AssignedStudent
	FeedbackCount int `json:"feedback_count"`
	PendingCount  int `json:"pending_count"`
}
