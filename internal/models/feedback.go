package models

import "time"

// FeedbackStatus is the two-state feedback lifecycle. The only legal
// transitions are pending→replied on the first reply and replied→pending on
// deletion of the last reply.
type FeedbackStatus string

const (
	FeedbackPending FeedbackStatus = "pending"
	FeedbackReplied FeedbackStatus = "replied"
)

// Feedback is a message a student submitted to their assigned staff member.
// staff_id is denormalized from the assignment at submission time; later
// assignment changes do not move existing feedback.
type Feedback struct {
	ID          string         `db:"id" json:"id"`
	StudentID   string         `db:"student_id" json:"student_id"`
	StaffID     string         `db:"staff_id" json:"staff_id"`
	Subject     string         `db:"subject" json:"subject"`
	Message     string         `db:"message" json:"message"`
	Status      FeedbackStatus `db:"status" json:"status"`
	SubmittedAt time.Time      `db:"submitted_at" json:"submitted_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// FeedbackListItem joins both participants and the reply count for list
// views. All list queries compose this read model explicitly instead of
// repeating ad hoc joins.
type FeedbackListItem struct {
	Feedback
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	StaffName    string `db:"staff_name" json:"staff_name"`
	StaffEmail   string `db:"staff_email" json:"staff_email"`
	ReplyCount   int    `db:"reply_count" json:"reply_count"`
}

// FeedbackDetail is the joined single-row view used by detail pages.
type FeedbackDetail struct {
	Feedback
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
	StaffName    string `db:"staff_name" json:"staff_name"`
	StaffEmail   string `db:"staff_email" json:"staff_email"`
}

// FeedbackStats counts feedback by status.
type FeedbackStats struct {
	Total   int `db:"total" json:"total"`
	Pending int `db:"pending" json:"pending"`
	Replied int `db:"replied" json:"replied"`
}

// FeedbackFilter narrows list queries. Status nil means all statuses.
type FeedbackFilter struct {
	Status    *FeedbackStatus
	StudentID string
	Search    string
}
