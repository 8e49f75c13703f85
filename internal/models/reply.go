package models

import "time"

// FeedbackReply is a staff response to a feedback item. The presence of any
// reply for a feedback id is what keeps that feedback in the replied status.
type FeedbackReply struct {
	ID           string    `db:"id" json:"id"`
	FeedbackID   string    `db:"feedback_id" json:"feedback_id"`
	StaffID      string    `db:"staff_id" json:"staff_id"`
	ReplyMessage string    `db:"reply_message" json:"reply_message"`
	RepliedAt    time.Time `db:"replied_at" json:"replied_at"`
}

// ReplyDetail joins the replying staff member for display, ordered by
// replied_at ascending.
type ReplyDetail struct {
	FeedbackReply
	StaffName  string `db:"staff_name" json:"staff_name"`
	StaffEmail string `db:"staff_email" json:"staff_email"`
}
