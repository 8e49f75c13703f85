package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sfms-app/sfms-api/internal/models"
)

// feedbackListSelect is the shared read model for feedback lists: both
// participants joined by name and email plus the reply count.
const feedbackListSelect = `
SELECT f.id, f.student_id, f.staff_id, f.subject, f.message, f.status, f.submitted_at, f.updated_at,
       student.name AS student_name, student.email AS student_email,
       staff.name AS staff_name, staff.email AS staff_email,
       (SELECT COUNT(*) FROM feedback_replies WHERE feedback_id = f.id) AS reply_count
FROM feedback f
JOIN users student ON student.id = f.student_id
JOIN users staff ON staff.id = f.staff_id`

// FeedbackRepository persists feedback rows and their joined read models.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a feedback row with the default pending status.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.Status == "" {
		feedback.Status = models.FeedbackPending
	}
	now := time.Now().UTC()
	if feedback.SubmittedAt.IsZero() {
		feedback.SubmittedAt = now
	}
	feedback.UpdatedAt = now
	const query = `INSERT INTO feedback (id, student_id, staff_id, subject, message, status, submitted_at, updated_at)
		VALUES (:id, :student_id, :staff_id, :subject, :message, :status, :submitted_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, feedback); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// GetByID fetches the joined detail view of one feedback.
func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*models.FeedbackDetail, error) {
	const query = `
SELECT f.id, f.student_id, f.staff_id, f.subject, f.message, f.status, f.submitted_at, f.updated_at,
       student.name AS student_name, student.email AS student_email,
       staff.name AS staff_name, staff.email AS staff_email
FROM feedback f
JOIN users student ON student.id = f.student_id
JOIN users staff ON staff.id = f.staff_id
WHERE f.id = $1`
	var detail models.FeedbackDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get feedback by id: %w", err)
	}
	return &detail, nil
}

// ListByStaffID returns the staff inbox filtered by status and student,
// newest first.
func (r *FeedbackRepository) ListByStaffID(ctx context.Context, staffID string, filter models.FeedbackFilter) ([]models.FeedbackListItem, error) {
	builder := strings.Builder{}
	builder.WriteString(feedbackListSelect)
	builder.WriteString(" WHERE f.staff_id = $1")
	args := []interface{}{staffID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		builder.WriteString(fmt.Sprintf(" AND f.status = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		builder.WriteString(fmt.Sprintf(" AND f.student_id = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY f.submitted_at DESC")

	var items []models.FeedbackListItem
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list feedback by staff: %w", err)
	}
	return items, nil
}

// ListByStudentID returns a student's own feedback, newest first.
func (r *FeedbackRepository) ListByStudentID(ctx context.Context, studentID string, filter models.FeedbackFilter) ([]models.FeedbackListItem, error) {
	builder := strings.Builder{}
	builder.WriteString(feedbackListSelect)
	builder.WriteString(" WHERE f.student_id = $1")
	args := []interface{}{studentID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		builder.WriteString(fmt.Sprintf(" AND f.status = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY f.submitted_at DESC")

	var items []models.FeedbackListItem
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list feedback by student: %w", err)
	}
	return items, nil
}

// ListAll returns the admin overview, optionally narrowed by a subject or
// message search term.
func (r *FeedbackRepository) ListAll(ctx context.Context, filter models.FeedbackFilter) ([]models.FeedbackListItem, error) {
	builder := strings.Builder{}
	builder.WriteString(feedbackListSelect)
	args := make([]interface{}, 0, 2)
	conditions := make([]string, 0, 2)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("f.status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(f.subject) LIKE $%d OR LOWER(f.message) LIKE $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY f.submitted_at DESC")

	var items []models.FeedbackListItem
	if err := r.db.SelectContext(ctx, &items, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list all feedback: %w", err)
	}
	return items, nil
}

// Recent returns the latest feedback across the system.
func (r *FeedbackRepository) Recent(ctx context.Context, limit int) ([]models.FeedbackListItem, error) {
	if limit <= 0 {
		limit = 10
	}
	query := feedbackListSelect + fmt.Sprintf(" ORDER BY f.submitted_at DESC LIMIT %d", limit)
	var items []models.FeedbackListItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("recent feedback: %w", err)
	}
	return items, nil
}

// CanStaffView reports whether the feedback belongs to the staff member. It
// is the ownership gate consulted before detail views and replies.
func (r *FeedbackRepository) CanStaffView(ctx context.Context, feedbackID, staffID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM feedback WHERE id = $1 AND staff_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, feedbackID, staffID); err != nil {
		return false, fmt.Errorf("check staff feedback ownership: %w", err)
	}
	return count > 0, nil
}

// CanStudentView reports whether the feedback belongs to the student.
func (r *FeedbackRepository) CanStudentView(ctx context.Context, feedbackID, studentID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM feedback WHERE id = $1 AND student_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, feedbackID, studentID); err != nil {
		return false, fmt.Errorf("check student feedback ownership: %w", err)
	}
	return count > 0, nil
}

// StatsGlobal counts feedback by status across the system.
func (r *FeedbackRepository) StatsGlobal(ctx context.Context) (*models.FeedbackStats, error) {
	const query = `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'replied') AS replied
	FROM feedback`
	var stats models.FeedbackStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("feedback stats: %w", err)
	}
	return &stats, nil
}

// StatsByStaffID counts a staff member's feedback by status.
func (r *FeedbackRepository) StatsByStaffID(ctx context.Context, staffID string) (*models.FeedbackStats, error) {
	const query = `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'replied') AS replied
	FROM feedback WHERE staff_id = $1`
	var stats models.FeedbackStats
	if err := r.db.GetContext(ctx, &stats, query, staffID); err != nil {
		return nil, fmt.Errorf("feedback stats by staff: %w", err)
	}
	return &stats, nil
}

// StatsByStudentID counts a student's feedback by status.
func (r *FeedbackRepository) StatsByStudentID(ctx context.Context, studentID string) (*models.FeedbackStats, error) {
	const query = `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'replied') AS replied
	FROM feedback WHERE student_id = $1`
	var stats models.FeedbackStats
	if err := r.db.GetContext(ctx, &stats, query, studentID); err != nil {
		return nil, fmt.Errorf("feedback stats by student: %w", err)
	}
	return &stats, nil
}
