package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sfms-app/sfms-api/internal/models"
)

// ReplyRepository persists feedback replies. Reply creation and deletion are
// the two multi-statement operations in the system: each runs in a single
// transaction so the parent feedback's status never disagrees with the set of
// replies that exist for it.
type ReplyRepository struct {
	db *sqlx.DB
}

// NewReplyRepository constructs the repository.
func NewReplyRepository(db *sqlx.DB) *ReplyRepository {
	return &ReplyRepository{db: db}
}

// ListByFeedbackID returns all replies for a feedback, oldest first, joined
// with the replying staff member.
func (r *ReplyRepository) ListByFeedbackID(ctx context.Context, feedbackID string) ([]models.ReplyDetail, error) {
	const query = `
SELECT r.id, r.feedback_id, r.staff_id, r.reply_message, r.replied_at,
       staff.name AS staff_name, staff.email AS staff_email
FROM feedback_replies r
JOIN users staff ON staff.id = r.staff_id
WHERE r.feedback_id = $1
ORDER BY r.replied_at ASC`
	var replies []models.ReplyDetail
	if err := r.db.SelectContext(ctx, &replies, query, feedbackID); err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}

// GetByID returns one reply joined with the replying staff member.
func (r *ReplyRepository) GetByID(ctx context.Context, id string) (*models.ReplyDetail, error) {
	const query = `
SELECT r.id, r.feedback_id, r.staff_id, r.reply_message, r.replied_at,
       staff.name AS staff_name, staff.email AS staff_email
FROM feedback_replies r
JOIN users staff ON staff.id = r.staff_id
WHERE r.id = $1`
	var reply models.ReplyDetail
	if err := r.db.GetContext(ctx, &reply, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get reply by id: %w", err)
	}
	return &reply, nil
}

// CountByFeedbackID returns how many replies a feedback has.
func (r *ReplyRepository) CountByFeedbackID(ctx context.Context, feedbackID string) (int, error) {
	const query = `SELECT COUNT(*) FROM feedback_replies WHERE feedback_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, feedbackID); err != nil {
		return 0, fmt.Errorf("count replies: %w", err)
	}
	return count, nil
}

// Create inserts the reply and marks the parent feedback replied in one
// atomic unit of work. Either both writes commit or neither is applied.
func (r *ReplyRepository) Create(ctx context.Context, reply *models.FeedbackReply) (err error) {
	if reply.ID == "" {
		reply.ID = uuid.NewString()
	}
	if reply.RepliedAt.IsZero() {
		reply.RepliedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reply transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO feedback_replies (id, feedback_id, staff_id, reply_message, replied_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, insertQuery, reply.ID, reply.FeedbackID, reply.StaffID, reply.ReplyMessage, reply.RepliedAt); err != nil {
		return fmt.Errorf("insert reply: %w", err)
	}

	const statusQuery = `UPDATE feedback SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, statusQuery, reply.FeedbackID, models.FeedbackReplied, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark feedback replied: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reply: %w", err)
	}
	return nil
}

// Delete removes the reply and, when it was the last one for its feedback,
// reverts the feedback to pending, all in one atomic unit of work.
func (r *ReplyRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reply delete transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var feedbackID string
	const lookupQuery = `SELECT feedback_id FROM feedback_replies WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &feedbackID, lookupQuery, id); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lookup reply: %w", err)
	}

	const deleteQuery = `DELETE FROM feedback_replies WHERE id = $1`
	if _, err = tx.ExecContext(ctx, deleteQuery, id); err != nil {
		return fmt.Errorf("delete reply: %w", err)
	}

	var remaining int
	const countQuery = `SELECT COUNT(*) FROM feedback_replies WHERE feedback_id = $1`
	if err = tx.GetContext(ctx, &remaining, countQuery, feedbackID); err != nil {
		return fmt.Errorf("count remaining replies: %w", err)
	}

	if remaining == 0 {
		const statusQuery = `UPDATE feedback SET status = $2, updated_at = $3 WHERE id = $1`
		if _, err = tx.ExecContext(ctx, statusQuery, feedbackID, models.FeedbackPending, time.Now().UTC()); err != nil {
			return fmt.Errorf("revert feedback to pending: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reply delete: %w", err)
	}
	return nil
}
