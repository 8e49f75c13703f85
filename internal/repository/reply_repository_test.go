package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfms-app/sfms-api/internal/models"
)

func newReplyMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReplyRepositoryCreateCommitsBothWrites(t *testing.T) {
	db, mock, cleanup := newReplyMock(t)
	defer cleanup()
	repo := NewReplyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedback_replies").
		WithArgs(sqlmock.AnyArg(), "fb-1", "staff-1", "On it", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE feedback SET status").
		WithArgs("fb-1", "replied", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reply := &models.FeedbackReply{FeedbackID: "fb-1", StaffID: "staff-1", ReplyMessage: "On it"}
	require.NoError(t, repo.Create(context.Background(), reply))
	assert.NotEmpty(t, reply.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyRepositoryCreateRollsBackOnStatusFailure(t *testing.T) {
	db, mock, cleanup := newReplyMock(t)
	defer cleanup()
	repo := NewReplyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feedback_replies").
		WithArgs(sqlmock.AnyArg(), "fb-1", "staff-1", "On it", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE feedback SET status").
		WithArgs("fb-1", "replied", sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.FeedbackReply{FeedbackID: "fb-1", StaffID: "staff-1", ReplyMessage: "On it"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyRepositoryDeleteLastReplyRevertsStatus(t *testing.T) {
	db, mock, cleanup := newReplyMock(t)
	defer cleanup()
	repo := NewReplyRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT feedback_id FROM feedback_replies WHERE id").
		WithArgs("reply-1").
		WillReturnRows(sqlmock.NewRows([]string{"feedback_id"}).AddRow("fb-1"))
	mock.ExpectExec("DELETE FROM feedback_replies WHERE id").
		WithArgs("reply-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM feedback_replies WHERE feedback_id`).
		WithArgs("fb-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE feedback SET status").
		WithArgs("fb-1", "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "reply-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyRepositoryDeleteKeepsStatusWhileRepliesRemain(t *testing.T) {
	db, mock, cleanup := newReplyMock(t)
	defer cleanup()
	repo := NewReplyRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT feedback_id FROM feedback_replies WHERE id").
		WithArgs("reply-2").
		WillReturnRows(sqlmock.NewRows([]string{"feedback_id"}).AddRow("fb-1"))
	mock.ExpectExec("DELETE FROM feedback_replies WHERE id").
		WithArgs("reply-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM feedback_replies WHERE feedback_id`).
		WithArgs("fb-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "reply-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyRepositoryDeleteMissingReply(t *testing.T) {
	db, mock, cleanup := newReplyMock(t)
	defer cleanup()
	repo := NewReplyRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT feedback_id FROM feedback_replies WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyRepositoryListByFeedbackID(t *testing.T) {
	db, mock, cleanup := newReplyMock(t)
	defer cleanup()
	repo := NewReplyRepository(db)

	rows := sqlmock.NewRows([]string{"id", "feedback_id", "staff_id", "reply_message", "replied_at", "staff_name", "staff_email"}).
		AddRow("reply-1", "fb-1", "staff-1", "First", time.Now(), "Staff One", "s@x.com").
		AddRow("reply-2", "fb-1", "staff-1", "Second", time.Now(), "Staff One", "s@x.com")
	mock.ExpectQuery("SELECT r.id, r.feedback_id, r.staff_id").
		WithArgs("fb-1").
		WillReturnRows(rows)

	replies, err := repo.ListByFeedbackID(context.Background(), "fb-1")
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "First", replies[0].ReplyMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyRepositoryCountByFeedbackID(t *testing.T) {
	db, mock, cleanup := newReplyMock(t)
	defer cleanup()
	repo := NewReplyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM feedback_replies WHERE feedback_id = $1`)).
		WithArgs("fb-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByFeedbackID(context.Background(), "fb-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM feedback_replies WHERE feedback_id = $1`)).
		WithArgs("fb-2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err = repo.CountByFeedbackID(context.Background(), "fb-2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
