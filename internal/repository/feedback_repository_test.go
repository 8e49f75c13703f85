package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfms-app/sfms-api/internal/models"
)

func newFeedbackMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func feedbackListRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "staff_id", "subject", "message", "status", "submitted_at", "updated_at",
		"student_name", "student_email", "staff_name", "staff_email", "reply_count",
	})
}

func TestFeedbackRepositoryCreateDefaultsPending(t *testing.T) {
	db, mock, cleanup := newFeedbackMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectExec("INSERT INTO feedback").
		WithArgs(sqlmock.AnyArg(), "student-1", "staff-1", "Help", "...", "pending", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	feedback := &models.Feedback{
		StudentID: "student-1",
		StaffID:   "staff-1",
		Subject:   "Help",
		Message:   "...",
	}
	require.NoError(t, repo.Create(context.Background(), feedback))
	assert.Equal(t, models.FeedbackPending, feedback.Status)
	assert.NotEmpty(t, feedback.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListByStaffIDWithFilter(t *testing.T) {
	db, mock, cleanup := newFeedbackMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	now := time.Now()
	rows := feedbackListRows().
		AddRow("fb-1", "student-1", "staff-1", "Help", "...", "pending", now, now,
			"Student One", "t@x.com", "Staff One", "s@x.com", 0)
	mock.ExpectQuery(`SELECT f.id, f.student_id, f.staff_id.+WHERE f.staff_id = \$1 AND f.status = \$2 AND f.student_id = \$3`).
		WithArgs("staff-1", "pending", "student-1").
		WillReturnRows(rows)

	status := models.FeedbackPending
	items, err := repo.ListByStaffID(context.Background(), "staff-1", models.FeedbackFilter{Status: &status, StudentID: "student-1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "fb-1", items[0].ID)
	assert.Equal(t, 0, items[0].ReplyCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryListByStudentID(t *testing.T) {
	db, mock, cleanup := newFeedbackMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	now := time.Now()
	rows := feedbackListRows().
		AddRow("fb-2", "student-1", "staff-1", "Thanks", "...", "replied", now, now,
			"Student One", "t@x.com", "Staff One", "s@x.com", 1)
	mock.ExpectQuery(`SELECT f.id, f.student_id, f.staff_id.+WHERE f.student_id = \$1`).
		WithArgs("student-1").
		WillReturnRows(rows)

	items, err := repo.ListByStudentID(context.Background(), "student-1", models.FeedbackFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.FeedbackReplied, items[0].Status)
	assert.Equal(t, 1, items[0].ReplyCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newFeedbackMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery("SELECT f.id, f.student_id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryOwnershipChecks(t *testing.T) {
	db, mock, cleanup := newFeedbackMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM feedback WHERE id = \$1 AND staff_id = \$2`).
		WithArgs("fb-1", "staff-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.CanStaffView(context.Background(), "fb-1", "staff-1")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM feedback WHERE id = \$1 AND staff_id = \$2`).
		WithArgs("fb-1", "staff-2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err = repo.CanStaffView(context.Background(), "fb-1", "staff-2")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM feedback WHERE id = \$1 AND student_id = \$2`).
		WithArgs("fb-1", "student-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err = repo.CanStudentView(context.Background(), "fb-1", "student-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryStatsByStaffID(t *testing.T) {
	db, mock, cleanup := newFeedbackMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery("SELECT").
		WithArgs("staff-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "replied"}).AddRow(5, 2, 3))

	stats, err := repo.StatsByStaffID(context.Background(), "staff-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 3, stats.Replied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
