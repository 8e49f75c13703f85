package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sfms-app/sfms-api/internal/models"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
)

const pqUniqueViolation = "23505"

// AssignmentRepository persists staff-student assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a single pairing. A duplicate (staff_id, student_id) pair is
// surfaced as the typed duplicate-assignment error instead of a raw store
// fault.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now().UTC()
	}
	const query = `INSERT INTO staff_student_assignments (id, staff_id, student_id, assigned_at)
		VALUES (:id, :staff_id, :student_id, :assigned_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return appErrors.ErrDuplicateAssignment
		}
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// CreateBulk inserts pairings for one staff member, silently skipping pairs
// that already exist, and returns the count of newly inserted rows.
func (r *AssignmentRepository) CreateBulk(ctx context.Context, staffID string, studentIDs []string) (int, error) {
	inserted := 0
	const query = `INSERT INTO staff_student_assignments (id, staff_id, student_id, assigned_at)
		VALUES ($1, $2, $3, $4) ON CONFLICT (staff_id, student_id) DO NOTHING`
	now := time.Now().UTC()
	for _, studentID := range studentIDs {
		result, err := r.db.ExecContext(ctx, query, uuid.NewString(), staffID, studentID, now)
		if err != nil {
			return inserted, fmt.Errorf("bulk create assignment: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("check bulk assignment rows: %w", err)
		}
		inserted += int(affected)
	}
	return inserted, nil
}

// GetByStudentID returns the student's current assignment joined with staff
// details, or sql.ErrNoRows when the student is unassigned.
func (r *AssignmentRepository) GetByStudentID(ctx context.Context, studentID string) (*models.StudentAssignment, error) {
	const query = `
SELECT a.id, a.staff_id, a.student_id, a.assigned_at,
       staff.name AS staff_name, staff.email AS staff_email, staff.is_active AS staff_active
FROM staff_student_assignments a
JOIN users staff ON staff.id = a.staff_id
WHERE a.student_id = $1
LIMIT 1`
	var assignment models.StudentAssignment
	if err := r.db.GetContext(ctx, &assignment, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get assignment by student: %w", err)
	}
	return &assignment, nil
}

// ListAll returns every pairing joined with both participants, newest first.
func (r *AssignmentRepository) ListAll(ctx context.Context) ([]models.AssignmentDetail, error) {
	const query = `
SELECT a.id, a.staff_id, a.student_id, a.assigned_at,
       staff.name AS staff_name, staff.email AS staff_email,
       student.name AS student_name, student.email AS student_email
FROM staff_student_assignments a
JOIN users staff ON staff.id = a.staff_id
JOIN users student ON student.id = a.student_id
ORDER BY a.assigned_at DESC`
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ListActiveStudentsByStaffID returns the staff member's roster of active
// students ordered by name.
func (r *AssignmentRepository) ListActiveStudentsByStaffID(ctx context.Context, staffID string) ([]models.AssignedStudent, error) {
	const query = `
SELECT a.id AS assignment_id, student.id AS student_id, student.name, student.email, a.assigned_at
FROM staff_student_assignments a
JOIN users student ON student.id = a.student_id
WHERE a.staff_id = $1 AND student.is_active = TRUE
ORDER BY student.name ASC`
	var students []models.AssignedStudent
	if err := r.db.SelectContext(ctx, &students, query, staffID); err != nil {
		return nil, fmt.Errorf("list assigned students: %w", err)
	}
	return students, nil
}

// Exists checks if the pairing already exists.
func (r *AssignmentRepository) Exists(ctx context.Context, staffID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM staff_student_assignments WHERE staff_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, staffID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assignment exists: %w", err)
	}
	return true, nil
}

// Delete removes a single pairing. Feedback history keeps its own
// denormalized staff_id and is untouched.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM staff_student_assignments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByStaffID removes all pairings held by a staff member.
func (r *AssignmentRepository) DeleteByStaffID(ctx context.Context, staffID string) (int, error) {
	const query = `DELETE FROM staff_student_assignments WHERE staff_id = $1`
	result, err := r.db.ExecContext(ctx, query, staffID)
	if err != nil {
		return 0, fmt.Errorf("delete assignments by staff: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check deleted assignment rows: %w", err)
	}
	return int(affected), nil
}

// DeleteByStudentID removes all pairings held by a student.
func (r *AssignmentRepository) DeleteByStudentID(ctx context.Context, studentID string) (int, error) {
	const query = `DELETE FROM staff_student_assignments WHERE student_id = $1`
	result, err := r.db.ExecContext(ctx, query, studentID)
	if err != nil {
		return 0, fmt.Errorf("delete assignments by student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check deleted assignment rows: %w", err)
	}
	return int(affected), nil
}

// UnassignedStudents returns active students with no assignment at all.
func (r *AssignmentRepository) UnassignedStudents(ctx context.Context) ([]models.User, error) {
	const query = `
SELECT u.id, u.name, u.email, u.password_hash, u.role, u.is_active, u.created_at
FROM users u
WHERE u.role = 'student'
  AND u.is_active = TRUE
  AND u.id NOT IN (SELECT student_id FROM staff_student_assignments)
ORDER BY u.name ASC`
	var students []models.User
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list unassigned students: %w", err)
	}
	return students, nil
}

// StudentsNotAssignedToStaff returns active students not paired with the
// given staff member.
func (r *AssignmentRepository) StudentsNotAssignedToStaff(ctx context.Context, staffID string) ([]models.User, error) {
	const query = `
SELECT u.id, u.name, u.email, u.password_hash, u.role, u.is_active, u.created_at
FROM users u
WHERE u.role = 'student'
  AND u.is_active = TRUE
  AND u.id NOT IN (SELECT student_id FROM staff_student_assignments WHERE staff_id = $1)
ORDER BY u.name ASC`
	var students []models.User
	if err := r.db.SelectContext(ctx, &students, query, staffID); err != nil {
		return nil, fmt.Errorf("list students not assigned to staff: %w", err)
	}
	return students, nil
}

// Stats aggregates pairing counts.
func (r *AssignmentRepository) Stats(ctx context.Context) (*models.AssignmentStats, error) {
	const query = `SELECT
		COUNT(*) AS total_assignments,
		COUNT(DISTINCT staff_id) AS staff_with_assignments,
		COUNT(DISTINCT student_id) AS students_assigned
	FROM staff_student_assignments`
	var stats models.AssignmentStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("assignment stats: %w", err)
	}
	return &stats, nil
}

// StaffLoadCounts returns assigned student counts per active staff member.
func (r *AssignmentRepository) StaffLoadCounts(ctx context.Context) ([]models.StaffLoad, error) {
	const query = `
SELECT staff.id, staff.name, staff.email, COUNT(a.student_id) AS student_count
FROM users staff
LEFT JOIN staff_student_assignments a ON staff.id = a.staff_id
WHERE staff.role = 'staff' AND staff.is_active = TRUE
GROUP BY staff.id, staff.name, staff.email
ORDER BY student_count DESC, staff.name ASC`
	var loads []models.StaffLoad
	if err := r.db.SelectContext(ctx, &loads, query); err != nil {
		return nil, fmt.Errorf("staff load counts: %w", err)
	}
	return loads, nil
}
