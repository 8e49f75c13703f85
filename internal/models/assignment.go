package models

import "time"

// Assignment links one staff account to one student account. The
// (staff_id, student_id) pair is unique; a student holds at most one
// assignment at a time.
type Assignment struct {
	ID         string    `db:"id" json:"id"`
	StaffID    string    `db:"staff_id" json:"staff_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

// AssignmentDetail joins both sides of the pairing for list views.
type AssignmentDetail struct {
	Assignment
	StaffName    string `db:"staff_name" json:"staff_name"`
	StaffEmail   string `db:"staff_email" json:"staff_email"`
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
}

// StudentAssignment is a student's current assignment joined with staff
// details, as returned by the single-row lookup.
type StudentAssignment struct {
	Assignment
	StaffName   string `db:"staff_name" json:"staff_name"`
	StaffEmail  string `db:"staff_email" json:"staff_email"`
	StaffActive bool   `db:"staff_active" json:"staff_active"`
}

// AssignedStudent is a row of a staff member's active student roster.
type AssignedStudent struct {
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	AssignedAt   time.Time `db:"assigned_at" json:"assigned_at"`
}

// AssignmentStats aggregates pairing counts for the admin dashboard.
type AssignmentStats struct {
	TotalAssignments     int `db:"total_assignments" json:"total_assignments"`
	StaffWithAssignments int `db:"staff_with_assignments" json:"staff_with_assignments"`
	StudentsAssigned     int `db:"students_assigned" json:"students_assigned"`
}

// StaffLoad counts assigned students per active staff member.
type StaffLoad struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	StudentCount int    `db:"student_count" json:"student_count"`
}
