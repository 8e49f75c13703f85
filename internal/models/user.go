package models

import "time"

// UserRole represents the recognized roles for the authorization gate.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleStaff   UserRole = "staff"
	RoleStudent UserRole = "student"
)

// Valid reports whether the role is one of the recognized roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleStudent:
		return true
	}
	return false
}

// User represents an account stored in the users table. Accounts are never
// hard-deleted; deactivation flips is_active.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserStats aggregates account counts for the admin dashboard.
type UserStats struct {
	Total    int `db:"total" json:"total"`
	Admins   int `db:"admins" json:"admins"`
	Staff    int `db:"staff" json:"staff"`
	Students int `db:"students" json:"students"`
	Active   int `db:"active" json:"active"`
	Inactive int `db:"inactive" json:"inactive"`
}

// StaffListItem is a staff account enriched with its assignment load.
type StaffListItem struct {
	User
	StudentCount int `db:"student_count" json:"student_count"`
}

// StudentListItem is a student account enriched with its current assignment.
type StudentListItem struct {
	User
	AssignedStaffID   *string `json:"staff_id,omitempty"`
	AssignedStaffName *string `json:"assigned_staff,omitempty"`
}
