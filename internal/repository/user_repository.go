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

// UserRepository provides database access for account management. Every read
// issues a fresh query; nothing is cached here.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, is_active, created_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByEmail returns a user by email address regardless of active status.
// The login flow depends on fetching by email alone so it can distinguish
// unknown email, wrong password, role mismatch and inactive account.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, is_active, created_at FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// ListByRole returns all users of a role, newest first.
func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, is_active, created_at FROM users WHERE role = $1 ORDER BY created_at DESC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}

// ListActiveByRole returns active users of a role ordered by name.
func (r *UserRepository) ListActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	const query = `SELECT id, name, email, password_hash, role, is_active, created_at FROM users WHERE role = $1 AND is_active = TRUE ORDER BY name ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("list active users by role: %w", err)
	}
	return users, nil
}

// EmailExists checks email uniqueness, optionally excluding one user id.
func (r *UserRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM users WHERE email = $1`
	args := []interface{}{email}
	if excludeID != "" {
		query += ` AND id != $2`
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (id, name, email, password_hash, role, is_active, created_at)
		VALUES (:id, :name, :email, :password_hash, :role, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update changes the mutable profile fields of a user.
func (r *UserRepository) Update(ctx context.Context, id, name, email string) error {
	const query = `UPDATE users SET name = $2, email = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, name, email)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated user rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ToggleActive flips the soft-delete flag in place.
func (r *UserRepository) ToggleActive(ctx context.Context, id string) error {
	const query = `UPDATE users SET is_active = NOT is_active WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("toggle user active: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check toggled user rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Stats aggregates account counts by role and active flag.
func (r *UserRepository) Stats(ctx context.Context) (*models.UserStats, error) {
	const query = `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE role = 'admin') AS admins,
		COUNT(*) FILTER (WHERE role = 'staff') AS staff,
		COUNT(*) FILTER (WHERE role = 'student') AS students,
		COUNT(*) FILTER (WHERE is_active) AS active,
		COUNT(*) FILTER (WHERE NOT is_active) AS inactive
	FROM users`
	var stats models.UserStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return &stats, nil
}
