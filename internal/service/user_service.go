package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sfms-app/sfms-api/internal/models"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id, name, email string) error
	ToggleActive(ctx context.Context, id string) error
	Stats(ctx context.Context) (*models.UserStats, error)
}

type userAssignmentRepository interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.StudentAssignment, error)
	StaffLoadCounts(ctx context.Context) ([]models.StaffLoad, error)
}

// CreateAccountRequest is the admin payload for creating staff or student
// accounts. Password is optional; when omitted one is generated.
type CreateAccountRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

// UpdateAccountRequest is the admin payload for editing an account.
type UpdateAccountRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// CreatedAccount is returned after account creation. InitialPassword is set
// only when the password was generated; it is shown once and never stored in
// clear text.
type CreatedAccount struct {
	User            models.User `json:"user"`
	InitialPassword string      `json:"initialPassword,omitempty"`
}

// UserService implements admin-side account management.
type UserService struct {
	repo        userRepository
	assignments userAssignmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, assignments userAssignmentRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, assignments: assignments, validator: validate, logger: logger}
}

// CreateStaff creates a staff account.
func (s *UserService) CreateStaff(ctx context.Context, req CreateAccountRequest) (*CreatedAccount, error) {
	return s.createAccount(ctx, req, models.RoleStaff)
}

// CreateStudent creates a student account.
func (s *UserService) CreateStudent(ctx context.Context, req CreateAccountRequest) (*CreatedAccount, error) {
	return s.createAccount(ctx, req, models.RoleStudent)
}

func (s *UserService) createAccount(ctx context.Context, req CreateAccountRequest, role models.UserRole) (*CreatedAccount, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Name and a valid email are required; password must be at least 6 characters")
	}

	exists, err := s.repo.EmailExists(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Email already exists")
	}

	password := req.Password
	initial := ""
	if password == "" {
		initial, err = generateInitialPassword()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
		}
		password = initial
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("account created",
		zap.String("userId", user.ID),
		zap.String("role", string(role)),
	)
	return &CreatedAccount{User: *user, InitialPassword: initial}, nil
}

// UpdateAccount edits the name and email of an account of the expected role.
func (s *UserService) UpdateAccount(ctx context.Context, id string, req UpdateAccountRequest, expectedRole models.UserRole) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Name and a valid email are required")
	}

	user, err := s.getAccount(ctx, id, expectedRole)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Email already exists")
	}

	if err := s.repo.Update(ctx, id, req.Name, req.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", expectedRole))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}

	user.Name = req.Name
	user.Email = req.Email
	return user, nil
}

// ToggleActive flips the active flag of an account of the expected role.
func (s *UserService) ToggleActive(ctx context.Context, id string, expectedRole models.UserRole) error {
	if _, err := s.getAccount(ctx, id, expectedRole); err != nil {
		return err
	}
	if err := s.repo.ToggleActive(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", expectedRole))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle account")
	}
	return nil
}

// GetAccount fetches a single account of the expected role, for edit forms.
func (s *UserService) GetAccount(ctx context.Context, id string, expectedRole models.UserRole) (*models.User, error) {
	return s.getAccount(ctx, id, expectedRole)
}

func (s *UserService) getAccount(ctx context.Context, id string, expectedRole models.UserRole) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", expectedRole))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}
	if user.Role != expectedRole {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", expectedRole))
	}
	return user, nil
}

// ListStaff returns all staff with their assigned-student counts.
func (s *UserService) ListStaff(ctx context.Context) ([]models.StaffListItem, error) {
	staff, err := s.repo.ListByRole(ctx, models.RoleStaff)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch staff")
	}
	loads, err := s.assignments.StaffLoadCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch staff loads")
	}

	counts := make(map[string]int, len(loads))
	for _, load := range loads {
		counts[load.ID] = load.StudentCount
	}

	items := make([]models.StaffListItem, 0, len(staff))
	for _, u := range staff {
		items = append(items, models.StaffListItem{User: u, StudentCount: counts[u.ID]})
	}
	return items, nil
}

// ListStudents returns all students with their current staff assignment, if any.
func (s *UserService) ListStudents(ctx context.Context) ([]models.StudentListItem, error) {
	students, err := s.repo.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch students")
	}

	items := make([]models.StudentListItem, 0, len(students))
	for _, u := range students {
		item := models.StudentListItem{User: u}
		assignment, err := s.assignments.GetByStudentID(ctx, u.ID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch assignment")
			}
		} else {
			item.AssignedStaffID = &assignment.StaffID
			item.AssignedStaffName = &assignment.StaffName
		}
		items = append(items, item)
	}
	return items, nil
}

// Stats returns aggregate user counts for the admin dashboard.
func (s *UserService) Stats(ctx context.Context) (*models.UserStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user stats")
	}
	return stats, nil
}

// generateInitialPassword returns a 12-character URL-safe random password.
func generateInitialPassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
