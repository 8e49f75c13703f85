package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sfms-app/sfms-api/internal/models"
	"github.com/sfms-app/sfms-api/internal/session"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
}

// LoginRequest is the login payload. Role is the role the user selected on
// the entry page, compared against the account's stored role.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult carries the issued session and the role-based redirect target.
type LoginResult struct {
	SessionID   string          `json:"-"`
	RedirectURL string          `json:"redirectUrl"`
	Identity    models.Identity `json:"user"`
}

// AuthService implements the login flow and session lifecycle.
type AuthService struct {
	repo      authUserRepository
	store     session.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, store session.Store, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, store: store, validator: validate, logger: logger}
}

// Login authenticates a user and issues a session. The checks run in a fixed
// order so each failure keeps its distinct client-visible message: unknown
// email, wrong password, role mismatch, then inactive account.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	password := strings.TrimSpace(req.Password)
	role := models.UserRole(req.Role)

	if email == "" || password == "" || req.Role == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Email, password, and role are required")
	}
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid role selected")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Info("login failed: unknown email", zap.String("email", email))
			return nil, appErrors.Clone(appErrors.ErrInvalidEmail, "Invalid email address")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidPassword, "Invalid password")
	}

	if user.Role != role {
		return nil, appErrors.Clone(appErrors.ErrRoleMismatch,
			fmt.Sprintf("This account is registered as %s, but you selected %s", user.Role, role))
	}

	if !user.IsActive {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "Your account is inactive. Please contact administrator.")
	}

	sessionID, err := session.NewSessionID()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session id")
	}

	identity := models.Identity{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Email:  user.Email,
	}
	if err := s.store.Save(ctx, sessionID, &identity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	return &LoginResult{
		SessionID:   sessionID,
		RedirectURL: redirectURLForRole(user.Role),
		Identity:    identity,
	}, nil
}

// Logout destroys the session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Destroy(ctx, sessionID); err != nil {
		s.logger.Warn("failed to destroy session", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to destroy session")
	}
	return nil
}

// ActiveUsersByRole backs the public account picker on the entry page.
func (s *AuthService) ActiveUsersByRole(ctx context.Context, rawRole string) ([]models.User, error) {
	role := models.UserRole(rawRole)
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid role")
	}
	users, err := s.repo.ListActiveByRole(ctx, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch users")
	}
	return users, nil
}

func redirectURLForRole(role models.UserRole) string {
	switch role {
	case models.RoleAdmin:
		return "/admin/dashboard"
	case models.RoleStaff:
		return "/staff/dashboard"
	case models.RoleStudent:
		return "/student/dashboard"
	}
	return "/"
}
