package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sfms-app/sfms-api/internal/models"
	"github.com/sfms-app/sfms-api/internal/service"
	"github.com/sfms-app/sfms-api/pkg/config"
	"github.com/sfms-app/sfms-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req service.LoginRequest) (*service.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	ActiveUsersByRole(ctx context.Context, role string) ([]models.User, error)
}

// AuthHandler exposes the public entry endpoints: login, logout and the
// account picker.
type AuthHandler struct {
	service authService
	session config.SessionConfig
	logger  *zap.Logger
}

// NewAuthHandler constructs an AuthHandler instance.
func NewAuthHandler(svc authService, session config.SessionConfig, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: svc, session: session, logger: logger}
}

// Entry godoc
// @Summary Landing endpoint listing the selectable roles
// @Tags auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router / [get]
func (h *AuthHandler) Entry(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"roles": []models.UserRole{models.RoleAdmin, models.RoleStaff, models.RoleStudent},
	})
}

// Login godoc
// @Summary Authenticate with email, password and selected role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginRequest true "credentials"
// @Success 200 {object} response.Envelope
// @Failure 400,401,403 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Debug("malformed login payload", zap.Error(err))
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	maxAge := int(h.session.TTL.Seconds())
	c.SetCookie(h.session.CookieName, result.SessionID, maxAge, "/", "", h.session.CookieSecure, true)

	// redirectUrl sits beside success so the entry page can navigate without
	// unwrapping a data envelope.
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Login successful",
		"redirectUrl": result.RedirectURL,
		"user":        result.Identity,
	})
}

// Logout godoc
// @Summary Destroy the session and return to the entry page
// @Tags auth
// @Produce json
// @Success 302
// @Router /logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(h.session.CookieName)
	if err == nil && sessionID != "" {
		if err := h.service.Logout(c.Request.Context(), sessionID); err != nil {
			h.logger.Warn("logout failed", zap.Error(err))
		}
	}
	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.session.CookieSecure, true)
	c.Redirect(http.StatusFound, "/")
}

// UsersByRole godoc
// @Summary List active accounts of a role for the entry page picker
// @Tags auth
// @Produce json
// @Param role path string true "admin, staff or student"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/users/{role} [get]
func (h *AuthHandler) UsersByRole(c *gin.Context) {
	users, err := h.service.ActiveUsersByRole(c.Request.Context(), c.Param("role"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}
