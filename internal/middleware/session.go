package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sfms-app/sfms-api/internal/models"
	"github.com/sfms-app/sfms-api/internal/session"
	appErrors "github.com/sfms-app/sfms-api/pkg/errors"
	"github.com/sfms-app/sfms-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the resolved identity.
const ContextIdentityKey = "currentIdentity"

// RequireRole gates a route group by session-backed identity. A missing or
// expired session redirects to the entry page; a recognized identity whose
// role is not in the allowed set gets a 403 naming its role.
func RequireRole(store session.Store, cookieName string, allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}

	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		identity, err := store.Load(c.Request.Context(), sessionID)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session"))
			c.Abort()
			return
		}
		if identity == nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		if _, ok := allowedRoles[identity.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden,
				fmt.Sprintf("your role (%s) does not have permission to access this page", identity.Role)))
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// RequireAdmin gates routes to the admin role.
func RequireAdmin(store session.Store, cookieName string) gin.HandlerFunc {
	return RequireRole(store, cookieName, models.RoleAdmin)
}

// RequireStaff gates routes to the staff role.
func RequireStaff(store session.Store, cookieName string) gin.HandlerFunc {
	return RequireRole(store, cookieName, models.RoleStaff)
}

// RequireStudent gates routes to the student role.
func RequireStudent(store session.Store, cookieName string) gin.HandlerFunc {
	return RequireRole(store, cookieName, models.RoleStudent)
}

// RequireStaffOrAdmin gates routes to staff and admins.
func RequireStaffOrAdmin(store session.Store, cookieName string) gin.HandlerFunc {
	return RequireRole(store, cookieName, models.RoleStaff, models.RoleAdmin)
}

// IdentityFromContext returns the identity the gate attached, if any.
func IdentityFromContext(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}
