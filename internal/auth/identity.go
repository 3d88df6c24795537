// Package auth reads the caller's identity. Authentication itself happens in the
// upstream auth proxy, which forwards the verified user in request headers.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/temu/internal/dtos"
	"github.com/justsurfingit/temu/internal/models"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"

	contextKey = "identity"
)

type Identity struct {
	UserID string
	Email  string
	Role   string
}

// UserEnsurer keeps a local row per identity.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, id, email, role string) (*models.User, error)
}

// Middleware rejects requests without a user and records the identity in the
// gin context.
func Middleware(users UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Identity{
			UserID: strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Email:  strings.TrimSpace(c.GetHeader(HeaderUserEmail)),
			Role:   strings.ToUpper(strings.TrimSpace(c.GetHeader(HeaderUserRole))),
		}
		if id.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dtos.ErrorResponse{Error: "authentication required"})
			return
		}
		if id.Role == "" {
			id.Role = models.RoleJobSeeker
		}
		if !slices.Contains([]string{models.RoleJobSeeker, models.RoleEmployer, models.RoleAdmin}, id.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dtos.ErrorResponse{Error: "unknown role " + id.Role})
			return
		}
		if users != nil {
			if _, err := users.EnsureUser(c.Request.Context(), id.UserID, id.Email, id.Role); err != nil {
				slog.Error("Could not record user.", "user", id.UserID, "err", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, dtos.ErrorResponse{Error: "could not load user"})
				return
			}
		}
		c.Set(contextKey, id)
		c.Next()
	}
}

// FromContext returns the identity Middleware stored.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// RequireRole lets only the listed roles through. Admins always pass.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := FromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dtos.ErrorResponse{Error: "authentication required"})
			return
		}
		if id.Role != models.RoleAdmin && !slices.Contains(roles, id.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dtos.ErrorResponse{Error: "this action requires role " + strings.Join(roles, " or ")})
			return
		}
		c.Next()
	}
}
