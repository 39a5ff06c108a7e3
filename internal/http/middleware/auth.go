package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tripplanner/internal/domain"
	"tripplanner/internal/services"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// AuthOptional reads a Bearer token when one is sent. Requests without a
// token pass through anonymous; a bad token is rejected.
func AuthOptional(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c, "authorization header must be a Bearer token")
			return
		}
		claims, err := services.ParseToken(secret, strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests. It must run after AuthOptional.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c).Anonymous() {
			abortUnauthorized(c, "login required")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated caller, or an anonymous context.
func CurrentUser(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{
		UserID: c.GetInt64(userIDKey),
		Role:   c.GetString(userRoleKey),
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":    false,
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
