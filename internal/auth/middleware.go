package auth

import (
	"strings"

	apierrors "codeberg.org/mise/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// extracts and validates the bearer token from the request, if any
func claimsFromRequest(c *gin.Context) (*Claims, bool, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false, nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, true, errInvalidHeader
	}

	claims, err := ValidateJWT(parts[1])
	return claims, true, err
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextTier, claims.Tier)
	c.Set(ContextIsAdmin, claims.IsAdmin)
}

// validates JWT tokens and adds user info to context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present, err := claimsFromRequest(c)
		if !present {
			apierrors.Unauthorized(c, "authorization header required")
			return
		}

		if err != nil {
			apierrors.Unauthorized(c, "invalid or expired token")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// validates JWT if present but doesn't require it. an invalid token is
// treated as anonymous, so the caller falls back to fingerprint tracking.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _, err := claimsFromRequest(c); err == nil && claims != nil {
			setClaims(c, claims)
		}

		c.Next()
	}
}

// requires the admin claim; must run after AuthMiddleware
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			apierrors.Forbidden(c, "admin access required")
			return
		}

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserID)
	return userID, userID != ""
}

// extracts the subscription tier claim; empty for anonymous callers
func GetTier(c *gin.Context) string {
	return c.GetString(ContextTier)
}
