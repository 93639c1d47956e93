package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// represents JWT claims. tokens are minted by the account service; this
// server only verifies them.
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Tier    string `json:"tier,omitempty"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// gin context keys set by the middleware
const (
	ContextUserID  = "user_id"
	ContextEmail   = "user_email"
	ContextTier    = "user_tier"
	ContextIsAdmin = "is_admin"
)
