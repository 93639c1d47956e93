package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// lifetime of locally minted tokens
const tokenTTL = 7 * 24 * time.Hour

func signingKey() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errNoSecret
	}

	return []byte(secret), nil
}

// mints an HS256 token carrying the caller's tier. production tokens come
// from the account service; this serves scripts and tests.
func GenerateJWT(userID, email, tier string, isAdmin bool) (string, error) {
	key, err := signingKey()
	if err != nil {
		return "", err
	}

	now := time.Now()

	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:  userID,
		Email:   email,
		Tier:    tier,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}).SignedString(key)
}

// verifies signature, algorithm and expiry, then requires a user id
func ValidateJWT(tokenString string) (*Claims, error) {
	key, err := signingKey()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errInvalidToken
	}

	if claims.UserID == "" {
		return nil, errNoSubject
	}

	return claims, nil
}
