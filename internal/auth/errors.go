package auth

import "errors"

var (
	errInvalidHeader = errors.New("invalid authorization header format")
	errNoSecret      = errors.New("JWT_SECRET not set")
	errNoSubject     = errors.New("token has no user id")
	errInvalidToken  = errors.New("invalid token")
)
