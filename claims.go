package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the token payload: the user identifier plus the
// registered claims (exp, iat, sub, ...)
type JWTClaims struct {
	jwt.RegisteredClaims
	UID string `json:"id"`
}

// NewJWTClaims returns claims for the given user identifier
func NewJWTClaims(id string) *JWTClaims {
	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: id,
		},
		UID: id,
	}
}

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
