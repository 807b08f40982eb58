package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// MintOptions controls how Mint issues a token outside the default lifetime.
type MintOptions struct {
	// TTL overrides the default token expiration. Zero uses the service TTL.
	TTL time.Duration
	// Issuer overrides the default issuer if provided.
	Issuer string
	// Audience overrides the default audience if provided.
	Audience []string
	// IssuedAt overrides the issuance time. Zero uses the service clock.
	IssuedAt time.Time
}

// Mint signs a token for userID with per call overrides and returns the
// token together with its expiration time.
func (ts *TokenService) Mint(userID string, opts MintOptions) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user id is required", errors.CategoryBadInput)
	}

	if opts.TTL < 0 {
		return "", time.Time{}, errors.New("token TTL must be non-negative", errors.CategoryBadInput)
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = ts.ttl
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = ts.now()
	}
	expiresAt := issuedAt.Add(ttl)

	claims := NewJWTClaims(userID)
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	claims.Issuer = opts.Issuer
	if len(opts.Audience) > 0 {
		claims.Audience = append(jwt.ClaimStrings(nil), opts.Audience...)
	}

	token, err := ts.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}
