package auth

import (
	"context"
	"time"
)

// Logger is the logging contract used across the package. Arguments after
// the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
}

// UserFinder is the user storage collaborator. Both lookups return
// (nil, nil) when no record matches.
type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByIdentifier(ctx context.Context, identifier string) (*User, error)
}

// UserFinderFunc adapts a lookup by ID into a UserFinder. Lookups by
// identifier always miss.
type UserFinderFunc func(ctx context.Context, id string) (*User, error)

// FindUserByID calls f.
func (f UserFinderFunc) FindUserByID(ctx context.Context, id string) (*User, error) {
	return f(ctx, id)
}

// FindUserByIdentifier satisfies UserFinder.
func (f UserFinderFunc) FindUserByIdentifier(context.Context, string) (*User, error) {
	return nil, nil
}

// PasswordAuthenticator hashes and compares passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// PasswordPayload is anything carrying a submitted password.
type PasswordPayload interface {
	GetPassword() string
}

// LoginPayload is the login request body
type LoginPayload interface {
	PasswordPayload
	GetIdentifier() string
}

// Authenticator logs users in and resolves tokens back to users
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	UserFromToken(ctx context.Context, token string) (*User, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningKeyID() string
	GetVerificationKeys() map[string]string
	GetTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
}
