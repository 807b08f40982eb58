package auth

import (
	"context"
)

// LoginTracker is optionally implemented by a UserFinder to record logins
type LoginTracker interface {
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// Auther ties a user store to the token issuer and validator
type Auther struct {
	users     UserFinder
	tokens    *TokenService
	issuer    *TokenIssuer
	validator TokenValidator
	logger    Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns an Auther using tokens for both signing and
// validation.
func NewAuthenticator(users UserFinder, tokens *TokenService, passwords PasswordAuthenticator, logger Logger) *Auther {
	if logger == nil {
		logger = defLogger()
	}
	return &Auther{
		users:     users,
		tokens:    tokens,
		issuer:    NewTokenIssuer(tokens, passwords, logger),
		validator: tokens,
		logger:    logger,
	}
}

// WithTokenValidator swaps the validator used by UserFromToken
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	if validator != nil {
		s.validator = validator
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() *TokenService {
	return s.tokens
}

// Issuer returns the TokenIssuer
func (s *Auther) Issuer() *TokenIssuer {
	return s.issuer
}

// Login looks the user up by email or username and issues a token when the
// password matches. Unknown users get ErrInvalidCredentials.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := s.users.FindUserByIdentifier(ctx, identifier)
	if err != nil {
		s.logger.Error("Login user lookup error", "error", err)
		return "", internalError(err, "failed to retrieve user during login")
	}

	token, err := s.issuer.CreateUserToken(passwordPayload(password), user)
	if err != nil {
		if IsInvalidCredentials(err) {
			s.logger.Info("Login rejected", "identifier", identifier)
		}
		return "", err
	}

	if tracker, ok := s.users.(LoginTracker); ok {
		if err := tracker.TrackSuccessfulLogin(ctx, user); err != nil {
			s.logger.Warn("failed to track successful login", "user_id", user.ID, "error", err)
		}
	}

	return token, nil
}

// UserFromToken validates token and loads its subject. A valid token for
// an unknown user returns ErrUnauthenticated.
func (s *Auther) UserFromToken(ctx context.Context, token string) (*User, error) {
	claims, err := s.validator.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindUserByID(ctx, claims.UserID())
	if err != nil {
		return nil, internalError(err, "failed to resolve token subject")
	}
	if user == nil {
		return nil, ErrUnauthenticated.Clone()
	}
	return user, nil
}

type passwordPayload string

func (p passwordPayload) GetPassword() string {
	return string(p)
}
