package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-bearer-auth/middleware/jwtware"
	"github.com/goliatone/go-errors"
)

// StrategyName is the name the bearer JWT strategy registers under
const StrategyName = "jwt"

// Strategy authenticates a request. It returns the user on success,
// (nil, nil) when the credentials name no user, and an error when
// authentication could not be completed.
type Strategy interface {
	Name() string
	Authenticate(c *fiber.Ctx) (*User, error)
}

// VerifyFunc resolves decoded claims to a user
type VerifyFunc func(ctx context.Context, claims *JWTClaims) (*User, error)

// StrategyOptions configures a JWTStrategy
type StrategyOptions struct {
	Validator   TokenValidator
	Users       UserFinder
	Verify      VerifyFunc
	TokenLookup string
	AuthScheme  string
	Logger      Logger
}

// JWTStrategy reads a bearer token, validates it and looks up the user
// named by its id claim.
type JWTStrategy struct {
	validator  TokenValidator
	verify     VerifyFunc
	extractors []jwtware.JWTExtractor
	logger     Logger
}

var _ Strategy = (*JWTStrategy)(nil)

// NewJWTStrategy validates opts and builds the strategy. Either Users or
// Verify must be set.
func NewJWTStrategy(opts StrategyOptions) (*JWTStrategy, error) {
	if opts.Validator == nil {
		return nil, errors.New("jwt strategy requires a token validator", errors.CategoryBadInput)
	}

	verify := opts.Verify
	if verify == nil {
		if opts.Users == nil {
			return nil, errors.New("jwt strategy requires a user finder or verify func", errors.CategoryBadInput)
		}
		verify = verifyUser(opts.Users)
	}

	lookup := opts.TokenLookup
	if lookup == "" {
		lookup = "header:" + fiber.HeaderAuthorization
	}

	logger := opts.Logger
	if logger == nil {
		logger = defLogger()
	}

	return &JWTStrategy{
		validator:  opts.Validator,
		verify:     verify,
		extractors: jwtware.GetExtractors(lookup, opts.AuthScheme),
		logger:     logger,
	}, nil
}

// NewJWTStrategyFromConfig builds the strategy from the shared Config
func NewJWTStrategyFromConfig(cfg Config, validator TokenValidator, users UserFinder, logger Logger) (*JWTStrategy, error) {
	return NewJWTStrategy(StrategyOptions{
		Validator:   validator,
		Users:       users,
		TokenLookup: cfg.GetTokenLookup(),
		AuthScheme:  cfg.GetAuthScheme(),
		Logger:      logger,
	})
}

func (s *JWTStrategy) Name() string {
	return StrategyName
}

func (s *JWTStrategy) Authenticate(c *fiber.Ctx) (*User, error) {
	raw, err := jwtware.ExtractRawTokenFromContext(c, s.extractors)
	if err != nil || raw == "" {
		return nil, ErrMissingToken.Clone()
	}

	claims, err := s.validator.Validate(raw)
	if err != nil {
		s.logger.Debug("jwt strategy rejected token", "error", err)
		return nil, err
	}

	user, err := s.verify(c.UserContext(), claims)
	if err != nil {
		s.logger.Error("jwt strategy failed to resolve token subject", "user_id", claims.UserID(), "error", err)
		return nil, internalError(err, "failed to resolve token subject")
	}

	return user, nil
}

// verifyUser looks the claims' id up in users. A missing record is
// returned as (nil, nil).
func verifyUser(users UserFinder) VerifyFunc {
	return func(ctx context.Context, claims *JWTClaims) (*User, error) {
		return users.FindUserByID(ctx, claims.UserID())
	}
}
