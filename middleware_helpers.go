package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-bearer-auth/middleware/jwtware"
	"github.com/goliatone/go-errors"
)

// ClaimsContextKey is the fiber locals key used by ClaimsMiddleware
const ClaimsContextKey = "claims"

// ClaimsMiddleware only checks the token; it does not load the user. Use it
// on routes that need the token subject but not the stored record.
func ClaimsMiddleware(cfg Config, validator TokenValidator, errorHandler fiber.ErrorHandler, listeners ...jwtware.ValidationListener) fiber.Handler {
	if errorHandler == nil {
		errorHandler = NewErrorHandler(nil)
	}

	return jwtware.New(jwtware.Config{
		TokenLookup: cfg.GetTokenLookup(),
		AuthScheme:  cfg.GetAuthScheme(),
		ContextKey:  ClaimsContextKey,
		TokenValidator: jwtware.TokenValidatorFunc(func(raw string) (jwtware.Claims, error) {
			claims, err := validator.Validate(raw)
			if err != nil {
				return nil, err
			}
			return claims, nil
		}),
		ContextEnricher:     ContextEnricherAdapter,
		ValidationListeners: listeners,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				err = ErrMissingToken.Clone()
			}
			return errorHandler(c, err)
		},
	})
}

// ContextEnricherAdapter stores *JWTClaims in the standard context
func ContextEnricherAdapter(c context.Context, claims jwtware.Claims) context.Context {
	authClaims, ok := claims.(*JWTClaims)
	if !ok {
		return c
	}
	return WithClaimsContext(c, authClaims)
}

// ClaimsFromFiber returns the claims stored by ClaimsMiddleware
func ClaimsFromFiber(c *fiber.Ctx) (*JWTClaims, bool) {
	claims, ok := c.Locals(ClaimsContextKey).(*JWTClaims)
	return claims, ok && claims != nil
}
