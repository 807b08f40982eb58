package auth

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the lifetime of issued tokens
const DefaultTokenTTL = 3600 * time.Second

// TokenService signs and validates HS256 tokens with a shared secret
type TokenService struct {
	signingKey []byte
	keyID      string
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	keys       *keyfunc.JWKS
	logger     Logger
	now        func() time.Time
}

// TokenServiceOption configures a TokenService
type TokenServiceOption func(*TokenService)

// WithSigningKeyID sets the kid header written on every signed token
func WithSigningKeyID(kid string) TokenServiceOption {
	return func(ts *TokenService) {
		ts.keyID = kid
	}
}

// WithVerificationKeys adds kid -> secret pairs accepted during validation.
// The signing key is always accepted under its own kid.
func WithVerificationKeys(keys map[string][]byte) TokenServiceOption {
	return func(ts *TokenService) {
		if len(keys) == 0 {
			return
		}
		given := make(map[string]keyfunc.GivenKey, len(keys)+1)
		for kid, key := range keys {
			given[kid] = keyfunc.NewGivenCustom(key, keyfunc.GivenKeyOptions{
				Algorithm: jwt.SigningMethodHS256.Alg(),
			})
		}
		ts.keys = keyfunc.NewGiven(given)
	}
}

// WithClock overrides time.Now, mostly for tests
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string, audience []string, logger Logger, opts ...TokenServiceOption) *TokenService {
	if logger == nil {
		logger = defLogger()
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	var aud jwt.ClaimStrings
	if len(audience) > 0 {
		aud = make(jwt.ClaimStrings, len(audience))
		copy(aud, audience)
	}

	ts := &TokenService{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		audience:   aud,
		logger:     logger,
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// NewTokenServiceFromConfig builds the TokenService from a Config, so the
// issuer and the strategy validator share one signing key.
func NewTokenServiceFromConfig(cfg Config, logger Logger) *TokenService {
	opts := []TokenServiceOption{WithSigningKeyID(cfg.GetSigningKeyID())}

	if vk := cfg.GetVerificationKeys(); len(vk) > 0 {
		keys := make(map[string][]byte, len(vk))
		for kid, secret := range vk {
			keys[kid] = []byte(secret)
		}
		opts = append(opts, WithVerificationKeys(keys))
	}

	return NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenTTL(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		logger,
		opts...,
	)
}

// TTL returns the configured token lifetime
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Generate creates a JWT for the given identity
func (ts *TokenService) Generate(identity Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}
	return ts.SignClaims(NewJWTClaims(identity.ID()))
}

// SignClaims stamps the registered claims and signs them.
func (ts *TokenService) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	if len(ts.signingKey) == 0 {
		ts.logger.Error("TokenService sign called without a signing key")
		return "", ErrSigningKeyMissing.Clone()
	}

	now := ts.now()
	if claims.RegisteredClaims.IssuedAt == nil {
		claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(claims.RegisteredClaims.IssuedAt.Add(ts.ttl))
	}
	if claims.Issuer == "" {
		claims.Issuer = ts.issuer
	}
	if len(claims.Audience) == 0 && len(ts.audience) > 0 {
		claims.Audience = append(jwt.ClaimStrings(nil), ts.audience...)
	}
	if claims.RegisteredClaims.Subject == "" {
		claims.RegisteredClaims.Subject = claims.UID
	}
	if claims.RegisteredClaims.ID == "" {
		claims.RegisteredClaims.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if ts.keyID != "" {
		token.Header["kid"] = ts.keyID
	}

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenService) Validate(tokenString string) (*JWTClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		// tokens must name our primary audience
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, ts.keyFunc, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired.Clone()
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithCode(ErrTokenMalformed.Code).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed.Clone()
}

func (ts *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}

	kid, _ := t.Header["kid"].(string)
	if kid == "" || kid == ts.keyID || ts.keys == nil {
		if len(ts.signingKey) == 0 {
			return nil, ErrSigningKeyMissing.Clone()
		}
		return ts.signingKey, nil
	}

	return ts.keys.Keyfunc(t)
}
