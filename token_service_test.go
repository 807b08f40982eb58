package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-bearer-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdentity implements auth.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func TestNewTokenService(t *testing.T) {
	t.Run("uses the default ttl", func(t *testing.T) {
		service := auth.NewTokenService(testSigningKey, 0, "test-issuer", []string{"test-audience"}, nil)

		assert.NotNil(t, service)
		assert.Equal(t, 3600*time.Second, service.TTL())
	})

	t.Run("keeps an explicit ttl", func(t *testing.T) {
		service := auth.NewTokenService(testSigningKey, time.Minute, "", nil, testLogger())

		assert.Equal(t, time.Minute, service.TTL())
	})
}

func TestTokenService_Generate(t *testing.T) {
	identity := new(MockIdentity)
	identity.On("ID").Return("user-123")

	service := newTestTokenService()

	start := time.Now()
	token, err := service.Generate(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	identity.AssertExpectations(t)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "user-123", claims.Subject())
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
	assert.WithinDuration(t, start.Add(time.Hour), claims.Expires(), 2*time.Second)

	_, err = service.Generate(nil)
	assert.Error(t, err)
}

func TestTokenService_IDClaimOnTheWire(t *testing.T) {
	service := newTestTokenService()

	token, err := service.SignClaims(auth.NewJWTClaims("u1"))
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return testSigningKey, nil
	})
	require.NoError(t, err)

	mc, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "u1", mc["id"])
	assert.Equal(t, "HS256", parsed.Header["alg"])

	iat, err := mc.GetIssuedAt()
	require.NoError(t, err)
	exp, err := mc.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, int64(3600), exp.Unix()-iat.Unix())
}

func TestTokenService_Validate(t *testing.T) {
	service := newTestTokenService()

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		token, _, err := service.Mint("user-1", auth.MintOptions{IssuedAt: past})
		require.NoError(t, err)

		_, err = service.Validate(token)
		require.Error(t, err)
		assert.True(t, auth.IsTokenExpiredError(err))
		assert.Equal(t, 401, auth.HTTPStatus(err))
	})

	t.Run("wrong key", func(t *testing.T) {
		other := auth.NewTokenService([]byte("another-key"), 0, "", nil, testLogger())
		token, err := other.Generate(auth.NewIdentityFromUser(&auth.User{ID: "user-1"}))
		require.NoError(t, err)

		_, err = service.Validate(token)
		require.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
		assert.Equal(t, 401, auth.HTTPStatus(err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.Validate("not.a.token")
		require.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"id":  "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.Validate(raw)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("other hmac algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"id":  "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		raw, err := token.SignedString(testSigningKey)
		require.NoError(t, err)

		_, err = service.Validate(raw)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("missing exp", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "user-1"})
		raw, err := token.SignedString(testSigningKey)
		require.NoError(t, err)

		_, err = service.Validate(raw)
		assert.True(t, auth.IsMalformedError(err))
	})
}

func TestTokenService_IssuerAndAudience(t *testing.T) {
	service := auth.NewTokenService(testSigningKey, 0, "issuer-a", []string{"aud-a"}, testLogger())

	token, err := service.SignClaims(auth.NewJWTClaims("user-1"))
	require.NoError(t, err)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "issuer-a", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"aud-a"}, claims.Audience)

	other := auth.NewTokenService(testSigningKey, 0, "issuer-b", []string{"aud-a"}, testLogger())
	_, err = other.Validate(token)
	assert.True(t, auth.IsMalformedError(err))

	other = auth.NewTokenService(testSigningKey, 0, "issuer-a", []string{"aud-b"}, testLogger())
	_, err = other.Validate(token)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenService_KeyRotation(t *testing.T) {
	oldKey := []byte("old-signing-key")
	newKey := []byte("new-signing-key")

	previous := auth.NewTokenService(oldKey, 0, "", nil, testLogger(), auth.WithSigningKeyID("v1"))
	oldToken, err := previous.Generate(auth.NewIdentityFromUser(&auth.User{ID: "user-1"}))
	require.NoError(t, err)

	current := auth.NewTokenService(newKey, 0, "", nil, testLogger(),
		auth.WithSigningKeyID("v2"),
		auth.WithVerificationKeys(map[string][]byte{"v1": oldKey}),
	)

	claims, err := current.Validate(oldToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())

	newToken, err := current.Generate(auth.NewIdentityFromUser(&auth.User{ID: "user-2"}))
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(newToken, &auth.JWTClaims{})
	require.NoError(t, err)
	assert.Equal(t, "v2", parsed.Header["kid"])

	claims, err = current.Validate(newToken)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID())

	_, err = previous.Validate(newToken)
	assert.True(t, auth.IsMalformedError(err))

	unknown := auth.NewTokenService(newKey, 0, "", nil, testLogger(),
		auth.WithSigningKeyID("v2"),
		auth.WithVerificationKeys(map[string][]byte{"v0": []byte("ancient")}),
	)
	_, err = unknown.Validate(oldToken)
	assert.True(t, auth.IsMalformedError(err))
}

func TestTokenService_MissingSigningKey(t *testing.T) {
	service := auth.NewTokenService(nil, 0, "", nil, testLogger())

	_, err := service.SignClaims(auth.NewJWTClaims("user-1"))
	require.Error(t, err)
	assert.Equal(t, 500, auth.HTTPStatus(err))
}

func TestTokenService_WithClock(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	service := newTestTokenService(auth.WithClock(func() time.Time { return fixed }))

	token, err := service.SignClaims(auth.NewJWTClaims("user-1"))
	require.NoError(t, err)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, fixed, claims.IssuedAt().UTC())
	assert.Equal(t, fixed.Add(time.Hour), claims.Expires().UTC())
}

func TestTokenService_Mint(t *testing.T) {
	service := newTestTokenService()

	issuedAt := time.Now().Truncate(time.Second)
	token, expiresAt, err := service.Mint("user-1", auth.MintOptions{
		TTL:      5 * time.Minute,
		IssuedAt: issuedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(5*time.Minute), expiresAt)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, expiresAt.Unix(), claims.Expires().Unix())

	_, _, err = service.Mint("", auth.MintOptions{})
	assert.Error(t, err)

	_, _, err = service.Mint("user-1", auth.MintOptions{TTL: -time.Second})
	assert.Error(t, err)
}
