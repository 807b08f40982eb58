package auth_test

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-bearer-auth"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSigningKey = []byte("test-signing-key")

func testLogger() auth.Logger {
	return auth.NewLogger(io.Discard, "debug", "test")
}

func newTestTokenService(opts ...auth.TokenServiceOption) *auth.TokenService {
	return auth.NewTokenService(testSigningKey, 0, "", nil, testLogger(), opts...)
}

// hashFor hashes with the minimum cost so tests stay fast
func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPasswordWithCost(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

// memUsers is an in-memory UserFinder keyed by ID and username
type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*auth.User
	err    error
	logins []string
}

func newMemUsers(users ...*auth.User) *memUsers {
	m := &memUsers{byID: map[string]*auth.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) FindUserByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.byID[id], nil
}

func (m *memUsers) FindUserByIdentifier(_ context.Context, identifier string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Username == identifier || u.Email == identifier {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) TrackSuccessfulLogin(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, user.ID)
	return nil
}

// MockUserFinder implements auth.UserFinder for testing
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) FindUserByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUserFinder) FindUserByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

// testConfig is a fixed auth.Config
type testConfig struct {
	key    string
	lookup string
	scheme string
}

func (c testConfig) GetSigningKey() string                  { return c.key }
func (c testConfig) GetSigningKeyID() string                { return "" }
func (c testConfig) GetVerificationKeys() map[string]string { return nil }
func (c testConfig) GetTokenTTL() time.Duration             { return auth.DefaultTokenTTL }
func (c testConfig) GetIssuer() string                      { return "" }
func (c testConfig) GetAudience() []string                  { return nil }
func (c testConfig) GetContextKey() string                  { return auth.DefaultContextKey }
func (c testConfig) GetTokenLookup() string                 { return c.lookup }
func (c testConfig) GetAuthScheme() string                  { return c.scheme }

func defaultTestConfig() testConfig {
	return testConfig{key: string(testSigningKey), lookup: "header:Authorization", scheme: "Bearer"}
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, body
}
