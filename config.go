package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvPrefix is prepended to every environment variable read by LoadConfig
const EnvPrefix = "AUTH_"

// Settings is the environment backed Config implementation.
type Settings struct {
	SigningKey       string            `env:"SIGNING_KEY,required,notEmpty"`
	SigningKeyID     string            `env:"SIGNING_KEY_ID"`
	VerificationKeys map[string]string `env:"VERIFICATION_KEYS"`
	TokenTTL         time.Duration     `env:"TOKEN_TTL" envDefault:"3600s"`
	Issuer           string            `env:"ISSUER"`
	Audience         []string          `env:"AUDIENCE"`
	ContextKey       string            `env:"CONTEXT_KEY" envDefault:"user"`
	TokenLookup      string            `env:"TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme       string            `env:"SCHEME" envDefault:"Bearer"`

	Server   Server   `envPrefix:"SERVER_"`
	Database Database `envPrefix:"DATABASE_"`
	LogLevel string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Server contains HTTP listener parameters.
type Server struct {
	Address         string        `env:"ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Database contains user store connection parameters.
type Database struct {
	DSN string `env:"DSN" envDefault:"file::memory:?cache=shared"`
}

var _ Config = (*Settings)(nil)

// LoadConfig reads Settings from the process environment.
func LoadConfig() (*Settings, error) {
	return loadConfig(env.Options{Prefix: EnvPrefix})
}

// LoadConfigFromEnv reads Settings from the given key/value pairs instead
// of the process environment. Keys carry the AUTH_ prefix.
func LoadConfigFromEnv(environment map[string]string) (*Settings, error) {
	if environment == nil {
		environment = map[string]string{}
	}
	return loadConfig(env.Options{Prefix: EnvPrefix, Environment: environment})
}

func loadConfig(opts env.Options) (*Settings, error) {
	cfg := &Settings{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "failed to parse auth config").
			WithTextCode("INVALID_CONFIG")
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}

	return cfg, nil
}

func (s *Settings) GetSigningKey() string {
	return s.SigningKey
}

func (s *Settings) GetSigningKeyID() string {
	return s.SigningKeyID
}

func (s *Settings) GetVerificationKeys() map[string]string {
	return s.VerificationKeys
}

func (s *Settings) GetTokenTTL() time.Duration {
	return s.TokenTTL
}

func (s *Settings) GetIssuer() string {
	return s.Issuer
}

func (s *Settings) GetAudience() []string {
	return s.Audience
}

func (s *Settings) GetContextKey() string {
	return s.ContextKey
}

func (s *Settings) GetTokenLookup() string {
	return s.TokenLookup
}

func (s *Settings) GetAuthScheme() string {
	return s.AuthScheme
}
