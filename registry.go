package auth

import (
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// Registry holds named strategies. It is built once at startup and handed
// to the HTTP layer; after Initialize it is read only.
type Registry struct {
	mu           sync.RWMutex
	strategies   map[string]Strategy
	initialized  bool
	contextKey   string
	errorHandler fiber.ErrorHandler
	logger       Logger
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithRegistryContextKey sets the fiber locals key the user is stored under
func WithRegistryContextKey(key string) RegistryOption {
	return func(r *Registry) {
		if key != "" {
			r.contextKey = key
		}
	}
}

// WithRegistryErrorHandler sets the default rejection responder
func WithRegistryErrorHandler(h fiber.ErrorHandler) RegistryOption {
	return func(r *Registry) {
		if h != nil {
			r.errorHandler = h
		}
	}
}

// WithRegistryLogger sets the registry logger
func WithRegistryLogger(l Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty Registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		strategies: make(map[string]Strategy),
		contextKey: DefaultContextKey,
		logger:     defLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.errorHandler == nil {
		r.errorHandler = NewErrorHandler(r.logger)
	}
	return r
}

// Use registers s under s.Name(). Names are unique and registration closes
// once the registry is initialized.
func (r *Registry) Use(s Strategy) error {
	if s == nil || s.Name() == "" {
		return errors.New("strategy must have a name", errors.CategoryBadInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return errors.New("registry already initialized", errors.CategoryConflict).
			WithMetadata(map[string]any{"strategy": s.Name()})
	}

	if _, exists := r.strategies[s.Name()]; exists {
		return errors.New(fmt.Sprintf("strategy %q already registered", s.Name()), errors.CategoryConflict).
			WithMetadata(map[string]any{"strategy": s.Name()})
	}

	r.strategies[s.Name()] = s
	r.logger.Debug("registered auth strategy", "strategy", s.Name())
	return nil
}

// Initialize freezes the registry
func (r *Registry) Initialize() *Registry {
	r.mu.Lock()
	r.initialized = true
	r.mu.Unlock()
	return r
}

// Initialized reports whether Initialize was called
func (r *Registry) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// Get returns the strategy registered under name
func (r *Registry) Get(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	return s, ok
}

// ContextKey returns the fiber locals key authenticated users are stored under
func (r *Registry) ContextKey() string {
	return r.contextKey
}

type authenticateOptions struct {
	optional     bool
	errorHandler fiber.ErrorHandler
}

// AuthenticateOption tunes a single Authenticate middleware
type AuthenticateOption func(*authenticateOptions)

// Optional lets anonymous requests through: no token at all, or a valid
// token whose subject is not a known user. A token that is present but
// expired or fails verification still rejects, as do storage errors.
func Optional() AuthenticateOption {
	return func(o *authenticateOptions) {
		o.optional = true
	}
}

// WithErrorHandler overrides the rejection responder for one middleware
func WithErrorHandler(h fiber.ErrorHandler) AuthenticateOption {
	return func(o *authenticateOptions) {
		o.errorHandler = h
	}
}

// Authenticate returns middleware running the named strategy. It panics if
// the registry has not been initialized or no strategy is registered under
// name.
func (r *Registry) Authenticate(name string, opts ...AuthenticateOption) fiber.Handler {
	if !r.Initialized() {
		panic(fmt.Sprintf("auth: registry not initialized, call Initialize before Authenticate(%q)", name))
	}

	strategy, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("auth: strategy %q not registered", name))
	}

	o := authenticateOptions{errorHandler: r.errorHandler}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.errorHandler == nil {
		o.errorHandler = r.errorHandler
	}

	return func(c *fiber.Ctx) error {
		user, err := strategy.Authenticate(c)
		if err == nil && user == nil {
			err = ErrUnauthenticated.Clone()
		}

		if err != nil {
			if o.optional && isAnonymous(err) {
				return c.Next()
			}
			return o.errorHandler(c, err)
		}

		c.Locals(r.contextKey, user)
		c.SetUserContext(WithContext(c.UserContext(), user))

		return c.Next()
	}
}

func isAnonymous(err error) bool {
	return hasTextCode(err, TextCodeMissingToken) || hasTextCode(err, TextCodeUnauthenticated)
}
